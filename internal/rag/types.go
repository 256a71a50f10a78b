package rag

import (
	"errors"
	"fmt"
)

// Segment is the text of one document page.
type Segment struct {
	Text   string
	Page   int // 1-based
	Source string
}

// Chunk is a bounded window of a single segment. Index is the position of the
// chunk in document order and is used to break similarity ties.
type Chunk struct {
	Index  int
	Text   string
	Page   int
	Source string
}

// Hit is a chunk returned by a similarity search.
type Hit struct {
	Chunk      Chunk
	Similarity float32
}

var ErrEmptyDocument = errors.New("document contains no extractable text")

type Stage string

const (
	StageExtract  Stage = "extract"
	StageChunk    Stage = "chunk"
	StageIndex    Stage = "index"
	StageRetrieve Stage = "retrieve"
	StagePrompt   Stage = "prompt"
	StageGenerate Stage = "generate"
)

// StageError records which pipeline stage failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, or "" if there is none.
func FailedStage(err error) Stage {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}
