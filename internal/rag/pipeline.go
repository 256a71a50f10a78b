package rag

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
)

const DefaultTopK = 4

// Extractor turns a document on disk into page segments.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]Segment, error)
}

// Generator returns the model completion for a prompt.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Input struct {
	Path     string
	Source   string
	Question string
}

type Output struct {
	Answer     string
	Hits       []Hit
	ChunkCount int
	PageCount  int
}

// Pipeline runs extraction through generation for one document. It keeps no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	extractor Extractor
	chunker   *Chunker
	embedder  embeddings.Embedder
	prompt    *PromptBuilder
	generator Generator
	topK      int
	timeout   time.Duration
}

type PipelineOption func(*Pipeline)

func WithTopK(k int) PipelineOption {
	return func(p *Pipeline) {
		if k > 0 {
			p.topK = k
		}
	}
}

// WithTimeout bounds a whole Run. Zero means no limit.
func WithTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.timeout = d
	}
}

func NewPipeline(
	extractor Extractor,
	chunker *Chunker,
	embedder embeddings.Embedder,
	prompt *PromptBuilder,
	generator Generator,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		prompt:    prompt,
		generator: generator,
		topK:      DefaultTopK,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Run(ctx context.Context, in Input) (*Output, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	started := time.Now()
	logger := log.With().Str("source", in.Source).Logger()

	segments, err := p.extractor.Extract(ctx, in.Path)
	if err != nil {
		return nil, &StageError{Stage: StageExtract, Err: err}
	}
	for i := range segments {
		segments[i].Source = in.Source
	}

	chunks, err := p.chunker.Split(segments)
	if err != nil {
		return nil, &StageError{Stage: StageChunk, Err: err}
	}
	logger.Debug().Int("pages", len(segments)).Int("chunks", len(chunks)).Msg("document chunked")
	if len(chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	index, err := BuildIndex(ctx, p.embedder, chunks)
	if err != nil {
		return nil, &StageError{Stage: StageIndex, Err: err}
	}
	defer func() {
		if err := index.Close(); err != nil {
			logger.Warn().Err(err).Msg("release index failed")
		}
	}()

	hits, err := index.Search(ctx, in.Question, p.topK)
	if err != nil {
		return nil, &StageError{Stage: StageRetrieve, Err: err}
	}

	prompt, err := p.prompt.Build(hits, in.Question)
	if err != nil {
		return nil, &StageError{Stage: StagePrompt, Err: err}
	}

	answer, err := p.generator.Complete(ctx, prompt)
	if err != nil {
		return nil, &StageError{Stage: StageGenerate, Err: err}
	}

	logger.Debug().Int("hits", len(hits)).Dur("elapsed", time.Since(started)).Msg("answer generated")
	return &Output{
		Answer:     strings.TrimSpace(answer),
		Hits:       hits,
		ChunkCount: len(chunks),
		PageCount:  len(segments),
	}, nil
}
