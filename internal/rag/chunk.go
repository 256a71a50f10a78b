package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	metaPage   = "page"
	metaSource = "source"
	metaIndex  = "chunk_index"
)

// LenFunc measures text in the unit chunk sizes are expressed in.
type LenFunc func(string) int

// RuneLen counts characters.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// TokenLen counts tokens of the given tiktoken encoding, e.g. "cl100k_base".
func TokenLen(encoding string) (LenFunc, error) {
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load token encoding %q failed: %w", encoding, err)
	}
	return func(s string) int {
		return len(tke.Encode(s, nil, nil))
	}, nil
}

// Chunker splits page segments into overlapping windows. Splitting happens
// per segment, so every chunk belongs to exactly one page.
type Chunker struct {
	splitter textsplitter.TextSplitter
}

func NewChunker(size, overlap int, lenFunc LenFunc) *Chunker {
	if lenFunc == nil {
		lenFunc = RuneLen
	}
	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithLenFunc(lenFunc),
		),
	}
}

func (c *Chunker) Split(segments []Segment) ([]Chunk, error) {
	docs := make([]schema.Document, 0, len(segments))
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		docs = append(docs, schema.Document{
			PageContent: seg.Text,
			Metadata: map[string]any{
				metaPage:   seg.Page,
				metaSource: seg.Source,
			},
		})
	}
	if len(docs) == 0 {
		return nil, nil
	}

	split, err := textsplitter.SplitDocuments(c.splitter, docs)
	if err != nil {
		return nil, fmt.Errorf("split documents failed: %w", err)
	}

	chunks := make([]Chunk, 0, len(split))
	for _, doc := range split {
		text := strings.TrimSpace(doc.PageContent)
		if text == "" {
			continue
		}
		page, _ := doc.Metadata[metaPage].(int)
		source, _ := doc.Metadata[metaSource].(string)
		chunks = append(chunks, Chunk{
			Index:  len(chunks),
			Text:   text,
			Page:   page,
			Source: source,
		})
	}
	return chunks, nil
}
