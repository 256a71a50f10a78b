// Package ragtest provides in-memory embedders and generators for tests.
package ragtest

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"

	"gopherai-pdfqa/internal/rag"
)

const defaultDim = 256

// Embedder hashes words into a fixed-size bag-of-words vector. Texts that
// share words are similar. One extra constant dimension keeps every vector
// non-zero.
type Embedder struct {
	Dim int
	Err error

	mu        sync.Mutex
	docCalls  int
	queryCall int
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.Err != nil {
		return nil, e.Err
	}
	e.mu.Lock()
	e.docCalls++
	e.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.Err != nil {
		return nil, e.Err
	}
	e.mu.Lock()
	e.queryCall++
	e.mu.Unlock()
	return e.vector(text), nil
}

// Calls reports how many document batches and queries were embedded.
func (e *Embedder) Calls() (docs, queries int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.docCalls, e.queryCall
}

func (e *Embedder) vector(text string) []float32 {
	dim := e.Dim
	if dim <= 0 {
		dim = defaultDim
	}
	v := make([]float32, dim+1)
	for _, w := range Words(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%uint32(dim)]++
	}
	v[dim] = 0.1
	return v
}

// Words lowercases text and splits it on anything that is not a letter or digit.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Extractor returns fixed segments regardless of path.
type Extractor struct {
	Segments []rag.Segment
	Err      error
}

func (e *Extractor) Extract(ctx context.Context, _ string) ([]rag.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.Err != nil {
		return nil, e.Err
	}
	return append([]rag.Segment(nil), e.Segments...), nil
}

// Generator answers prompts with Fn, or echoes the prompt when Fn is nil.
type Generator struct {
	Fn func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.Fn == nil {
		return prompt, nil
	}
	return g.Fn(prompt)
}

func (g *Generator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

// ColorAnswerer returns the first color word found in the prompt context.
func ColorAnswerer(prompt string) (string, error) {
	ctxPart := prompt
	if i := strings.Index(prompt, "Question:"); i >= 0 {
		ctxPart = prompt[:i]
	}
	for _, w := range Words(ctxPart) {
		switch w {
		case "blue", "red", "green", "yellow":
			return w, nil
		}
	}
	return "I don't know.", nil
}
