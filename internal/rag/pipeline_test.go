package rag_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherai-pdfqa/internal/rag"
	"gopherai-pdfqa/internal/rag/ragtest"
)

func newPipeline(t *testing.T, ext rag.Extractor, emb *ragtest.Embedder, gen rag.Generator, opts ...rag.PipelineOption) *rag.Pipeline {
	t.Helper()
	prompt, err := rag.NewPromptBuilder("")
	require.NoError(t, err)
	return rag.NewPipeline(ext, rag.NewChunker(1000, 100, rag.RuneLen), emb, prompt, gen, opts...)
}

func TestPipelineAnswersFromDocument(t *testing.T) {
	ext := &ragtest.Extractor{Segments: []rag.Segment{{Text: "The sky is blue.", Page: 1}}}
	gen := &ragtest.Generator{Fn: ragtest.ColorAnswerer}
	p := newPipeline(t, ext, &ragtest.Embedder{}, gen)

	out, err := p.Run(context.Background(), rag.Input{Path: "unused", Source: "sky.pdf", Question: "What color is the sky?"})
	require.NoError(t, err)

	assert.Equal(t, "blue", out.Answer)
	assert.Equal(t, 1, out.ChunkCount)
	assert.Equal(t, 1, out.PageCount)
	require.Len(t, out.Hits, 1)
	assert.Equal(t, "sky.pdf", out.Hits[0].Chunk.Source)

	prompts := gen.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "The sky is blue.")
	assert.Contains(t, prompts[0], "Question: What color is the sky?")
}

func TestPipelineLimitsContextToTopK(t *testing.T) {
	ext := &ragtest.Extractor{Segments: []rag.Segment{
		{Text: "Paris is the capital of France.", Page: 1},
		{Text: "Bananas are yellow.", Page: 2},
		{Text: "The capital of Italy is Rome.", Page: 3},
	}}
	gen := &ragtest.Generator{}
	p := newPipeline(t, ext, &ragtest.Embedder{}, gen, rag.WithTopK(2))

	out, err := p.Run(context.Background(), rag.Input{Question: "What is the capital of France?"})
	require.NoError(t, err)
	require.Len(t, out.Hits, 2)
	assert.Equal(t, 3, out.ChunkCount)
	assert.Equal(t, 0, out.Hits[0].Chunk.Index)
	assert.NotContains(t, gen.Prompts()[0], "Bananas")
}

func TestPipelineEmptyDocument(t *testing.T) {
	emb := &ragtest.Embedder{}
	gen := &ragtest.Generator{}
	p := newPipeline(t, &ragtest.Extractor{}, emb, gen)

	_, err := p.Run(context.Background(), rag.Input{Question: "anything?"})
	assert.ErrorIs(t, err, rag.ErrEmptyDocument)

	docs, queries := emb.Calls()
	assert.Zero(t, docs)
	assert.Zero(t, queries)
	assert.Empty(t, gen.Prompts())
}

func TestPipelineReportsFailedStage(t *testing.T) {
	boom := errors.New("boom")
	segments := []rag.Segment{{Text: "some text", Page: 1}}

	tests := []struct {
		name  string
		ext   rag.Extractor
		emb   *ragtest.Embedder
		gen   *ragtest.Generator
		stage rag.Stage
	}{
		{
			name:  "extract",
			ext:   &ragtest.Extractor{Err: boom},
			emb:   &ragtest.Embedder{},
			gen:   &ragtest.Generator{},
			stage: rag.StageExtract,
		},
		{
			name:  "index",
			ext:   &ragtest.Extractor{Segments: segments},
			emb:   &ragtest.Embedder{Err: boom},
			gen:   &ragtest.Generator{},
			stage: rag.StageIndex,
		},
		{
			name: "generate",
			ext:  &ragtest.Extractor{Segments: segments},
			emb:  &ragtest.Embedder{},
			gen: &ragtest.Generator{Fn: func(string) (string, error) {
				return "", boom
			}},
			stage: rag.StageGenerate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline(t, tt.ext, tt.emb, tt.gen)
			_, err := p.Run(context.Background(), rag.Input{Question: "q"})
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, tt.stage, rag.FailedStage(err))
		})
	}
}

func TestPipelineHonorsCancellation(t *testing.T) {
	ext := &ragtest.Extractor{Segments: []rag.Segment{{Text: "text", Page: 1}}}
	p := newPipeline(t, ext, &ragtest.Embedder{}, &ragtest.Generator{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, rag.Input{Question: "q"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineTimeout(t *testing.T) {
	ext := &ragtest.Extractor{Segments: []rag.Segment{{Text: "text", Page: 1}}}
	gen := &ragtest.Generator{Fn: func(string) (string, error) {
		time.Sleep(300 * time.Millisecond)
		return "late", nil
	}}
	slow := &slowGenerator{inner: gen}
	p := newPipeline(t, ext, &ragtest.Embedder{}, slow, rag.WithTimeout(50*time.Millisecond))

	_, err := p.Run(context.Background(), rag.Input{Question: "q"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// slowGenerator waits for the inner generator but gives up when ctx ends.
type slowGenerator struct {
	inner rag.Generator
}

func (s *slowGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	type result struct {
		answer string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		a, err := s.inner.Complete(context.Background(), prompt)
		done <- result{a, err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.answer, r.err
	}
}
