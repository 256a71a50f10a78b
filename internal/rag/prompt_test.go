package rag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherai-pdfqa/internal/rag"
)

func TestPromptBuilderDefault(t *testing.T) {
	b, err := rag.NewPromptBuilder("")
	require.NoError(t, err)

	hits := []rag.Hit{
		{Chunk: rag.Chunk{Index: 2, Text: "The sky is blue."}},
		{Chunk: rag.Chunk{Index: 0, Text: "Grass is green."}},
	}
	prompt, err := b.Build(hits, "What color is the sky?")
	require.NoError(t, err)

	want := "Answer the question based only on the following context:\n" +
		"The sky is blue.\n\nGrass is green.\n\n" +
		"Question: What color is the sky?\n"
	assert.Equal(t, want, prompt)
}

func TestPromptBuilderCustomTemplate(t *testing.T) {
	b, err := rag.NewPromptBuilder("Q={{.question}} C={{.context}}")
	require.NoError(t, err)

	prompt, err := b.Build([]rag.Hit{{Chunk: rag.Chunk{Text: "ctx"}}}, "q?")
	require.NoError(t, err)
	assert.Equal(t, "Q=q? C=ctx", prompt)
}

func TestPromptBuilderRejectsMissingSlots(t *testing.T) {
	_, err := rag.NewPromptBuilder("only {{.context}}")
	assert.Error(t, err)

	_, err = rag.NewPromptBuilder("only {{.question}}")
	assert.Error(t, err)
}

func TestContextBlock(t *testing.T) {
	assert.Equal(t, "", rag.ContextBlock(nil))
	assert.Equal(t, "a\n\nb", rag.ContextBlock([]rag.Hit{
		{Chunk: rag.Chunk{Text: "a"}},
		{Chunk: rag.Chunk{Text: "b"}},
	}))
}
