package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherai-pdfqa/internal/config"
)

func TestNewClients(t *testing.T) {
	cfg := config.Default().LLM

	chat, err := NewChatModel(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, chat)

	embedder, err := NewEmbedder(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.EmbeddingBatchSize, embedder.BatchSize)
}
