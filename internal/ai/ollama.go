package ai

import (
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"

	"gopherai-pdfqa/internal/config"
)

// Clients are created once at startup and shared by every request.

func NewChatModel(cfg config.LLMConfig, httpClient *http.Client) (*ollama.LLM, error) {
	opts := []ollama.Option{
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.ChatModel),
	}
	if httpClient != nil {
		opts = append(opts, ollama.WithHTTPClient(httpClient))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create chat model failed: %w", err)
	}
	return llm, nil
}

func NewEmbedder(cfg config.LLMConfig, httpClient *http.Client) (*embeddings.EmbedderImpl, error) {
	opts := []ollama.Option{
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.EmbeddingModel),
	}
	if httpClient != nil {
		opts = append(opts, ollama.WithHTTPClient(httpClient))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create embedding client failed: %w", err)
	}

	embedOpts := []embeddings.Option{}
	if cfg.EmbeddingBatchSize > 0 {
		embedOpts = append(embedOpts, embeddings.WithBatchSize(cfg.EmbeddingBatchSize))
	}
	embedder, err := embeddings.NewEmbedder(llm, embedOpts...)
	if err != nil {
		return nil, fmt.Errorf("create embedder failed: %w", err)
	}
	return embedder, nil
}
