package bootstrap

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherai-pdfqa/internal/config"
	"gopherai-pdfqa/internal/rag/ragtest"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.RAG.UploadDir = t.TempDir()
	return cfg
}

func TestNewWithConfigDefaults(t *testing.T) {
	a, err := NewWithConfig(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.QA)
	assert.NotNil(t, a.Pipeline)
	assert.NotNil(t, a.Generator)
	assert.Nil(t, a.MySQL)
	assert.Nil(t, a.Redis)
	assert.Nil(t, a.MQConn)
	assert.Nil(t, a.AuditWorker)
	assert.NoError(t, a.Close())
}

func TestNewPipelineRejectsBadTemplate(t *testing.T) {
	cfg := testConfig(t)
	cfg.RAG.PromptTemplate = "no slots here"

	_, err := NewPipeline(cfg, &ragtest.Embedder{}, &ragtest.Generator{})
	assert.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	defer func(l zerolog.Logger, lvl zerolog.Level) {
		log.Logger = l
		zerolog.SetGlobalLevel(lvl)
	}(log.Logger, zerolog.GlobalLevel())

	var buf bytes.Buffer
	setupLogger(config.AppConfig{Name: "pdfqa", Env: "production", LogLevel: "warn"}, &buf)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
	assert.Contains(t, buf.String(), `"app":"pdfqa"`)

	setupLogger(config.AppConfig{LogLevel: "bogus"}, &buf)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
