package bootstrap

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gopherai-pdfqa/internal/config"
)

// SetupLogger configures the global zerolog logger: console output outside
// production, JSON in production.
func SetupLogger(cfg config.AppConfig) {
	setupLogger(cfg, os.Stdout)
}

func setupLogger(cfg config.AppConfig, out io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if strings.EqualFold(cfg.Env, "production") {
		log.Logger = zerolog.New(out).With().Timestamp().Str("app", cfg.Name).Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Caller().Logger()
}
