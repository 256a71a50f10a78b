// Command ask answers a question about a local PDF, or sends the question
// straight to the chat model when no file is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"gopherai-pdfqa/internal/ai"
	"gopherai-pdfqa/internal/bootstrap"
	"gopherai-pdfqa/internal/config"
	"gopherai-pdfqa/internal/rag"
)

func main() {
	filePath := flag.String("file", "", "Path to the PDF file")
	question := flag.String("question", "", "Question to be answered")
	system := flag.String("system", "", "Optional system message for direct chat")
	flag.Parse()

	if strings.TrimSpace(*question) == "" {
		fmt.Fprintln(os.Stderr, "usage: ask -question \"...\" [-file doc.pdf]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}
	bootstrap.SetupLogger(cfg.App)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	answer, err := run(ctx, cfg, *filePath, *question, *system)
	if err != nil {
		log.Fatal().Err(err).Msg("ask failed")
	}
	fmt.Println(answer)
}

func run(ctx context.Context, cfg *config.Config, filePath, question, system string) (string, error) {
	chatModel, err := ai.NewChatModel(cfg.LLM, nil)
	if err != nil {
		return "", err
	}
	generator := ai.NewGenerator(chatModel)

	if filePath == "" {
		var messages []ai.ChatMessage
		if system != "" {
			messages = append(messages, ai.ChatMessage{Role: ai.RoleSystem, Content: system})
		}
		messages = append(messages, ai.ChatMessage{Role: ai.RoleUser, Content: question})
		return generator.Chat(ctx, messages)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), cfg.RAG.DocumentExtension) {
		return "", fmt.Errorf("please provide a %s file", cfg.RAG.DocumentExtension)
	}
	embedder, err := ai.NewEmbedder(cfg.LLM, nil)
	if err != nil {
		return "", err
	}
	pipeline, err := bootstrap.NewPipeline(cfg, embedder, generator)
	if err != nil {
		return "", err
	}
	out, err := pipeline.Run(ctx, rag.Input{
		Path:     filePath,
		Source:   filepath.Base(filePath),
		Question: question,
	})
	if err != nil {
		return "", err
	}
	log.Debug().Int("pages", out.PageCount).Int("chunks", out.ChunkCount).Msg("document processed")
	return out.Answer, nil
}
