package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatModel is the part of llms.Model the generator needs.
type ChatModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

var ErrEmptyCompletion = errors.New("empty llm choices")

type Generator struct {
	model ChatModel
	opts  []llms.CallOption
}

func NewGenerator(model ChatModel, opts ...llms.CallOption) *Generator {
	return &Generator{model: model, opts: opts}
}

// Complete sends prompt as a single human message.
func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	return g.Chat(ctx, []ChatMessage{{Role: RoleUser, Content: prompt}})
}

func (g *Generator) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages to send")
	}
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		role, err := messageType(m.Role)
		if err != nil {
			return "", err
		}
		content = append(content, llms.TextParts(role, m.Content))
	}

	resp, err := g.model.GenerateContent(ctx, content, g.opts...)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

func messageType(role string) (llms.ChatMessageType, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleSystem:
		return llms.ChatMessageTypeSystem, nil
	case RoleUser, "human", "":
		return llms.ChatMessageTypeHuman, nil
	case RoleAssistant, "ai":
		return llms.ChatMessageTypeAI, nil
	default:
		return "", fmt.Errorf("unsupported message role %q", role)
	}
}
