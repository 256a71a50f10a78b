package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	resp *llms.ContentResponse
	err  error
	got  []llms.MessageContent
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.got = messages
	return m.resp, m.err
}

func answer(text string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: text}}}
}

func TestGeneratorComplete(t *testing.T) {
	model := &fakeModel{resp: answer("  blue\n")}
	g := NewGenerator(model)

	out, err := g.Complete(context.Background(), "What color is the sky?")
	require.NoError(t, err)
	assert.Equal(t, "blue", out)

	require.Len(t, model.got, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.got[0].Role)
	require.Len(t, model.got[0].Parts, 1)
	assert.Equal(t, llms.TextContent{Text: "What color is the sky?"}, model.got[0].Parts[0])
}

func TestGeneratorChatMapsRoles(t *testing.T) {
	model := &fakeModel{resp: answer("ok")}
	g := NewGenerator(model)

	_, err := g.Chat(context.Background(), []ChatMessage{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: "User", Content: "again"},
	})
	require.NoError(t, err)

	roles := make([]llms.ChatMessageType, len(model.got))
	for i, m := range model.got {
		roles[i] = m.Role
	}
	assert.Equal(t, []llms.ChatMessageType{
		llms.ChatMessageTypeSystem,
		llms.ChatMessageTypeHuman,
		llms.ChatMessageTypeAI,
		llms.ChatMessageTypeHuman,
	}, roles)
}

func TestGeneratorErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewGenerator(&fakeModel{resp: answer("x")}).Chat(ctx, nil)
	assert.Error(t, err)

	_, err = NewGenerator(&fakeModel{resp: answer("x")}).Chat(ctx, []ChatMessage{{Role: "tool", Content: "x"}})
	assert.Error(t, err)

	_, err = NewGenerator(&fakeModel{resp: &llms.ContentResponse{}}).Complete(ctx, "q")
	assert.ErrorIs(t, err, ErrEmptyCompletion)

	boom := errors.New("connection refused")
	_, err = NewGenerator(&fakeModel{err: boom}).Complete(ctx, "q")
	assert.ErrorIs(t, err, boom)
}
