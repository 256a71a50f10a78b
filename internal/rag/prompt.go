package rag

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"
)

const DefaultPromptTemplate = `Answer the question based only on the following context:
{{.context}}

Question: {{.question}}
`

const contextSeparator = "\n\n"

// PromptBuilder renders the two-slot question template.
type PromptBuilder struct {
	template prompts.PromptTemplate
}

// NewPromptBuilder parses tmpl, which must reference {{.context}} and
// {{.question}}. An empty tmpl selects DefaultPromptTemplate.
func NewPromptBuilder(tmpl string) (*PromptBuilder, error) {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultPromptTemplate
	}
	for _, slot := range []string{"{{.context}}", "{{.question}}"} {
		if !strings.Contains(tmpl, slot) {
			return nil, fmt.Errorf("prompt template is missing %s", slot)
		}
	}
	b := &PromptBuilder{
		template: prompts.NewPromptTemplate(tmpl, []string{"context", "question"}),
	}
	if _, err := b.template.Format(map[string]any{"context": "", "question": ""}); err != nil {
		return nil, fmt.Errorf("render prompt template failed: %w", err)
	}
	return b, nil
}

// ContextBlock joins hit texts in the order given.
func ContextBlock(hits []Hit) string {
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = h.Chunk.Text
	}
	return strings.Join(parts, contextSeparator)
}

func (b *PromptBuilder) Build(hits []Hit, question string) (string, error) {
	prompt, err := b.template.Format(map[string]any{
		"context":  ContextBlock(hits),
		"question": question,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt failed: %w", err)
	}
	return prompt, nil
}
