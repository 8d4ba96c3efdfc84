package keyword

import (
	"context"

	"github.com/docsift/docsift/internal/domain"
)

type mockExpander struct {
	terms []string
	err   error
	calls int
}

func (m *mockExpander) Expand(_ context.Context, _ string) ([]string, error) {
	m.calls++
	return m.terms, m.err
}

type mockCompleter struct {
	response string
	err      error
	prompt   string
	opts     domain.CompletionOptions
}

func (m *mockCompleter) Complete(
	_ context.Context, prompt string, opts domain.CompletionOptions,
) (string, error) {
	m.prompt = prompt
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func chunk(fileName string, page int, text string) domain.Chunk {
	return domain.Chunk{FileName: fileName, Page: page, Text: text}
}
