package keyword

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestExpand_ParsesJSONResponse(t *testing.T) {
	completer := &mockCompleter{response: `{"similar_terms": ["bill", "receipt", "statement"]}`}
	expander := NewExpander(completer, 3, zap.NewNop())

	terms, err := expander.Expand(context.Background(), "invoice")
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	want := []string{"bill", "receipt", "statement"}
	if len(terms) != len(want) {
		t.Fatalf("expected %d terms, got %v", len(want), terms)
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("pos %d: expected %q, got %q", i, want[i], terms[i])
		}
	}
}

func TestExpand_ParsesFencedJSON(t *testing.T) {
	completer := &mockCompleter{
		response: "Here you go:\n```json\n{\"similar_terms\": [\"bill\"]}\n```",
	}
	expander := NewExpander(completer, 3, zap.NewNop())

	terms, err := expander.Expand(context.Background(), "invoice")
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if len(terms) != 1 || terms[0] != "bill" {
		t.Fatalf("expected [bill], got %v", terms)
	}
}

func TestExpand_CommaFallback(t *testing.T) {
	completer := &mockCompleter{response: "bill, receipt, statement"}
	expander := NewExpander(completer, 3, zap.NewNop())

	terms, err := expander.Expand(context.Background(), "invoice")
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if len(terms) != 3 || terms[0] != "bill" || terms[2] != "statement" {
		t.Fatalf("expected comma-split terms, got %v", terms)
	}
}

func TestExpand_ExcludesOriginalQueryCaseInsensitively(t *testing.T) {
	completer := &mockCompleter{response: `{"similar_terms": ["Invoice", "bill", "INVOICE"]}`}
	expander := NewExpander(completer, 3, zap.NewNop())

	terms, err := expander.Expand(context.Background(), "invoice")
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if len(terms) != 1 || terms[0] != "bill" {
		t.Fatalf("expected original query excluded, got %v", terms)
	}
}

func TestExpand_CapsTermCount(t *testing.T) {
	completer := &mockCompleter{response: `{"similar_terms": ["a", "b", "c", "d", "e"]}`}
	expander := NewExpander(completer, 3, zap.NewNop())

	terms, err := expander.Expand(context.Background(), "invoice")
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if len(terms) != 3 {
		t.Fatalf("expected cap at 3 terms, got %v", terms)
	}
}

func TestExpand_CompleterErrorPropagates(t *testing.T) {
	wantErr := errors.New("llm down")
	expander := NewExpander(&mockCompleter{err: wantErr}, 3, zap.NewNop())

	if _, err := expander.Expand(context.Background(), "invoice"); !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}

func TestExpand_RequestShape(t *testing.T) {
	completer := &mockCompleter{response: `{"similar_terms": []}`}
	expander := NewExpander(completer, 3, zap.NewNop())

	if _, err := expander.Expand(context.Background(), "invoice total"); err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if !strings.Contains(completer.prompt, "invoice total") {
		t.Errorf("prompt missing query: %q", completer.prompt)
	}
	if !strings.Contains(completer.prompt, "similar_terms") {
		t.Errorf("prompt missing response format hint: %q", completer.prompt)
	}
	if completer.opts.Temperature != 0.7 || completer.opts.MaxTokens != 100 {
		t.Errorf("unexpected options: %+v", completer.opts)
	}
}
