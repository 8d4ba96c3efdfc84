package keyword

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/docsift/docsift/internal/domain"
)

// Expansion request defaults.
const (
	expandTemperature = 0.7
	expandMaxTokens   = 100
)

const expandPromptFormat = `Suggest up to %d alternative search terms or synonyms for the query below. Respond with JSON only, in the form {"similar_terms": ["term1", "term2"]}.

Query: %s`

// LLMExpander produces related search terms via a chat-completion model.
type LLMExpander struct {
	completer domain.Completer
	count     int
	logger    *zap.Logger
}

// NewExpander creates an LLM-backed term expander. count caps the number of
// returned terms; values below 1 fall back to 3.
func NewExpander(completer domain.Completer, count int, logger *zap.Logger) *LLMExpander {
	if count < 1 {
		count = 3
	}
	return &LLMExpander{completer: completer, count: count, logger: logger}
}

// Expand returns up to count related terms for the query. The original query
// is never included, compared case-insensitively. Model output that is not
// valid JSON degrades to comma splitting rather than failing.
func (e *LLMExpander) Expand(ctx context.Context, query string) ([]string, error) {
	prompt := fmt.Sprintf(expandPromptFormat, e.count, query)

	raw, err := e.completer.Complete(ctx, prompt, domain.CompletionOptions{
		Temperature: expandTemperature,
		MaxTokens:   expandMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("expand query terms: %w", err)
	}

	terms := parseTerms(raw)
	if len(terms) == 0 {
		e.logger.Debug("Term expansion produced nothing usable", zap.String("raw", raw))
	}

	return dedupeTerms(terms, query, e.count), nil
}

// parseTerms extracts terms from the model output: JSON first, then a
// comma-split of the raw text as a fallback.
func parseTerms(raw string) []string {
	if terms, ok := parseTermsJSON(raw); ok {
		return terms
	}

	cleaned := strings.NewReplacer("[", "", "]", "", "{", "", "}", "", `"`, "", "'", "").Replace(raw)
	var terms []string
	for _, part := range strings.Split(cleaned, ",") {
		if t := strings.TrimSpace(part); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

func parseTermsJSON(raw string) ([]string, bool) {
	// Models often wrap JSON in code fences or prose; parse the outermost
	// object only.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var parsed struct {
		SimilarTerms []string `json:"similar_terms"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil, false
	}
	return parsed.SimilarTerms, true
}

// dedupeTerms drops empties, duplicates and the original query, keeping
// first occurrences, capped at limit.
func dedupeTerms(terms []string, original string, limit int) []string {
	seen := map[string]struct{}{strings.ToLower(strings.TrimSpace(original)): {}}
	out := make([]string, 0, limit)
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		lower := strings.ToLower(t)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}
