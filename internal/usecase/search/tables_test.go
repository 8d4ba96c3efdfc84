package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/docsift/docsift/internal/domain"
	"github.com/docsift/docsift/internal/domain/search/kind"
	"github.com/docsift/docsift/internal/domain/search/mode"
	"github.com/docsift/docsift/internal/domain/search/result"
)

func chunksWithExtracts() []domain.Chunk {
	return []domain.Chunk{
		{
			FileName: "report.pdf", Page: 2,
			Tables: []domain.Table{
				{Num: 1, Data: "Quarter,Revenue\nQ1,100"},
				{Num: 2, Data: "Region,Cost\nEMEA,40"},
			},
		},
		{
			FileName: "report.pdf", Page: 5,
			Figures: []domain.Figure{
				{Num: 1, Caption: "Revenue growth by quarter"},
			},
		},
	}
}

func TestSearchTablesFigures_MatchesTablesAndFigures(t *testing.T) {
	content := &fakeContent{chunks: chunksWithExtracts()}
	svc := New(content, &fakeVector{}, &fakeKeyword{}, nil, zap.NewNop())

	results, err := svc.SearchTablesFigures(context.Background(),
		mustQuery(t, "revenue", mode.All, "", kind.Hybrid, 10))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected table and figure hit, got %d", len(results))
	}
	if results[0].Origin() != result.OriginTable || results[0].Page() != 2 {
		t.Errorf("expected table hit first, got %s page %d", results[0].Origin(), results[0].Page())
	}
	if results[1].Origin() != result.OriginFigure || results[1].Page() != 5 {
		t.Errorf("expected figure hit second, got %s page %d", results[1].Origin(), results[1].Page())
	}
	for _, r := range results {
		if r.Score() != 1 {
			t.Errorf("expected unit score for extract hits, got %v", r.Score())
		}
	}
}

func TestSearchTablesFigures_NoMatch(t *testing.T) {
	content := &fakeContent{chunks: chunksWithExtracts()}
	svc := New(content, &fakeVector{}, &fakeKeyword{}, nil, zap.NewNop())

	results, err := svc.SearchTablesFigures(context.Background(),
		mustQuery(t, "headcount", mode.All, "", kind.Hybrid, 10))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no hits, got %d", len(results))
	}
}

func TestSearchTablesFigures_SingleModeUnknownDocument(t *testing.T) {
	content := &fakeContent{chunks: chunksWithExtracts()}
	svc := New(content, &fakeVector{}, &fakeKeyword{}, nil, zap.NewNop())

	_, err := svc.SearchTablesFigures(context.Background(),
		mustQuery(t, "revenue", mode.Single, "missing.pdf", kind.Hybrid, 10))
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestSearchTablesFigures_TruncatesToTopN(t *testing.T) {
	content := &fakeContent{chunks: chunksWithExtracts()}
	svc := New(content, &fakeVector{}, &fakeKeyword{}, nil, zap.NewNop())

	results, err := svc.SearchTablesFigures(context.Background(),
		mustQuery(t, "revenue", mode.All, "", kind.Hybrid, 1))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}
