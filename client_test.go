package docsift

import (
	"context"
	"errors"
	"testing"

	"github.com/docsift/docsift/internal/domain"
	"github.com/docsift/docsift/internal/domain/search/kind"
	"github.com/docsift/docsift/internal/domain/search/mode"
)

func TestNew_RequiresAddress(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error without WithRedis")
	}
}

func TestBuildQuery_Defaults(t *testing.T) {
	q, err := buildQuery("invoice", nil)
	if err != nil {
		t.Fatalf("build query failed: %v", err)
	}
	if q.Mode() != mode.All {
		t.Errorf("expected default mode all, got %s", q.Mode())
	}
	if q.Kind() != kind.Hybrid {
		t.Errorf("expected default kind hybrid, got %s", q.Kind())
	}
	if q.TopN() != 5 {
		t.Errorf("expected default top_n 5, got %d", q.TopN())
	}
}

func TestBuildQuery_SingleModeRequiresTarget(t *testing.T) {
	_, err := buildQuery("invoice", &SearchOptions{Mode: ModeSingle})
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestBuildQuery_UnknownType(t *testing.T) {
	_, err := buildQuery("invoice", &SearchOptions{Type: "regex"})
	if !errors.Is(err, domain.ErrUnsupportedSearchType) {
		t.Fatalf("expected ErrUnsupportedSearchType, got %v", err)
	}
}

func TestToInternalFilter(t *testing.T) {
	f, err := toInternalFilter(Filters{
		DateRange: &DateRange{Start: 1, End: 2},
		PageRange: &PageRange{First: 1, Last: 9},
		FileTypes: []string{"pdf"},
		Tags:      []string{"finance"},
	})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if f.DateRange() == nil || f.DateRange().End != 2 {
		t.Errorf("date range lost: %+v", f.DateRange())
	}
	if !f.AllowsPage(9) || f.AllowsPage(10) {
		t.Error("page range not applied")
	}
	if len(f.FileTypes()) != 1 || len(f.Tags()) != 1 {
		t.Errorf("slices lost: types=%v tags=%v", f.FileTypes(), f.Tags())
	}
}

func TestToInternalFilter_Invalid(t *testing.T) {
	if _, err := toInternalFilter(Filters{PageRange: &PageRange{First: 4, Last: 1}}); err == nil {
		t.Fatal("expected error for inverted page range")
	}
}

func TestNoopEmbedder_Errors(t *testing.T) {
	if _, err := (noopEmbedder{}).Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error from unconfigured embedder")
	}
}
