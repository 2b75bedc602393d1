package flat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

func TestSearchOrdersByDistanceThenPosition(t *testing.T) {
	ix := New()
	if err := ix.Upsert(context.Background(), 0, [][]float32{{0, 0}, {3, 4}, {1, 0}, {0, 1}}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	hits, err := ix.Search(context.Background(), []float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []domain.VectorHit{{RecordIndex: 0, Distance: 0}, {RecordIndex: 2, Distance: 1}, {RecordIndex: 3, Distance: 1}}
	if len(hits) != len(want) {
		t.Fatalf("unexpected hits: %+v", hits)
	}
	for i := range want {
		if hits[i] != want[i] {
			t.Fatalf("hit %d = %+v, want %+v", i, hits[i], want[i])
		}
	}
}

func TestUpsertAtOffsetLeavesGapsUnsearchable(t *testing.T) {
	ix := New()
	if err := ix.Upsert(context.Background(), 5, [][]float32{{1, 1}}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	hits, err := ix.Search(context.Background(), []float32{0, 0}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].RecordIndex != 5 || ix.Len() != 1 {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}

func TestTruncateDropsTrailingVectors(t *testing.T) {
	ix := New()
	_ = ix.Upsert(context.Background(), 0, [][]float32{{0, 0}, {1, 1}, {2, 2}})

	if err := ix.Truncate(context.Background(), 1); err != nil {
		t.Fatalf("Truncate() error = %v", err)
	}
	hits, err := ix.Search(context.Background(), []float32{2, 2}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if ix.Len() != 1 || len(hits) != 1 || hits[0].RecordIndex != 0 {
		t.Fatalf("expected only position 0 after truncate, len=%d hits=%+v", ix.Len(), hits)
	}

	if err := ix.Truncate(context.Background(), 10); err != nil || ix.Len() != 1 {
		t.Fatalf("truncate beyond the end must be a no-op, len=%d err=%v", ix.Len(), err)
	}
	if err := ix.Truncate(context.Background(), -1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestTruncateToZeroResetsDimension(t *testing.T) {
	ix := New()
	_ = ix.Upsert(context.Background(), 0, [][]float32{{1, 2}})
	_ = ix.Truncate(context.Background(), 0)

	if err := ix.Upsert(context.Background(), 0, [][]float32{{1, 2, 3}}); err != nil {
		t.Fatalf("expected a new dimension after reset, got %v", err)
	}
}

func TestUpsertRejectsDimensionMismatch(t *testing.T) {
	ix := New()
	_ = ix.Upsert(context.Background(), 0, [][]float32{{1, 2}})

	err := ix.Upsert(context.Background(), 1, [][]float32{{1, 2, 3}})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := ix.Search(context.Background(), []float32{1}, 1); err == nil {
		t.Fatalf("expected query dimension error")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "flat.gob")
	ix := New()
	_ = ix.Upsert(context.Background(), 0, [][]float32{{1, 0}, {0, 1}})

	if err := ix.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	hits, err := loaded.Search(context.Background(), []float32{0, 1}, 1)
	if err != nil || len(hits) != 1 || hits[0].RecordIndex != 1 {
		t.Fatalf("unexpected hits after reload: %+v, %v", hits, err)
	}
}

func TestLoadMissingFileReturnsEmptyIndex(t *testing.T) {
	ix, err := Load(filepath.Join(t.TempDir(), "missing.gob"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if ix == nil || ix.Len() != 0 {
		t.Fatalf("expected empty index")
	}
}
