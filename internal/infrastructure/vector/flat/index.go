// Package flat is an exact in-process nearest-neighbour index using L2 distance.
package flat

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

// Index stores one vector per corpus position and scans all of them per query.
type Index struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float32
}

func New() *Index {
	return &Index{}
}

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	n := 0
	for _, v := range ix.vectors {
		if len(v) > 0 {
			n++
		}
	}
	return n
}

func (ix *Index) Upsert(_ context.Context, startIndex int, vectors [][]float32) error {
	if startIndex < 0 {
		return domain.WrapError(domain.ErrInvalidInput, "flat upsert", fmt.Errorf("negative start index %d", startIndex))
	}
	if len(vectors) == 0 {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	for i, v := range vectors {
		if len(v) == 0 {
			return domain.WrapError(domain.ErrInvalidInput, "flat upsert", fmt.Errorf("empty vector at %d", startIndex+i))
		}
		if ix.dim == 0 {
			ix.dim = len(v)
		}
		if len(v) != ix.dim {
			return domain.WrapError(domain.ErrInvalidInput, "flat upsert", fmt.Errorf("vector at %d has dimension %d, index has %d", startIndex+i, len(v), ix.dim))
		}
	}

	if need := startIndex + len(vectors); need > len(ix.vectors) {
		grown := make([][]float32, need)
		copy(grown, ix.vectors)
		ix.vectors = grown
	}
	for i, v := range vectors {
		ix.vectors[startIndex+i] = append([]float32(nil), v...)
	}
	return nil
}

func (ix *Index) Truncate(_ context.Context, size int) error {
	if size < 0 {
		return domain.WrapError(domain.ErrInvalidInput, "flat truncate", fmt.Errorf("negative size %d", size))
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if size < len(ix.vectors) {
		clear(ix.vectors[size:])
		ix.vectors = ix.vectors[:size]
	}
	if len(ix.vectors) == 0 {
		ix.dim = 0
	}
	return nil
}

// Search returns up to k hits ordered by ascending distance, ties by position.
func (ix *Index) Search(ctx context.Context, vector []float32, k int) ([]domain.VectorHit, error) {
	if k <= 0 {
		return []domain.VectorHit{}, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.dim != 0 && len(vector) != ix.dim {
		return nil, fmt.Errorf("flat search: query dimension %d, index has %d", len(vector), ix.dim)
	}

	hits := make([]domain.VectorHit, 0, len(ix.vectors))
	for i, v := range ix.vectors {
		if len(v) == 0 {
			continue
		}
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		hits = append(hits, domain.VectorHit{RecordIndex: i, Distance: l2(vector, v)})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

type snapshot struct {
	Dim     int
	Vectors [][]float32
}

// Save writes the index to path atomically.
func (ix *Index) Save(path string) error {
	ix.mu.RLock()
	snap := snapshot{Dim: ix.dim, Vectors: ix.vectors}
	defer ix.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".flat-*.tmp")
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(snap); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close index file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

// Load reads an index written by Save. A missing file yields an empty index and os.ErrNotExist.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), err
		}
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return &Index{dim: snap.Dim, vectors: snap.Vectors}, nil
}
