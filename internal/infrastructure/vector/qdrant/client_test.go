package qdrant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

func TestUpsertEnsuresCollectionOncePerVectorSize(t *testing.T) {
	var ensureCalls int32
	var lastIDs []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/jobs":
			atomic.AddInt32(&ensureCalls, 1)
			var body map[string]map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["vectors"]["distance"] != "Euclid" {
				t.Fatalf("unexpected distance metric: %v", body["vectors"])
			}
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/jobs/points":
			var body struct {
				Points []struct {
					ID int `json:"id"`
				} `json:"points"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			lastIDs = lastIDs[:0]
			for _, p := range body.Points {
				lastIDs = append(lastIDs, p.ID)
			}
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "jobs", nil)
	vectors := [][]float32{{0.1, 0.2}, {0.3, 0.4}}

	if err := client.Upsert(context.Background(), 0, vectors); err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}
	if err := client.Upsert(context.Background(), 32, vectors); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if got := atomic.LoadInt32(&ensureCalls); got != 1 {
		t.Fatalf("expected ensure collection called once, got %d", got)
	}
	if len(lastIDs) != 2 || lastIDs[0] != 32 || lastIDs[1] != 33 {
		t.Fatalf("expected point ids at corpus positions, got %v", lastIDs)
	}
}

func TestEnsureCollectionToleratesConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/collections/jobs" {
			http.Error(w, "exists", http.StatusConflict)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	if err := New(server.URL, "jobs", nil).Upsert(context.Background(), 0, [][]float32{{1}}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
}

func TestEnsureCollectionIncludesResponseBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/jobs" {
			http.Error(w, "boom", http.StatusBadRequest)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	err := New(server.URL, "jobs", nil).Upsert(context.Background(), 0, [][]float32{{0.1, 0.2}})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected error to include body, got %v", err)
	}
}

func TestSearchMapsPointIDsToRecordIndices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/jobs/points/search" {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["limit"] != float64(3) {
			t.Fatalf("unexpected limit: %v", body["limit"])
		}
		_, _ = w.Write([]byte(`{"result":[
			{"id": 4, "score": 0.12},
			{"id": "6f1c1c2e-8c43-4a55-9e6a-1f0b2d3c4e5f", "score": 0.2},
			{"id": 1, "score": 0.35}
		]}`))
	}))
	defer server.Close()

	hits, err := New(server.URL, "jobs", nil).Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []domain.VectorHit{{RecordIndex: 4, Distance: 0.12}, {RecordIndex: 1, Distance: 0.35}}
	if len(hits) != len(want) || hits[0] != want[0] || hits[1] != want[1] {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}

func TestSearchUnavailableIsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := New(server.URL, "jobs", nil).Search(context.Background(), []float32{1}, 2)
	if !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestTruncateDeletesPointsFromSize(t *testing.T) {
	var gotFilter map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/collections/jobs/points/delete" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("wait") != "true" {
			t.Errorf("expected wait=true, got %q", r.URL.RawQuery)
		}
		var body struct {
			Filter map[string]any `json:"filter"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotFilter = body.Filter
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	if err := New(server.URL, "jobs", nil).Truncate(context.Background(), 3); err != nil {
		t.Fatalf("Truncate() error = %v", err)
	}
	raw, _ := json.Marshal(gotFilter)
	want := `{"must":[{"key":"record_index","range":{"gte":3}}]}`
	if string(raw) != want {
		t.Fatalf("unexpected filter %s, want %s", raw, want)
	}
}

func TestTruncateIgnoresMissingCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":{"error":"Not found: Collection jobs doesn't exist"}}`, http.StatusNotFound)
	}))
	defer server.Close()

	if err := New(server.URL, "jobs", nil).Truncate(context.Background(), 0); err != nil {
		t.Fatalf("expected missing collection to be ignored, got %v", err)
	}
}
