package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/resilience"
)

func TestSummarizerSendsSystemAndUserPrompt(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"  three roles look good \n"}`))
	}))
	defer server.Close()

	summarizer := NewSummarizer(New(server.URL, "llama3", "nomic"))
	answer, err := summarizer.Summarize(context.Background(), domain.SummaryRequest{
		Query: "python jobs",
		Jobs:  []domain.JobRecord{{Title: "Python Engineer", Company: "Acme"}},
	})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if answer != "three roles look good" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if payload["model"] != "llama3" || payload["stream"] != false {
		t.Fatalf("unexpected payload: %v", payload)
	}
	userPrompt, _ := payload["prompt"].(string)
	if !strings.Contains(userPrompt, "python jobs") || !strings.Contains(userPrompt, "**Python Engineer** at Acme") {
		t.Fatalf("unexpected prompt: %s", userPrompt)
	}
	if system, _ := payload["system"].(string); system == "" {
		t.Fatalf("expected system prompt")
	}
}

func TestEmbedReturnsVectorsInInputOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "nomic" || len(req.Input) != 2 {
			t.Fatalf("unexpected embed request: %+v", req)
		}
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2],[0.3,0.4]]}`))
	}))
	defer server.Close()

	vectors, err := NewEmbedder(New(server.URL, "gen", "nomic")).Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 2 || vectors[1][0] != 0.3 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}
}

func TestEmbedIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := NewEmbedder(New(server.URL, "gen", "embed")).Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("400 must not be temporary: %v", err)
	}
}

func TestEmbedRetriesUnavailableModel(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "loading model", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"embeddings":[[1,2,3]]}`))
	}))
	defer server.Close()

	exec := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
	})
	vector, err := NewEmbedder(New(server.URL, "gen", "embed", WithExecutor(exec))).EmbedQuery(context.Background(), "hi")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if len(vector) != 3 || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("unexpected vector %v after %d calls", vector, calls)
	}
}

func TestEmbedMarksExhaustedRetriesTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewEmbedder(New(server.URL, "gen", "embed")).EmbedQuery(context.Background(), "hi")
	if !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}
