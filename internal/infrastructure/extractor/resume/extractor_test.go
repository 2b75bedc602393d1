package resume

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

type memStorage map[string][]byte

func (m memStorage) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m[key] = raw
	return nil
}

func (m memStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := m[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func TestExtractPlainText(t *testing.T) {
	store := memStorage{"cv.txt": []byte("Go  developer\n\nKubernetes, PostgreSQL")}

	text, err := NewExtractor(store).Extract(context.Background(), "cv.txt")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "Go developer Kubernetes, PostgreSQL" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractRejectsBinary(t *testing.T) {
	store := memStorage{"cv.bin": {0xff, 0xfe, 0x00, 0x81}}

	_, err := NewExtractor(store).Extract(context.Background(), "cv.bin")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExtractRejectsBrokenPDF(t *testing.T) {
	store := memStorage{"cv.pdf": []byte("%PDF-1.4\nthis is not a real pdf")}

	_, err := NewExtractor(store).Extract(context.Background(), "cv.pdf")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExtractMissingKey(t *testing.T) {
	_, err := NewExtractor(memStorage{}).Extract(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
}
