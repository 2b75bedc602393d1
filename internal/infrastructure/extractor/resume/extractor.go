package resume

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
	"github.com/kirillkom/job-search-assistant/internal/core/ports"
)

const maxResumeBytes = 10 << 20

var pdfMagic = []byte("%PDF-")

// Extractor reads a stored resume and returns its plain text. PDF and UTF-8
// text are supported.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, key string) (string, error) {
	reader, err := e.storage.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("open resume: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(io.LimitReader(reader, maxResumeBytes+1))
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	if len(raw) > maxResumeBytes {
		return "", domain.WrapError(domain.ErrInvalidInput, "read resume", fmt.Errorf("resume exceeds %d bytes", maxResumeBytes))
	}

	var text string
	switch {
	case bytes.HasPrefix(raw, pdfMagic):
		text, err = pdfText(raw)
		if err != nil {
			return "", domain.WrapError(domain.ErrInvalidInput, "parse pdf resume", err)
		}
	case utf8.Valid(raw):
		text = string(raw)
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "detect resume format", fmt.Errorf("unsupported binary format: %s", key))
	}
	return strings.Join(strings.Fields(text), " "), nil
}

func pdfText(raw []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
