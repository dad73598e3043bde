// Package extract turns uploaded file bytes into plain text.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"docchat/internal/domain"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract converts the raw upload into plain text based on its declared
// content type, falling back to the filename extension when the type is
// missing or generic.
func (e *Extractor) Extract(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case contentType == "application/pdf" || ext == ".pdf":
		return pdfText(data)
	case strings.HasPrefix(contentType, "text/") || ext == ".txt" || ext == ".md":
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedType, filename, contentType)
	}
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return sb.String(), nil
}
