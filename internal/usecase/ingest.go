// Package usecase holds the application services that tie ports together.
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docchat/internal/adapter/embedding"
	"docchat/internal/domain"
	"docchat/internal/logger"
	"docchat/internal/port"
)

// Ingestor turns raw uploads into chunked, optionally embedded documents.
type Ingestor struct {
	chunker  port.Chunker
	embedder *embedding.Capability
	docs     port.DocumentStore
	extract  port.Extractor
}

func NewIngestor(chunker port.Chunker, embedder *embedding.Capability, docs port.DocumentStore, extract port.Extractor) *Ingestor {
	return &Ingestor{
		chunker:  chunker,
		embedder: embedder,
		docs:     docs,
		extract:  extract,
	}
}

// IngestFile extracts text from the upload and stores the resulting document.
func (in *Ingestor) IngestFile(ctx context.Context, filename, contentType string, data []byte, owner string) (domain.Document, error) {
	text, err := in.extract.Extract(ctx, filename, contentType, data)
	if err != nil {
		return domain.Document{}, fmt.Errorf("extract %s: %w", filename, err)
	}
	return in.IngestText(ctx, filename, text, owner)
}

// IngestText chunks the text, attaches embeddings when the capability is
// available, and stores the document under the owner's scope.
func (in *Ingestor) IngestText(ctx context.Context, filename, text string, owner string) (domain.Document, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Document{}, fmt.Errorf("%s: %w", filename, domain.ErrEmptyDocument)
	}

	chunks := in.chunker.Split(text)
	if len(chunks) == 0 {
		return domain.Document{}, fmt.Errorf("%s: %w", filename, domain.ErrEmptyDocument)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	if vectors := in.embedder.EmbedBatch(ctx, texts); len(vectors) == len(chunks) {
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
	} else if in.embedder.Available() {
		logger.Warn("embeddings unavailable for %s, falling back to flat retrieval", filename)
	}

	doc := domain.Document{
		ID:         uuid.NewString(),
		Filename:   filename,
		Chunks:     chunks,
		FullText:   text,
		UploadedAt: time.Now().UnixMilli(),
	}
	if err := in.docs.Put(ctx, doc, owner); err != nil {
		return domain.Document{}, fmt.Errorf("store %s: %w", filename, err)
	}
	logger.Info("ingested %s: %d chunks", filename, len(chunks))
	return doc, nil
}
