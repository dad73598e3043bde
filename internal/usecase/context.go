package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"

	"docchat/internal/adapter/embedding"
	"docchat/internal/domain"
	"docchat/internal/logger"
	"docchat/internal/port"
)

const (
	semanticTruncateMarker = "\n\n[... truncated ...]"
	flatTruncateMarker     = "\n\n[... truncated for context length ...]"
)

// ContextBuilder assembles the document context for a chat turn. When the
// query and the stored chunks are embeddable it picks the most similar
// chunks; otherwise it concatenates the documents as-is.
type ContextBuilder struct {
	docs     port.DocumentStore
	embedder *embedding.Capability
	topK     int
	maxChars int
}

func NewContextBuilder(docs port.DocumentStore, embedder *embedding.Capability, topK, maxChars int) *ContextBuilder {
	return &ContextBuilder{
		docs:     docs,
		embedder: embedder,
		topK:     topK,
		maxChars: maxChars,
	}
}

// Build returns the context string for the given documents. Unknown document
// IDs are skipped. An empty result means no usable document content.
func (b *ContextBuilder) Build(ctx context.Context, query string, docIDs []string, owner string) (string, error) {
	docs := make([]domain.Document, 0, len(docIDs))
	for _, id := range docIDs {
		doc, err := b.docs.Get(ctx, id, owner)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Warn("load document %s: %v", id, err)
			}
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return "", nil
	}

	if b.canRetrieveSemantically(query, docs) {
		if qvec := b.embedder.EmbedQuery(ctx, query); qvec != nil {
			return b.semanticContext(qvec, docs), nil
		}
		logger.Debug("query embedding failed, using flat context")
	}
	return b.flatContext(docs), nil
}

func (b *ContextBuilder) canRetrieveSemantically(query string, docs []domain.Document) bool {
	if strings.TrimSpace(query) == "" || !b.embedder.Available() {
		return false
	}
	for _, doc := range docs {
		for _, c := range doc.Chunks {
			if len(c.Embedding) > 0 {
				return true
			}
		}
	}
	return false
}

// semanticContext ranks every embedded chunk against the query vector and
// emits the top matches until the character budget runs out.
func (b *ContextBuilder) semanticContext(qvec []float32, docs []domain.Document) string {
	var scored []domain.ScoredChunk
	for _, doc := range docs {
		for _, c := range doc.Chunks {
			if len(c.Embedding) == 0 {
				continue
			}
			scored = append(scored, domain.ScoredChunk{
				Filename: doc.Filename,
				Chunk:    c,
				Score:    embedding.Cosine(qvec, c.Embedding),
			})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > b.topK {
		scored = scored[:b.topK]
	}

	var parts []string
	total := 0
	for _, sc := range scored {
		if total >= b.maxChars {
			break
		}
		block := "[" + sc.Filename + "]\n" + sc.Chunk.Text
		parts = append(parts, block)
		total += len(block)
	}
	out := strings.Join(parts, "\n\n")
	if len(out) > b.maxChars {
		out = out[:b.maxChars] + semanticTruncateMarker
	}
	return out
}

// flatContext concatenates every document in full, headed by its filename,
// and hard-truncates at the character budget.
func (b *ContextBuilder) flatContext(docs []domain.Document) string {
	sections := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts := make([]string, 0, len(doc.Chunks))
		for _, c := range doc.Chunks {
			texts = append(texts, c.Text)
		}
		sections = append(sections, "--- Document: "+doc.Filename+" ---\n"+strings.Join(texts, "\n\n"))
	}
	out := strings.Join(sections, "\n\n")
	if len(out) > b.maxChars {
		out = out[:b.maxChars] + flatTruncateMarker
	}
	return out
}
