package embedding

import (
	"context"
	"strings"

	"docchat/internal/logger"
	"docchat/internal/port"
)

// Capability wraps an optional embedding provider. Absence of a provider and
// provider failures both produce nil results rather than errors, so callers
// compose fallback retrieval without exception-style handling.
type Capability struct {
	provider port.Embedder
}

// NewCapability builds the capability around a provider; provider may be nil
// when no embedding service is configured.
func NewCapability(provider port.Embedder) *Capability {
	return &Capability{provider: provider}
}

// Available reports whether an embedding provider is configured.
func (c *Capability) Available() bool {
	return c != nil && c.provider != nil
}

// EmbedBatch embeds the given texts. Returns nil when the capability is
// unavailable, the input is empty, or the provider call fails.
func (c *Capability) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	if !c.Available() || len(texts) == 0 {
		return nil
	}
	vectors, err := c.provider.Embed(ctx, texts)
	if err != nil {
		logger.Warn("embedding batch failed, continuing without vectors: %v", err)
		return nil
	}
	return vectors
}

// EmbedQuery embeds a single query string. Returns nil for blank input,
// an unavailable capability, or a provider failure.
func (c *Capability) EmbedQuery(ctx context.Context, text string) []float32 {
	text = strings.TrimSpace(text)
	if !c.Available() || text == "" {
		return nil
	}
	vectors, err := c.provider.Embed(ctx, []string{text})
	if err != nil || len(vectors) == 0 {
		if err != nil {
			logger.Warn("query embedding failed, falling back to flat retrieval: %v", err)
		}
		return nil
	}
	return vectors[0]
}
