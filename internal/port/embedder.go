package port

import "context"

// Embedder is the raw embedding provider collaborator. Provider failures are
// returned as errors here; graceful degradation to nil results happens in the
// capability wrapper that sits on top.
type Embedder interface {
	// Embed generates one vector per input text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName returns the name of the embedding model.
	ModelName() string
}
