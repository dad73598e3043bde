package port

import (
	"context"

	"docchat/internal/domain"
)

// ChatModel is the chat completion collaborator. Stream invokes onDelta for
// each generated token fragment in order; returning an error from onDelta
// aborts the stream.
type ChatModel interface {
	Stream(ctx context.Context, system string, messages []domain.Message, onDelta func(delta string) error) error

	// ModelName returns the name of the model.
	ModelName() string
}
