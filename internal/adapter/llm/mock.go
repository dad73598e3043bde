package llm

import (
	"context"
	"strings"

	"docchat/internal/domain"
)

// MockChat streams a canned reply word by word. Useful for local development
// and handler tests without a provider key.
type MockChat struct {
	Reply string
}

func NewMockChat() *MockChat {
	return &MockChat{Reply: "This is a mock reply. Configure a chat provider to get real answers."}
}

func (m *MockChat) ModelName() string {
	return "mock"
}

func (m *MockChat) Stream(ctx context.Context, _ string, _ []domain.Message, onDelta func(string) error) error {
	words := strings.Fields(m.Reply)
	for i, w := range words {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := w
		if i < len(words)-1 {
			out += " "
		}
		if err := onDelta(out); err != nil {
			return err
		}
	}
	return nil
}
