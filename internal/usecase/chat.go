package usecase

import (
	"context"
	"fmt"

	"docchat/internal/domain"
	"docchat/internal/port"
)

const systemPromptBase = `You are a helpful assistant that answers questions based on the documents the user has uploaded.
- Answer only from the provided document context when relevant; otherwise say you don't have that information in the documents.
- When you use a specific passage from the context, cite it inline like [Source: filename] so the user knows which doc it came from.
- Be concise and accurate. If the user hasn't uploaded any documents yet, suggest they upload a PDF to get started.`

// Chatter runs one chat turn: it assembles document context for the latest
// user question and streams the model's answer.
type Chatter struct {
	contexts *ContextBuilder
	model    port.ChatModel
}

func NewChatter(contexts *ContextBuilder, model port.ChatModel) *Chatter {
	return &Chatter{contexts: contexts, model: model}
}

// LastUserQuery returns the text of the most recent user message, or "".
func LastUserQuery(messages []domain.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Text()
		}
	}
	return ""
}

// BuildSystemPrompt appends the document context to the base instructions
// when there is any context to give.
func BuildSystemPrompt(docContext string) string {
	if docContext == "" {
		return systemPromptBase
	}
	return systemPromptBase + "\n\n## Document context (use this to answer):\n\n" + docContext
}

// Stream answers the conversation, forwarding each text fragment to onDelta.
func (c *Chatter) Stream(ctx context.Context, messages []domain.Message, docIDs []string, owner string, onDelta func(string) error) error {
	query := LastUserQuery(messages)
	docContext, err := c.contexts.Build(ctx, query, docIDs, owner)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	system := BuildSystemPrompt(docContext)
	if err := c.model.Stream(ctx, system, messages, onDelta); err != nil {
		return fmt.Errorf("chat with %s: %w", c.model.ModelName(), err)
	}
	return nil
}
