package domain

// Chunk is a bounded slice of a document's normalized text. Index reflects
// original document order. Embedding is set only when an embedding provider
// was available at ingest time.
type Chunk struct {
	Text      string    `json:"text"`
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Document is an uploaded document after text extraction and chunking.
// Documents are immutable once created; re-chunking means a new ID.
type Document struct {
	ID         string  `json:"id"`
	Filename   string  `json:"filename"`
	Chunks     []Chunk `json:"chunks"`
	FullText   string  `json:"fullText"`
	UploadedAt int64   `json:"uploadedAt"` // unix milliseconds
}

// DocInfo is the lightweight listing entry kept in the per-owner manifest.
type DocInfo struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	UploadedAt int64  `json:"uploadedAt"`
}

// ScoredChunk pairs a chunk with its similarity score against a query and
// the filename of the document it came from.
type ScoredChunk struct {
	Filename string
	Chunk    Chunk
	Score    float64
}

// MessagePart is one tagged content part of a chat message. Parts with an
// unrecognized Type are carried but ignored when extracting text.
type MessagePart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Message is a single chat turn as sent by the UI.
type Message struct {
	Role  string        `json:"role"`
	Parts []MessagePart `json:"parts"`
}

// Text returns the first text-kind part of the message, or "".
func (m Message) Text() string {
	for _, p := range m.Parts {
		if p.Type == "text" {
			return p.Text
		}
	}
	return ""
}

// Chat is a persisted chat transcript.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	UpdatedAt int64     `json:"updatedAt"`
}

// ChatInfo is the lightweight listing entry kept in the chats manifest.
type ChatInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt int64  `json:"updatedAt"`
}
