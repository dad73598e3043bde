package port

import "context"

// Extractor converts raw file bytes into plain text. Corrupt or unsupported
// input is an error; empty extracted text is reported as empty string and
// left to the caller to treat as a validation failure.
type Extractor interface {
	Extract(ctx context.Context, filename, contentType string, data []byte) (string, error)
}
