package domain

import "errors"

var (
	// ErrNotFound signals a missing document, chat, or blob key. It is an
	// expected outcome, not a failure: callers resolve it by omission or a
	// 404 at the HTTP boundary.
	ErrNotFound = errors.New("not found")

	// ErrEmptyDocument means extraction succeeded but produced no text.
	ErrEmptyDocument = errors.New("no text could be extracted")

	// ErrUnsupportedType means the uploaded file's type is not handled.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrFileTooLarge means the upload exceeds the configured size cap.
	ErrFileTooLarge = errors.New("file too large")
)
