package port

import "docchat/internal/domain"

type Chunker interface {
	Split(text string) []domain.Chunk
}
