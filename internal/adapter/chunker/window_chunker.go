package chunker

import (
	"strings"
	"unicode/utf8"

	"docchat/internal/domain"
)

// WindowChunker splits normalized text into fixed-size overlapping segments.
// Overlap preserves semantic continuity across boundaries; snapping the cut
// to the nearest preceding space avoids splitting words.
type WindowChunker struct {
	size    int
	overlap int
}

func NewWindowChunker(size, overlap int) *WindowChunker {
	return &WindowChunker{
		size:    size,
		overlap: overlap,
	}
}

// Split walks the whitespace-normalized input with a sliding window of the
// configured size. Pure-whitespace input yields no chunks.
func (c *WindowChunker) Split(text string) []domain.Chunk {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return nil
	}

	var chunks []domain.Chunk
	start := 0
	index := 0
	n := len(normalized)

	for start < n {
		// Indices are bytes; nudge forward off any multi-byte rune so raw
		// boundaries never emit invalid UTF-8.
		for start < n && !utf8.RuneStart(normalized[start]) {
			start++
		}
		if start >= n {
			break
		}

		end := start + c.size
		if end > n {
			end = n
		}
		if end < n {
			// Snap to the nearest space at or before the tentative end so a
			// word is never cut. Keep the raw boundary if the window holds a
			// single unbroken token.
			if sp := strings.LastIndexByte(normalized[:end+1], ' '); sp > start {
				end = sp
			}
			for end < n && !utf8.RuneStart(normalized[end]) {
				end++
			}
		}

		chunks = append(chunks, domain.Chunk{
			Text:  strings.TrimSpace(normalized[start:end]),
			Index: index,
		})
		index++

		if end < n {
			next := end - c.overlap
			if next <= start {
				// Guard against non-progress: degenerate size/overlap, or a
				// boundary snap that keeps landing on the same space ahead of
				// a long unbroken token.
				next = end
			}
			start = next
		} else {
			start = end
		}
	}

	return chunks
}
