package chunker

import (
	"strings"

	"github.com/PjVineeth/vocab-assist/internal/domain"
)

// CharacterChunker splits text into fixed-size chunks with a fixed overlap
// between consecutive chunks. Boundaries depend only on position, never on
// content, so the same document always yields the same chunk sequence.
type CharacterChunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewCharacterChunker creates a chunker with the given size and overlap,
// both measured in runes. The overlap is clamped below the chunk size so
// splitting always advances.
func NewCharacterChunker(chunkSize, chunkOverlap int) *CharacterChunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize - 1
	}
	return &CharacterChunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Chunk splits the document into an ordered chunk sequence. It returns
// domain.ErrEmptyDocument when the document contains no text.
func (c *CharacterChunker) Chunk(document string) ([]domain.Chunk, error) {
	if strings.TrimSpace(document) == "" {
		return nil, domain.ErrEmptyDocument
	}
	runes := []rune(document)
	step := c.chunkSize - c.chunkOverlap
	var chunks []domain.Chunk
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, domain.Chunk{
			Index: len(chunks),
			Text:  string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
