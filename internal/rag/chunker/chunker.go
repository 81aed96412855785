package chunker

import (
	"fmt"
	"strings"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/notionModel"
)

// Splitter cuts page content into fixed-size character windows where every
// consecutive pair shares exactly `overlap` characters. The boundaries depend
// only on the text and the two parameters, so re-chunking unchanged content
// yields identical chunk ids and spans.
type Splitter struct {
	size    int
	overlap int
}

func New(size int, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunker: size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunker: overlap must satisfy 0 <= overlap < size, got overlap=%d size=%d", overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Split windows the page content. Text shorter than the chunk size yields
// exactly one chunk; empty content yields none. Sizes and spans are counted
// in runes so multi-byte content chunks the same way every run.
func (s *Splitter) Split(page notionModel.Page) []notionModel.Chunk {
	runes := []rune(page.Content)
	total := len(runes)
	if total == 0 {
		return nil
	}

	stride := s.size - s.overlap
	chunks := make([]notionModel.Chunk, 0, total/stride+1)

	for start := 0; start < total; start += stride {
		end := start + s.size
		if end > total {
			end = total
		}

		ordinal := len(chunks)
		chunks = append(chunks, notionModel.Chunk{
			Page:      page,
			ChunkID:   ChunkID(page.ID, ordinal),
			Ordinal:   ordinal,
			Text:      string(runes[start:end]),
			SpanStart: start,
			SpanEnd:   end,
		})

		if end == total {
			break
		}
	}

	return chunks
}

// ChunkID builds the stable per-window id: the page id without dashes, a
// colon, and the window ordinal. Re-syncing a page overwrites the same ids.
func ChunkID(pageID string, ordinal int) string {
	return fmt.Sprintf("%s:%d", strings.ReplaceAll(pageID, "-", ""), ordinal)
}
