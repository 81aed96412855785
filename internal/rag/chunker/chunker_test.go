package chunker

import (
	"strings"
	"testing"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/notionModel"
)

func TestNew_RejectsBadOverlap(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"valid", 500, 50, false},
		{"zero overlap", 500, 0, false},
		{"overlap equals size", 500, 500, true},
		{"overlap above size", 500, 600, true},
		{"negative overlap", 500, -1, true},
		{"zero size", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%d, %d) error = %v, wantErr %v", tt.size, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestSplit_WindowLengthsAndOverlap(t *testing.T) {
	s, err := New(500, 50)
	if err != nil {
		t.Fatal(err)
	}

	page := notionModel.Page{ID: "page-1", Content: strings.Repeat("a", 450) + strings.Repeat("b", 450) + strings.Repeat("c", 300)}
	chunks := s.Split(page)

	wantLens := []int{500, 500, 300}
	if len(chunks) != len(wantLens) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(wantLens))
	}
	for i, c := range chunks {
		if len(c.Text) != wantLens[i] {
			t.Errorf("chunk %d length = %d, want %d", i, len(c.Text), wantLens[i])
		}
	}

	for i := 1; i < len(chunks); i++ {
		tail := chunks[i-1].Text[len(chunks[i-1].Text)-50:]
		if !strings.HasPrefix(chunks[i].Text, tail) {
			t.Errorf("chunk %d does not share exactly 50 characters with its predecessor", i)
		}
		if chunks[i].SpanStart != chunks[i-1].SpanEnd-50 {
			t.Errorf("chunk %d span start = %d, want %d", i, chunks[i].SpanStart, chunks[i-1].SpanEnd-50)
		}
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s, _ := New(500, 50)

	page := notionModel.Page{ID: "page-short", Content: "tiny"}
	chunks := s.Split(page)

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != "tiny" || chunks[0].SpanStart != 0 || chunks[0].SpanEnd != 4 {
		t.Errorf("unexpected chunk: %+v", chunks[0])
	}
}

func TestSplit_ExactSizeProducesOneChunk(t *testing.T) {
	s, _ := New(100, 20)

	page := notionModel.Page{ID: "p", Content: strings.Repeat("x", 100)}
	if got := len(s.Split(page)); got != 1 {
		t.Errorf("got %d chunks for text of exactly chunk size, want 1", got)
	}
}

func TestSplit_EmptyContent(t *testing.T) {
	s, _ := New(100, 10)
	if got := s.Split(notionModel.Page{ID: "p"}); got != nil {
		t.Errorf("expected no chunks for empty content, got %d", len(got))
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s, _ := New(64, 16)
	page := notionModel.Page{ID: "abc-def", Content: strings.Repeat("notion workspace text ", 40)}

	first := s.Split(page)
	second := s.Split(page)

	if len(first) != len(second) {
		t.Fatalf("re-chunking changed chunk count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ChunkID != second[i].ChunkID || first[i].Text != second[i].Text ||
			first[i].SpanStart != second[i].SpanStart || first[i].SpanEnd != second[i].SpanEnd {
			t.Errorf("chunk %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSplit_MultiByteRunes(t *testing.T) {
	s, _ := New(10, 2)
	page := notionModel.Page{ID: "jp", Content: strings.Repeat("日本語のドキュメント", 3)}

	chunks := s.Split(page)
	for i, c := range chunks {
		if got := len([]rune(c.Text)); got > 10 {
			t.Errorf("chunk %d has %d runes, want <= 10", i, got)
		}
	}
}

func TestChunkID_StripsDashes(t *testing.T) {
	if got := ChunkID("ab-cd-ef", 3); got != "abcdef:3" {
		t.Errorf("ChunkID = %q, want %q", got, "abcdef:3")
	}
}
