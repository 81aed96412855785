package memoryDB

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/notionModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

type entry struct {
	chunk  notionModel.Chunk
	vector []float32
}

type cacheEntry struct {
	vector []float32
	answer string
}

// Index is the in-process fallback for when Qdrant is unreachable. It keeps
// the same contract: cosine ranking, per-chunk-id replacement, delete by page.
type Index struct {
	mu        sync.RWMutex
	dimension int
	workspace map[string]entry
	cache     map[string]cacheEntry
	logger    *logger_i.Logger
}

func NewIndex(dimension int) *Index {
	return &Index{
		dimension: dimension,
		workspace: make(map[string]entry),
		cache:     make(map[string]cacheEntry),
		logger:    logger_i.NewLogger("memory_index"),
	}
}

func (idx *Index) Query(ctx context.Context, vector []float32, k int) ([]notionModel.QueryMatch, error) {
	if len(vector) != idx.dimension {
		return nil, fmt.Errorf("memory index: vector dimension %d does not match index dimension %d", len(vector), idx.dimension)
	}
	if k < 1 {
		return nil, fmt.Errorf("memory index: k must be at least 1, got %d", k)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	matches := make([]notionModel.QueryMatch, 0, len(idx.workspace))
	for _, e := range idx.workspace {
		matches = append(matches, notionModel.QueryMatch{
			ChunkID: e.chunk.ChunkID,
			PageID:  e.chunk.Page.ID,
			Title:   e.chunk.Page.Title,
			URL:     e.chunk.Page.URL,
			Text:    e.chunk.Text,
			Score:   cosineSimilarity(vector, e.vector),
		})
	}

	// ties break on ascending chunk id so results are stable across runs
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ChunkID < matches[j].ChunkID
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (idx *Index) EnsureCollection(ctx context.Context, collectionName string) error {
	return nil
}

func (idx *Index) UpsertBatch(ctx context.Context, collectionName string, chunks []notionModel.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	for i := range vectors {
		if len(vectors[i]) != idx.dimension {
			return fmt.Errorf("memory index: vector dimension %d does not match index dimension %d", len(vectors[i]), idx.dimension)
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, chunk := range chunks {
		idx.workspace[chunk.ChunkID] = entry{chunk: chunk, vector: vectors[i]}
	}
	return nil
}

func (idx *Index) DeleteBySource(ctx context.Context, collectionName string, pageID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	plainID := strings.ReplaceAll(pageID, "-", "")
	for id, e := range idx.workspace {
		if e.chunk.Page.ID == pageID || strings.HasPrefix(id, plainID+":") {
			delete(idx.workspace, id)
		}
	}
	return nil
}

// DeleteByRoot drops every chunk indexed under the root page's tree. A sync
// calls this before re-adding a root so pages removed from Notion since the
// last sync do not linger.
func (idx *Index) DeleteByRoot(ctx context.Context, collectionName string, rootPageID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for id, e := range idx.workspace {
		if e.chunk.Page.RootPageID == rootPageID {
			delete(idx.workspace, id)
		}
	}
	return nil
}

func (idx *Index) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	if len(queryVector) != idx.dimension {
		return "", false, fmt.Errorf("memory index: vector dimension %d does not match index dimension %d", len(queryVector), idx.dimension)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	bestScore := float32(-1)
	bestAnswer := ""
	for _, e := range idx.cache {
		score := cosineSimilarity(queryVector, e.vector)
		if score > bestScore {
			bestScore = score
			bestAnswer = e.answer
		}
	}

	if bestScore < config.CacheSimilarityCutoff {
		return "", false, nil
	}
	return bestAnswer, true, nil
}

func (idx *Index) SaveToCache(ctx context.Context, id string, vector []float32, answer string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.cache[id] = cacheEntry{vector: vector, answer: answer}
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
