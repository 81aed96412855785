package vectorDB

import (
	"context"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/notionModel"
)

// DataProcessor is what the RAG service and the sync pipeline see of the
// vector index. Both backends rank by cosine similarity with ties broken by
// ascending chunk id, so swapping them never reorders results.
type DataProcessor interface {
	Query(ctx context.Context, vector []float32, k int) ([]notionModel.QueryMatch, error)
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error

	EnsureCollection(ctx context.Context, collectionName string) error
	UpsertBatch(ctx context.Context, collectionName string, chunks []notionModel.Chunk, vectors [][]float32) error
	DeleteBySource(ctx context.Context, collectionName string, pageID string) error
	DeleteByRoot(ctx context.Context, collectionName string, rootPageID string) error
}
