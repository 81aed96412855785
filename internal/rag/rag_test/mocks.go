package rag_test

import (
	"context"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/notionModel"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	OnQuery            func(ctx context.Context, vector []float32, k int) ([]notionModel.QueryMatch, error)
	OnGetCachedAnswer  func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache      func(ctx context.Context, id string, vector []float32, answer string) error
	OnEnsureCollection func(ctx context.Context, name string) error
	OnUpsertBatch      func(ctx context.Context, name string, chunks []notionModel.Chunk, vectors [][]float32) error
	OnDeleteBySource   func(ctx context.Context, name string, pageID string) error
	OnDeleteByRoot     func(ctx context.Context, name string, rootPageID string) error
}

func (m *MockVectorDB) Query(ctx context.Context, v []float32, k int) ([]notionModel.QueryMatch, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, v, k)
	}
	return []notionModel.QueryMatch{
		{ChunkID: "abc:0", PageID: "abc", Title: "Default Page", URL: "https://notion.so/abc", Text: "default context", Score: 0.9},
	}, nil
}

func (m *MockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return "", false, nil
}

func (m *MockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, a string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, v, a)
	}
	return nil
}

func (m *MockVectorDB) EnsureCollection(ctx context.Context, name string) error {
	if m.OnEnsureCollection != nil {
		return m.OnEnsureCollection(ctx, name)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, name string, chunks []notionModel.Chunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, name, chunks, vectors)
	}
	return nil
}

func (m *MockVectorDB) DeleteBySource(ctx context.Context, name string, pageID string) error {
	if m.OnDeleteBySource != nil {
		return m.OnDeleteBySource(ctx, name, pageID)
	}
	return nil
}

func (m *MockVectorDB) DeleteByRoot(ctx context.Context, name string, rootPageID string) error {
	if m.OnDeleteByRoot != nil {
		return m.OnDeleteByRoot(ctx, name, rootPageID)
	}
	return nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, texts)
	}
	return make([][]float32, len(texts)), nil
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, query string, contextBlocks []string, history []string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, q string, blocks []string, hist []string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, q, blocks, hist)
	}
	return "mocked llm response", nil
}

// MockFetcher implements ingest.WorkspaceFetcher
type MockFetcher struct {
	OnFetchWorkspace func(ctx context.Context, rootPageIDs []string) ([]notionModel.Page, error)
}

func (m *MockFetcher) FetchWorkspace(ctx context.Context, rootPageIDs []string) ([]notionModel.Page, error) {
	if m.OnFetchWorkspace != nil {
		return m.OnFetchWorkspace(ctx, rootPageIDs)
	}
	return []notionModel.Page{{ID: "abc", Title: "Default Page", Content: "default body"}}, nil
}
