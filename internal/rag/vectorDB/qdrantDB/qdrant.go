package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/notionModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once

type ClientHolder struct {
	QObj      *qdrant.Client
	dimension uint64
	topK      int
}

// GetQdrantClient dials Qdrant once and reuses the client. Returns nil when
// the database is unreachable so main can fall back to the in-memory index.
func GetQdrantClient(ctx context.Context, settings config.Settings) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(settings)
		if res != nil {
			qdrantInstance = res
			initCacheCollection(ctx, qdrantInstance, settings)
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj:      qdrantInstance,
		dimension: uint64(settings.EmbeddingDimension),
		topK:      settings.RetrieverTopK,
	}
}

func newClient(settings config.Settings) *qdrant.Client {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     settings.QdrantHost,
		Port:     settings.QdrantPort,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	setupCtx, cancel := context.WithTimeout(context.Background(), config.QdrantConnectionTimeout)
	defer cancel()
	err = createCollection(setupCtx, client, config.WorkspaceCollection, uint64(settings.EmbeddingDimension))
	if err != nil {
		logger.Error("could not create collection: ", "collectionName", config.WorkspaceCollection, "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) Query(ctx context.Context, vector []float32, k int) ([]notionModel.QueryMatch, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if uint64(len(vector)) != db.dimension {
		return nil, fmt.Errorf("qdrant: vector dimension %d does not match index dimension %d", len(vector), db.dimension)
	}
	if k < 1 {
		k = db.topK
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: config.WorkspaceCollection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	matches := make([]notionModel.QueryMatch, 0, len(result))
	for _, hit := range result {
		matches = append(matches, notionModel.QueryMatch{
			ChunkID: hit.Payload["chunk_id"].GetStringValue(),
			PageID:  hit.Payload["page_id"].GetStringValue(),
			Title:   hit.Payload["title"].GetStringValue(),
			URL:     hit.Payload["url"].GetStringValue(),
			Text:    hit.Payload["content"].GetStringValue(),
			Score:   hit.Score,
		})
	}

	// Qdrant orders by score but leaves equal scores unordered; pin the
	// chunk-id tie-break here so both backends rank identically.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ChunkID < matches[j].ChunkID
	})

	loggr.Debug("Vector query finished", "matches", len(matches))
	return matches, nil
}

func (db *ClientHolder) EnsureCollection(ctx context.Context, collectionName string) error {
	return createCollection(ctx, db.QObj, collectionName, db.dimension)
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, chunks []notionModel.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		if uint64(len(vectors[i])) != db.dimension {
			return fmt.Errorf("qdrant: vector dimension %d does not match index dimension %d", len(vectors[i]), db.dimension)
		}
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(chunk.ChunkID)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":    chunk.ChunkID,
				"content":     chunk.Text,
				"page_id":     chunk.Page.ID,
				"root_page":   chunk.Page.RootPageID,
				"title":       chunk.Page.Title,
				"url":         chunk.Page.URL,
				"ordinal":     int64(chunk.Ordinal),
				"span_start":  int64(chunk.SpanStart),
				"span_end":    int64(chunk.SpanEnd),
				"ingested_at": chunk.Page.FetchedAt.Unix(),
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// DeleteBySource drops every point whose payload carries the page id. Used
// before re-upserting a refetched page so stale chunks never linger.
func (db *ClientHolder) DeleteBySource(ctx context.Context, collectionName string, pageID string) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("page_id", pageID)},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete by source failed: %w", err)
	}
	return nil
}

// DeleteByRoot drops every point indexed under the root page's tree, matching
// on the root_page payload written at upsert. Runs before a sync re-adds the
// root so pages deleted from Notion do not survive as stale vectors.
func (db *ClientHolder) DeleteByRoot(ctx context.Context, collectionName string, rootPageID string) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("root_page", rootPageID)},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete by root failed: %w", err)
	}
	return nil
}

// pointID maps a deterministic chunk id onto the UUID space Qdrant accepts.
// Same chunk id, same point, so re-sync overwrites instead of duplicating.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string, dimension uint64) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}
