package openaiEmbedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/embedding"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	openAi    openai.Client
	model     string
	dimension int32
}

func GetOpenAIEmbeddingClient(_ context.Context, settings config.Settings) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		embeddingClient = &client{
			openAi:    openai.NewClient(option.WithAPIKey(settings.OpenAIAPIKey)),
			model:     settings.OpenAIEmbeddingModel,
			dimension: settings.EmbeddingDimension,
		}
		logger.Debug("OpenAI Embedding model name: " + settings.OpenAIEmbeddingModel)
		logger.Info("OpenAI Embedding client created")
	})
	return embeddingClient
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	res, err := c.openAi.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: openai.Int(int64(c.dimension)),
	})
	if err != nil {
		log.Error("Error getting Embeddings from OpenAI", "error", err.Error())
		return nil, err
	}
	if len(res.Data) != len(texts) {
		return nil, fmt.Errorf("openai embedding: got %d embeddings for %d texts", len(res.Data), len(texts))
	}

	vectors := make([][]float32, len(res.Data))
	for _, item := range res.Data {
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		if int32(len(vec)) != c.dimension {
			return nil, fmt.Errorf("openai embedding: dimension %d does not match configured %d", len(vec), c.dimension)
		}
		vectors[item.Index] = vec
	}
	return vectors, nil
}
