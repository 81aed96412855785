package googleEmbedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/embedding"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
}

func newGoogleEmbedder(ctx context.Context, settings config.Settings) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: settings.GoogleAPIKey})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
	}
	if c != nil {
		embeddingClient = &client{
			genAi:     c,
			model:     settings.GoogleEmbeddingModel,
			dimension: settings.EmbeddingDimension,
		}
		logger.Debug("Google Embedding model name: " + settings.GoogleEmbeddingModel)
		logger.Info("Google Embedding client created")
		go closeClient(ctx, embeddingClient)
	}
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func GetGoogleEmbeddingClient(ctx context.Context, settings config.Settings) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, settings)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := c.doCall(ctx, genai.Text(query))
	if err != nil {
		log.Error("Error getting Embedding from Google", "error", err.Error())
		return nil, err
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("google embedding: empty response for query")
	}
	if err := c.checkDimension(result.Embeddings[0].Values); err != nil {
		return nil, err
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	res, err := c.doCall(ctx, getContent(texts))
	if err != nil {
		if isRateLimited(err) {
			log.Debug("Rate limited, retrying in 5 seconds")
			time.Sleep(5 * time.Second)
			res, err = c.doCall(ctx, getContent(texts))
		}
		if err != nil {
			log.Error("Error getting Embeddings from Google", "error", err.Error())
			return nil, err
		}
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("google embedding: got %d embeddings for %d texts", len(res.Embeddings), len(texts))
	}

	embeddingResults := make([][]float32, 0, len(res.Embeddings))
	for _, r := range res.Embeddings {
		if err := c.checkDimension(r.Values); err != nil {
			return nil, err
		}
		embeddingResults = append(embeddingResults, r.Values)
	}
	return embeddingResults, nil
}

func (c *client) checkDimension(values []float32) error {
	if int32(len(values)) != c.dimension {
		return fmt.Errorf("google embedding: got %d dimensions, want %d", len(values), c.dimension)
	}
	return nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             "RETRIEVAL_DOCUMENT",
	})
}

func getContent(texts []string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.Text(t)...)
	}
	return contents
}

func isRateLimited(err error) bool {
	s, ok := status.FromError(err)
	return ok && s.Code() == codes.ResourceExhausted
}
