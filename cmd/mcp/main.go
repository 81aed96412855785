package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/mcpserver"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/notion"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/chunker"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/embedding"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/embedding/googleEmbedding"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/embedding/openaiEmbedding"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/vectorDB"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/vectorDB/memoryDB"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/vectorDB/qdrantDB"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

const version = "1.0.0"

func main() {

	settings, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol, so logs go to stderr here
	logger_i.InitWithWriter(os.Stderr, slog.LevelWarn, settings.IsProd)
	logger := logger_i.NewLogger("mcp")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var vectorDatabase vectorDB.DataProcessor
	if qdrantClient := qdrantDB.GetQdrantClient(ctx, settings); qdrantClient != nil {
		vectorDatabase = qdrantClient
	} else {
		logger.Warn("Qdrant is offline, falling back to the in-memory index")
		vectorDatabase = memoryDB.NewIndex(int(settings.EmbeddingDimension))
	}

	var embeddingService embedding.Embedder
	switch settings.Provider {
	case "google":
		embeddingService = googleEmbedding.GetGoogleEmbeddingClient(ctx, settings)
	default:
		embeddingService = openaiEmbedding.GetOpenAIEmbeddingClient(ctx, settings)
	}
	if embeddingService == nil {
		logger.Error("Embedding provider failed to initialize")
		os.Exit(1)
	}

	splitter, err := chunker.New(settings.ChunkSize, settings.ChunkOverlap)
	if err != nil {
		logger.Error("Invalid chunking configuration", "error", err)
		os.Exit(1)
	}

	// search_workspace only retrieves; no LLM is wired here, so the binary
	// starts without generation credentials
	fetcher := notion.NewFetcher(settings)
	ragService := rag.NewService(vectorDatabase, nil, embeddingService, fetcher, splitter, settings.RetrieverTopK)

	mcpServer := mcpserver.New(ragService, settings.RetrieverTopK, version)
	if err := mcpServer.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("MCP server stopped", "error", err)
		os.Exit(1)
	}
}
