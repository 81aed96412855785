package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/data/store"
	jobmodel "github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/handlers"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/job"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/middleware"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/notion"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/chunker"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/embedding"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/embedding/googleEmbedding"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/embedding/openaiEmbedding"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/llm/gemini"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/vectorDB"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/vectorDB/memoryDB"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/vectorDB/qdrantDB"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/server"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/slackbot"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/worker"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	settings, err := config.Load()
	if err != nil {
		logger_i.Init(slog.LevelInfo, false)
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	logger_i.Init(settings.LogLevel, settings.IsProd)
	var logger = logger_i.NewLogger("main")

	flag.StringVar(&listenAddr, "listen-addr", settings.ListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and stores
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}

	jobStore := store.GetRedisJobStore(serviceContext, settings)
	threadStore := store.GetRedisThreadStore(serviceContext, settings)
	if jobStore == nil || threadStore == nil {
		logger.Error("Redis stores are offline, falling back to in-memory stores")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.ThreadStore = store.InitInMemoryThreadStore()
	} else {
		serviceConfig.JobStore = jobStore
		serviceConfig.ThreadStore = threadStore
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	var vectorDatabase vectorDB.DataProcessor
	if qdrantClient := qdrantDB.GetQdrantClient(serviceContext, settings); qdrantClient != nil {
		vectorDatabase = qdrantClient
	} else {
		logger.Error("Qdrant is offline, falling back to the in-memory index")
		vectorDatabase = memoryDB.NewIndex(int(settings.EmbeddingDimension))
	}

	var embeddingService embedding.Embedder
	switch settings.Provider {
	case "google":
		embeddingService = googleEmbedding.GetGoogleEmbeddingClient(serviceContext, settings)
	default:
		embeddingService = openaiEmbedding.GetOpenAIEmbeddingClient(serviceContext, settings)
	}
	llmProvider := gemini.GetGeminiClient(serviceContext, settings)

	if embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	splitter, err := chunker.New(settings.ChunkSize, settings.ChunkOverlap)
	if err != nil {
		logger.Error("Invalid chunking configuration", "error", err)
		return
	}

	fetcher := notion.NewFetcher(settings)
	ragService := rag.NewService(vectorDatabase, llmProvider, embeddingService, fetcher, splitter, settings.RetrieverTopK)

	handlers.InitJobHandler(service, settings.NotionRootPageIDs)
	middleware.Init(settings)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//slack socket mode app, registered as the worker's answer notifier
	slackApp := slackbot.NewApp(settings)
	worker.SetNotifier(slackApp)
	go func() {
		if err := slackApp.Run(serviceContext); err != nil && serviceContext.Err() == nil {
			logger.Error("Slack app stopped", "error", err)
		}
	}()

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
