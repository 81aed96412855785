package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/adapter/utils"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/notionModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/metrics"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/chunker"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/embedding"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/ingest"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/llm"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/vectorDB"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

// Service is the one surface the worker and the MCP server talk to. Workers
// hand in jobs and get finished jobs back; nothing upstream touches the
// vector database, the embedder or the LLM directly.
type Service interface {
	ProcessQuestion(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job
	SyncWorkspace(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	Retrieve(ctx context.Context, query string, k int) ([]notionModel.QueryMatch, error)
}

type service struct {
	vectorDB    vectorDB.DataProcessor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	fetcher     ingest.WorkspaceFetcher
	splitter    *chunker.Splitter
	topK        int
	logger      *logger_i.Logger
}

func NewService(vector vectorDB.DataProcessor, llmProvider llm.Provider, em embedding.Embedder, fetcher ingest.WorkspaceFetcher, splitter *chunker.Splitter, topK int) Service {
	return &service{
		vectorDB:    vector,
		llmProvider: llmProvider,
		embedder:    em,
		fetcher:     fetcher,
		splitter:    splitter,
		topK:        topK,
		logger:      logger_i.NewLogger("rag_service"),
	}
}

func (s *service) ProcessQuestion(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", job.TraceId, "jobId", job.Id)

	processContext, cancel := context.WithTimeout(ctx, config.QueryJobTimeout)
	defer cancel()

	job.CurrentStep = jobModel.RAGCall

	queryVector, err := s.executeEmbeddingStep(processContext, inMethodLogger, &job)
	if err != nil {
		return s.jobError(job, err, "EMBEDDING_FAILURE", true)
	}

	cachedAnswer, found := s.executeCacheCheckStep(processContext, inMethodLogger, &job, queryVector)
	if found {
		metrics.AnswerCacheHits.Inc()
		return returnOutput(job, cachedAnswer, nil)
	}

	matches, err := s.executeVectorSearchStep(processContext, inMethodLogger, &job, queryVector)
	if err != nil {
		return s.jobError(job, err, "VECTOR_DB_FAILURE", true)
	}
	contextBlocks, citations := buildContext(matches)

	answer, err := s.executeLLMStep(processContext, inMethodLogger, &job, contextBlocks, messageHistory)
	if err != nil {
		return s.jobError(job, err, "LLM_GENERATION_FAILURE", true)
	}

	go func() {
		err := s.vectorDB.SaveToCache(context.WithoutCancel(ctx), utils.GetNewUUID(), queryVector, answer)
		if err != nil {
			s.logger.Error("Failed to save answer to cache", "error", err)
		}
	}()

	return returnOutput(job, answer, citations)
}

// Retrieve runs embed-then-search without generation. The MCP search tool
// uses it to expose raw matches.
func (s *service) Retrieve(ctx context.Context, query string, k int) ([]notionModel.QueryMatch, error) {
	if k < 1 {
		k = s.topK
	}
	queryVector, err := s.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query failed: %w", err)
	}
	return s.vectorDB.Query(ctx, queryVector, k)
}

func (s *service) SyncWorkspace(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("workspace_sync", time.Since(start)) }()

	syncContext, cancel := context.WithTimeout(ctx, config.SyncJobTimeout)
	defer cancel()

	j := ingest.ProcessWorkspaceSync(syncContext, job, s.fetcher, s.splitter, s.embedder, s.vectorDB)
	if j.Status != jobModel.JobStatusComplete {
		return s.jobError(j, errors.New("workspace sync failed"), "SYNC_FAILURE", true)
	}
	return j
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()
	j := ingest.ProcessDocumentIngestion(ctx, job, s.splitter, s.embedder, s.vectorDB)
	if j.Status != jobModel.JobStatusComplete {
		return s.jobError(j, errors.New("document ingest failed"), "INGESTION_FAILURE", true)
	}
	return j
}
