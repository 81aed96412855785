package rag

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/notionModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/metrics"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans string, citations []notionModel.Citation) jobModel.Job {
	job.JobPayload.Answer = ans
	job.JobPayload.Citations = citations
	job.CurrentStep = jobModel.Complete
	return job
}

// buildContext numbers the retrieved chunks so the model can cite them as
// [1]..[n], and keeps the matching attribution for the final answer.
func buildContext(matches []notionModel.QueryMatch) ([]string, []notionModel.Citation) {
	contextBlocks := make([]string, 0, len(matches))
	citations := make([]notionModel.Citation, 0, len(matches))
	seen := make(map[string]bool)

	for i, m := range matches {
		contextBlocks = append(contextBlocks, fmt.Sprintf("[%d] %s\n%s", i+1, m.Title, m.Text))
		if seen[m.PageID] {
			continue
		}
		seen[m.PageID] = true
		citations = append(citations, notionModel.Citation{
			Label:  i + 1,
			Title:  m.Title,
			URL:    m.URL,
			PageID: m.PageID,
			Score:  m.Score,
		})
	}
	return contextBlocks, citations
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessQuestion", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) ([]float32, error) {
	*job = logOutput(*job, jobModel.EmbeddingAPICall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, job.JobPayload.Question)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) (string, bool) {
	*job = logOutput(*job, jobModel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, _ := s.vectorDB.GetCachedAnswer(ctx, emb)
	return ans, found
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) ([]notionModel.QueryMatch, error) {
	*job = logOutput(*job, jobModel.VectorDBCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	return s.vectorDB.Query(ctx, emb, s.topK)
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, contextBlocks []string, history []string) (string, error) {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, job.JobPayload.Question, contextBlocks, history)
}
