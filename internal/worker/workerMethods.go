package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	jobmodel "github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/metrics"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.JobType), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, jobTimeout(job.JobType))
	defer cancel()

	log := logger.With("traceId", job.TraceId, "jobId", job.Id, "jobType", job.JobType)
	log.Debug("Processing job")

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	switch job.JobType {
	case jobmodel.JobTypeSync:
		job = _ragService.SyncWorkspace(ctx, job)
		_jobService.FinishSync()

	case jobmodel.JobTypeIngest:
		job = _ragService.IngestDocument(ctx, job)

	default:
		job = processQuestion(ctx, job, log)
	}

	job.EndTime = time.Now()
	if job.Status != jobmodel.JobStatusError {
		job.Status = jobmodel.JobStatusComplete
	}
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("Failed to persist finished job", "error", err)
	}

	if _notifier != nil && job.JobPayload.SlackChannel != "" {
		_notifier.NotifyAnswer(ctx, job)
	}
}

func jobTimeout(jobType jobmodel.JobType) time.Duration {
	if jobType == jobmodel.JobTypeSync {
		return config.SyncJobTimeout
	}
	return config.QueryJobTimeout
}

func processQuestion(ctx context.Context, job jobmodel.Job, log *logger_i.Logger) jobmodel.Job {
	var messageHistory []string
	if job.ThreadKey != "" {
		history, err := _jobService.ThreadStore.GetHistory(ctx, job.ThreadKey)
		if err != nil {
			log.Error("Failed to get thread history", "error", err)
		}
		messageHistory = history
	}

	job = _ragService.ProcessQuestion(ctx, job, messageHistory)

	if job.Status != jobmodel.JobStatusError && job.ThreadKey != "" {
		if err := _jobService.ThreadStore.AppendExchange(ctx, job.ThreadKey, job.JobPayload); err != nil {
			log.Error("Failed to save thread history", "error", err)
		}
	}
	return job
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update job status", "error", err)
	}
}
