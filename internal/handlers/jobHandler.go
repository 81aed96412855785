package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/adapter/utils"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/api"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/job"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/metrics"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service      *job.Service
	defaultRoots []string
}

func InitJobHandler(jobService *job.Service, defaultRootPageIDs []string) {
	once.Do(func() {
		handlerInstance = &JobHandler{
			service:      jobService,
			defaultRoots: defaultRootPageIDs,
		}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
}

func CreateNewJob(newJob newJobData) {
	logJH.Info("To create new job", "traceId", newJob.traceId, "jobId", newJob.id, "jobType", newJob.jobType)
	handlerInstance.pushToJobChannel(newJob)
	if newJob.isNewThread {
		handlerInstance.initNewThread(newJob.threadKey, newJob.traceId)
	}
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// TryClaimSync reports whether the caller won the single sync slot.
func TryClaimSync() bool {
	if handlerInstance == nil {
		return false
	}
	return handlerInstance.service.TryStartSync()
}

// EnqueueSlackQuestion queues a question raised through a Slack mention and
// returns the job id. The channel and thread timestamp ride along on the
// payload so the worker can post the answer back into the thread.
func EnqueueSlackQuestion(question, threadKey, slackChannel, slackThreadTS, traceId string) string {
	jobId := utils.GetNewUUID()
	isNewThread := handlerInstance != nil &&
		!handlerInstance.service.ThreadStore.ThreadExists(context.Background(), threadKey)
	CreateNewJob(newJobData{
		id:            jobId,
		threadKey:     threadKey,
		question:      question,
		isNewThread:   isNewThread,
		traceId:       traceId,
		jobType:       jobModel.JobTypeQuestion,
		slackChannel:  slackChannel,
		slackThreadTS: slackThreadTS,
	})
	return jobId
}

// EnqueueSlackSync queues a workspace sync requested from Slack. The second
// return is false when another sync already holds the slot.
func EnqueueSlackSync(slackChannel, slackThreadTS, traceId string) (string, bool) {
	if !TryClaimSync() {
		return "", false
	}
	jobId := utils.GetNewUUID()
	CreateNewJob(newJobData{
		id:            jobId,
		traceId:       traceId,
		jobType:       jobModel.JobTypeSync,
		rootPageIDs:   defaultRootPageIDs(),
		slackChannel:  slackChannel,
		slackThreadTS: slackThreadTS,
	})
	return jobId, true
}

func ValidateAskRequest(askReq api.AskRequest) bool {
	if handlerInstance == nil {
		return false
	}
	if askReq.Question == "" {
		return false
	}
	if askReq.ThreadKey == "" {
		return true
	}
	return handlerInstance.service.ThreadStore.ThreadExists(context.Background(), askReq.ThreadKey)
}

func defaultRootPageIDs() []string {
	if handlerInstance == nil {
		return nil
	}
	return handlerInstance.defaultRoots
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {
	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued
	_job.JobType = newJob.jobType

	switch newJob.jobType {
	case jobModel.JobTypeIngest:
		_job.CurrentStep = jobModel.IngestInit
		_job.JobPayload.IngestFileName = newJob.documentName
		_job.JobPayload.IngestURL = newJob.documentSource

	case jobModel.JobTypeSync:
		_job.CurrentStep = jobModel.SyncInit
		_job.JobPayload.RootPageIDs = newJob.rootPageIDs

	default:
		_job.CurrentStep = jobModel.QuestionInit
		_job.ThreadKey = newJob.threadKey
		_job.JobPayload.Question = newJob.question
	}

	_job.JobPayload.SlackChannel = newJob.slackChannel
	_job.JobPayload.SlackThreadTS = newJob.slackThreadTS

	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //blocking send so the queue backpressures instead of growing
	logJH.Info("Created new job")

	// scale out every N requests; sync and ingest jobs run long so each one
	// gets a dispatcher signal of its own
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType != jobModel.JobTypeQuestion {
		metrics.StartDispatcherSignalCount()
		h.service.DispatcherChannel <- true
	}
}

func (h *JobHandler) initNewThread(threadKey string, traceId string) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	err := h.service.ThreadStore.InitThread(ctxC, threadKey)
	if err != nil {
		logJH.Error("Error initiating new thread", "threadKey", threadKey, "error", err)
	}
}
