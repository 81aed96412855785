package job

import (
	"sync/atomic"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
)

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	ThreadStore       jobModel.ThreadStore

	syncRunning int32
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	ThreadStore       jobModel.ThreadStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		ThreadStore:       cfg.ThreadStore,
	}
}

// TryStartSync claims the single sync slot. Only one workspace sync may run
// at a time; callers that fail the claim reject the request instead of
// queueing a second sync behind the first.
func (s *Service) TryStartSync() bool {
	return atomic.CompareAndSwapInt32(&s.syncRunning, 0, 1)
}

// FinishSync releases the slot. Called by the worker when the sync job ends,
// regardless of outcome.
func (s *Service) FinishSync() {
	atomic.StoreInt32(&s.syncRunning, 0)
}

func (s *Service) SyncInProgress() bool {
	return atomic.LoadInt32(&s.syncRunning) == 1
}
