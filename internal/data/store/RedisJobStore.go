package store

import (
	"context"
	"encoding/json"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/data/redisStore"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

type RedisJobStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisJobStore returns nil when Redis is unreachable; main falls back to
// the in-memory store in that case.
func GetRedisJobStore(ctx context.Context, settings config.Settings) *RedisJobStore {
	backing := redisStore.GetRedisStore(ctx, config.RedisJobStore, settings.RedisAddr, settings.RedisPassword)
	if backing == nil {
		return nil
	}
	return &RedisJobStore{
		store:  backing,
		logger: logger_i.NewLogger("JobStore"),
	}
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	log := s.logger.With("traceId", job.TraceId, "jobId", job.Id)
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, job.Id, data, config.RedisJobStoreTTL)
	if err == nil {
		log.Debug("Saved job to Redis")
	}
	return err
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	var job jobModel.Job
	val, err := s.store.Get(ctx, jobId)
	if s.store.IsNil(err) {
		return job, false
	} else if err != nil {
		s.logger.Error("Error reading job from Redis", "jobId", jobId, "error", err)
		return job, false
	}

	err = json.Unmarshal([]byte(val), &job)
	if err != nil {
		s.logger.Error("Error unmarshalling job", "jobId", jobId, "error", err)
		return job, false
	}
	return job, true
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobID string) {
	err := s.store.Del(ctx, jobID)
	if err != nil {
		s.logger.Error("Error deleting job from Redis", "jobId", jobID, "error", err)
		return
	}
	s.logger.Debug("Job deleted from Redis", "jobId", jobID)
}

func TestJobStore(store *redisStore.Store) *RedisJobStore {
	return &RedisJobStore{
		store:  store,
		logger: logger_i.NewLogger("test_job_store"),
	}
}
