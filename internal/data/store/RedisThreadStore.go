package store

import (
	"context"
	"fmt"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/data/redisStore"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

// RedisThreadStore keeps the recent exchanges per Slack thread. Keys are
// "<channel>:<thread_ts>" and values are rendered question/answer pairs, ready
// to drop into the LLM prompt as history.
type RedisThreadStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisThreadStore(ctx context.Context, settings config.Settings) *RedisThreadStore {
	backing := redisStore.GetRedisStore(ctx, config.RedisThreadStore, settings.RedisAddr, settings.RedisPassword)
	if backing == nil {
		return nil
	}
	return &RedisThreadStore{
		store:  backing,
		logger: logger_i.NewLogger("ThreadStore"),
	}
}

func (s *RedisThreadStore) ThreadExists(ctx context.Context, threadKey string) bool {
	found, err := s.store.Exists(ctx, threadKey)
	if err != nil && !s.store.IsNil(err) {
		s.logger.Error("Failed to check thread", "threadKey", threadKey, "error", err)
		return false
	}
	return found
}

func (s *RedisThreadStore) InitThread(ctx context.Context, threadKey string) error {
	err := s.store.Del(ctx, threadKey)
	if err != nil && !s.store.IsNil(err) {
		s.logger.Error("Error initializing thread", "threadKey", threadKey, "error", err)
		return err
	}
	return s.store.ListPush(ctx, threadKey, renderExchange(jobModel.JobPayload{}), config.RedisThreadTTL)
}

func (s *RedisThreadStore) AppendExchange(ctx context.Context, threadKey string, payload jobModel.JobPayload) error {
	err := s.store.ListPush(ctx, threadKey, renderExchange(payload), config.RedisThreadTTL)
	if err != nil {
		s.logger.Error("Error saving exchange", "threadKey", threadKey, "error", err)
	}
	return err
}

func (s *RedisThreadStore) GetHistory(ctx context.Context, threadKey string) ([]string, error) {
	res, err := s.store.ListGetLast5(ctx, threadKey)
	if err != nil {
		s.logger.Error("Error getting thread history", "threadKey", threadKey, "error", err)
		return nil, err
	}

	history := make([]string, 0, len(res))
	for _, line := range res {
		if line != "" {
			history = append(history, line)
		}
	}
	return history, nil
}

func renderExchange(payload jobModel.JobPayload) string {
	if payload.Question == "" && payload.Answer == "" {
		return ""
	}
	return fmt.Sprintf("Question: %s\nAnswer: %s", payload.Question, payload.Answer)
}

func TestThreadStore(store *redisStore.Store) *RedisThreadStore {
	return &RedisThreadStore{
		store:  store,
		logger: logger_i.NewLogger("test_thread_store"),
	}
}
