package store

import (
	"context"
	"sync"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
)

type InMemoryThreadStore struct {
	threadLock *sync.RWMutex
	threadMap  map[string][]string
}

func InitInMemoryThreadStore() *InMemoryThreadStore {
	return &InMemoryThreadStore{
		threadLock: new(sync.RWMutex),
		threadMap:  make(map[string][]string),
	}
}

func (store *InMemoryThreadStore) ThreadExists(ctx context.Context, threadKey string) bool {
	store.threadLock.RLock()
	defer store.threadLock.RUnlock()
	_, ok := store.threadMap[threadKey]
	return ok
}

func (store *InMemoryThreadStore) InitThread(ctx context.Context, threadKey string) error {
	store.threadLock.Lock()
	defer store.threadLock.Unlock()
	store.threadMap[threadKey] = make([]string, 0)
	return nil
}

func (store *InMemoryThreadStore) AppendExchange(ctx context.Context, threadKey string, payload jobModel.JobPayload) error {
	rendered := renderExchange(payload)
	if rendered == "" {
		return nil
	}
	store.threadLock.Lock()
	defer store.threadLock.Unlock()
	store.threadMap[threadKey] = append(store.threadMap[threadKey], rendered)
	return nil
}

func (store *InMemoryThreadStore) GetHistory(ctx context.Context, threadKey string) ([]string, error) {
	store.threadLock.RLock()
	defer store.threadLock.RUnlock()

	history := store.threadMap[threadKey]
	if len(history) > 5 {
		history = history[len(history)-5:]
	}
	out := make([]string, len(history))
	copy(out, history)
	return out, nil
}
