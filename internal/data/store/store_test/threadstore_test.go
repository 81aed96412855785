package store_test

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/data/redisStore"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/data/store"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
)

func newThreadStore(t *testing.T) *store.RedisThreadStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestThreadStore(redisStore.NewTestStore(client))
}

func TestRedisThreadStore_Lifecycle(t *testing.T) {
	threadStore := newThreadStore(t)
	ctx := context.Background()
	threadKey := "C123:1712.0001"

	if threadStore.ThreadExists(ctx, threadKey) {
		t.Fatal("thread must not exist before init")
	}

	if err := threadStore.InitThread(ctx, threadKey); err != nil {
		t.Fatalf("InitThread: %v", err)
	}
	if !threadStore.ThreadExists(ctx, threadKey) {
		t.Fatal("thread missing after init")
	}

	err := threadStore.AppendExchange(ctx, threadKey, jobModel.JobPayload{
		Question: "what is the oncall rotation?",
		Answer:   "weekly, starts Monday",
	})
	if err != nil {
		t.Fatalf("AppendExchange: %v", err)
	}

	history, err := threadStore.GetHistory(ctx, threadKey)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if !strings.Contains(history[0], "oncall rotation") || !strings.Contains(history[0], "starts Monday") {
		t.Errorf("history entry = %q", history[0])
	}
}

func TestRedisThreadStore_HistoryCapsAtFive(t *testing.T) {
	threadStore := newThreadStore(t)
	ctx := context.Background()
	threadKey := "C123:1712.0002"

	if err := threadStore.InitThread(ctx, threadKey); err != nil {
		t.Fatalf("InitThread: %v", err)
	}
	for i := 0; i < 8; i++ {
		err := threadStore.AppendExchange(ctx, threadKey, jobModel.JobPayload{
			Question: "q" + strconv.Itoa(i),
			Answer:   "a" + strconv.Itoa(i),
		})
		if err != nil {
			t.Fatalf("AppendExchange %d: %v", i, err)
		}
	}

	history, err := threadStore.GetHistory(ctx, threadKey)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("history length = %d, want 5", len(history))
	}
	// oldest entries fall off, newest stays last
	if !strings.Contains(history[0], "q3") || !strings.Contains(history[4], "q7") {
		t.Errorf("history window = %v", history)
	}
}
