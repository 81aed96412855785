package rag_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/notionModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/chunker"
)

func newTestService(t *testing.T, v *MockVectorDB, l *MockLLM, e *MockEmbedder, f *MockFetcher) rag.Service {
	t.Helper()
	splitter, err := chunker.New(100, 10)
	if err != nil {
		t.Fatal(err)
	}
	return rag.NewService(v, l, e, f, splitter, 4)
}

func questionJob() jobModel.Job {
	return jobModel.Job{
		Id:      "test-job",
		TraceId: "test-trace",
		JobType: jobModel.JobTypeQuestion,
		Status:  jobModel.JobStatusQueued,
		JobPayload: jobModel.JobPayload{
			Question: "where is the runbook?",
		},
	}
}

func TestProcessQuestion_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockVectorDB, l *MockLLM)
		expectedStep   jobModel.InternalStatus
		expectedStatus jobModel.JobStatus
		expectedAnswer string
		expectedErr    string
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, q string, blocks []string, h []string) (string, error) {
					return "final answer", nil
				}
			},
			expectedStep:   jobModel.Complete,
			expectedStatus: jobModel.JobStatusQueued,
			expectedAnswer: "final answer",
		},
		{
			name: "Success_Cache_Hit",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "cached answer", true, nil
				}
				l.OnGenerate = func(ctx context.Context, q string, blocks []string, h []string) (string, error) {
					t.Error("LLM must not run on a cache hit")
					return "", nil
				}
			},
			expectedStep:   jobModel.Complete,
			expectedStatus: jobModel.JobStatusQueued,
			expectedAnswer: "cached answer",
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "EMBEDDING_FAILURE",
		},
		{
			name: "Failure_Vector_Search",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnQuery = func(ctx context.Context, emb []float32, k int) ([]notionModel.QueryMatch, error) {
					return nil, errors.New("db timeout")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "VECTOR_DB_FAILURE",
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, q string, blocks []string, h []string) (string, error) {
					return "", errors.New("provider down")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "LLM_GENERATION_FAILURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mVec, mLLM)
			s := newTestService(t, mVec, mLLM, mEmbed, &MockFetcher{})

			result := s.ProcessQuestion(context.Background(), questionJob(), nil)

			if result.Status != tt.expectedStatus {
				t.Errorf("status = %s, want %s", result.Status, tt.expectedStatus)
			}
			if tt.expectedAnswer != "" && result.JobPayload.Answer != tt.expectedAnswer {
				t.Errorf("answer = %q, want %q", result.JobPayload.Answer, tt.expectedAnswer)
			}
			if tt.expectedStep != "" && result.CurrentStep != tt.expectedStep {
				t.Errorf("step = %s, want %s", result.CurrentStep, tt.expectedStep)
			}
			if tt.expectedErr != "" && result.Error.Message != tt.expectedErr {
				t.Errorf("error = %q, want %q", result.Error.Message, tt.expectedErr)
			}
		})
	}
}

func TestProcessQuestionNumbersContextAndCitations(t *testing.T) {
	mVec := &MockVectorDB{
		OnQuery: func(ctx context.Context, emb []float32, k int) ([]notionModel.QueryMatch, error) {
			return []notionModel.QueryMatch{
				{ChunkID: "aaa:0", PageID: "aaa", Title: "Onboarding", URL: "https://notion.so/aaa", Text: "first", Score: 0.9},
				{ChunkID: "aaa:1", PageID: "aaa", Title: "Onboarding", URL: "https://notion.so/aaa", Text: "second", Score: 0.8},
				{ChunkID: "bbb:0", PageID: "bbb", Title: "Runbook", URL: "https://notion.so/bbb", Text: "third", Score: 0.7},
			}, nil
		},
	}

	var seenBlocks []string
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, q string, blocks []string, h []string) (string, error) {
			seenBlocks = blocks
			return "answer [1][3]", nil
		},
	}

	s := newTestService(t, mVec, mLLM, &MockEmbedder{}, &MockFetcher{})
	result := s.ProcessQuestion(context.Background(), questionJob(), nil)

	if len(seenBlocks) != 3 {
		t.Fatalf("blocks = %d, want 3", len(seenBlocks))
	}
	for i, prefix := range []string{"[1] Onboarding", "[2] Onboarding", "[3] Runbook"} {
		if !strings.HasPrefix(seenBlocks[i], prefix) {
			t.Errorf("block %d = %q, want prefix %q", i, seenBlocks[i], prefix)
		}
	}

	// one citation per page, not per chunk
	if len(result.JobPayload.Citations) != 2 {
		t.Fatalf("citations = %d, want 2", len(result.JobPayload.Citations))
	}
	if result.JobPayload.Citations[1].PageID != "bbb" || result.JobPayload.Citations[1].Label != 3 {
		t.Errorf("citation = %+v", result.JobPayload.Citations[1])
	}
}

func TestRetrievePassesThroughMatches(t *testing.T) {
	var gotK int
	mVec := &MockVectorDB{
		OnQuery: func(ctx context.Context, emb []float32, k int) ([]notionModel.QueryMatch, error) {
			gotK = k
			return []notionModel.QueryMatch{{ChunkID: "x:0", Score: 0.5}}, nil
		},
	}

	s := newTestService(t, mVec, &MockLLM{}, &MockEmbedder{}, &MockFetcher{})

	matches, err := s.Retrieve(context.Background(), "query", 7)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if gotK != 7 || len(matches) != 1 {
		t.Errorf("k = %d, matches = %d", gotK, len(matches))
	}

	// k below 1 falls back to the configured default
	_, err = s.Retrieve(context.Background(), "query", 0)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if gotK != 4 {
		t.Errorf("default k = %d, want 4", gotK)
	}
}

func TestSyncWorkspaceCompletes(t *testing.T) {
	fetcher := &MockFetcher{
		OnFetchWorkspace: func(ctx context.Context, roots []string) ([]notionModel.Page, error) {
			return []notionModel.Page{{ID: "p1", Title: "Page", Content: "body text"}}, nil
		},
	}
	mEmbed := &MockEmbedder{
		OnBatchEmbedding: func(ctx context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i := range out {
				out[i] = []float32{1}
			}
			return out, nil
		},
	}

	s := newTestService(t, &MockVectorDB{}, &MockLLM{}, mEmbed, fetcher)

	job := jobModel.Job{Id: "sync-1", JobType: jobModel.JobTypeSync, JobPayload: jobModel.JobPayload{RootPageIDs: []string{"p1"}}}
	result := s.SyncWorkspace(context.Background(), job)

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("status = %s, error = %+v", result.Status, result.Error)
	}
	if result.JobPayload.PagesSynced != 1 {
		t.Errorf("pages synced = %d", result.JobPayload.PagesSynced)
	}
}
