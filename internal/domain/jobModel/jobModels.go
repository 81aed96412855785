package jobModel

import (
	"context"
	"time"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/notionModel"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	QuestionInit     InternalStatus = "Init"
	CacheCall        InternalStatus = "CacheCall"
	RAGCall          InternalStatus = "RAG"
	LLMCall          InternalStatus = "LLM"
	VectorDBCall     InternalStatus = "VectorDB"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"
	RedisCall        InternalStatus = "Redis"

	SyncInit       InternalStatus = "SyncInit"
	SyncFetching   InternalStatus = "SyncFetching"
	SyncIndexing   InternalStatus = "SyncIndexing"
	IngestInit     InternalStatus = "IngestInit"
	IngestExtract  InternalStatus = "IngestExtract"
	Error          InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeQuestion JobType = "Question"
	JobTypeSync     JobType = "Sync"
	JobTypeIngest   JobType = "Ingest"
)

type Job struct {
	Id          string         `json:"id"`
	ThreadKey   string         `json:"thread_key"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Question  string                 `json:"question,omitempty"`
	Answer    string                 `json:"answer,omitempty"`
	Citations []notionModel.Citation `json:"citations,omitempty"`

	//slack routing for question jobs
	SlackChannel  string `json:"slack_channel,omitempty"`
	SlackThreadTS string `json:"slack_thread_ts,omitempty"`

	//workspace sync jobs
	RootPageIDs  []string `json:"root_page_ids,omitempty"`
	PagesSynced  int      `json:"pages_synced,omitempty"`
	ChunksSynced int      `json:"chunks_synced,omitempty"`

	//file-upload ingest jobs
	IngestFileName string `json:"ingest_file_name,omitempty"`
	IngestURL      string `json:"ingest_url,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

// ThreadStore keeps the recent question/answer exchanges per Slack thread so
// follow-up mentions get conversational context.
type ThreadStore interface {
	ThreadExists(ctx context.Context, threadKey string) bool
	AppendExchange(ctx context.Context, threadKey string, payload JobPayload) error
	InitThread(ctx context.Context, threadKey string) error
	GetHistory(ctx context.Context, threadKey string) ([]string, error)
}
