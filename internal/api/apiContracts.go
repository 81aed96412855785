// @title           Notion Workspace Q&A API
// @version         1.0
// @description     Asynchronous question answering and workspace sync over indexed Notion content.

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ThreadKey string            `json:"thread_key,omitempty" example:"C042:1712.0001"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type CitationResponse struct {
	Label int     `json:"label" example:"1"`
	Title string  `json:"title" example:"Incident Runbook"`
	URL   string  `json:"url" example:"https://notion.so/abc123"`
	Score float32 `json:"score" example:"0.87"`
}

type AnswerResponse struct {
	Question  string             `json:"question"`
	Answer    string             `json:"answer"`
	Citations []CitationResponse `json:"citations,omitempty"`
}

type SyncResult struct {
	PagesSynced  int `json:"pages_synced"`
	ChunksSynced int `json:"chunks_synced"`
}

type Result struct {
	Status     string          `json:"status"`
	RAGPayload *AnswerResponse `json:"answer,omitempty"`
	SyncStats  *SyncResult     `json:"sync,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

// requests---------------------

type AskRequest struct {
	Question  string `json:"question" validate:"required"`
	ThreadKey string `json:"thread_key,omitempty"`
}

type SyncRequest struct {
	// optional override, defaults to the configured roots
	RootPageIDs []string `json:"root_page_ids,omitempty"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}
