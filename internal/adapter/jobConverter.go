package adapter

import (
	"fmt"
	"time"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/api"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:     string(job.Status),
		RAGPayload: toAnswerResponse(job.JobPayload),
		SyncStats:  toSyncResult(job),
	}

	return api.JobResponse{
		Id:        job.Id,
		ThreadKey: job.ThreadKey,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func toAnswerResponse(payload jobModel.JobPayload) *api.AnswerResponse {
	if payload.Answer == "" {
		return nil
	}

	citations := make([]api.CitationResponse, 0, len(payload.Citations))
	for _, c := range payload.Citations {
		citations = append(citations, api.CitationResponse{
			Label: c.Label,
			Title: c.Title,
			URL:   c.URL,
			Score: c.Score,
		})
	}

	return &api.AnswerResponse{
		Question:  payload.Question,
		Answer:    payload.Answer,
		Citations: citations,
	}
}

func toSyncResult(job jobModel.Job) *api.SyncResult {
	if job.JobType != jobModel.JobTypeSync && job.JobType != jobModel.JobTypeIngest {
		return nil
	}
	return &api.SyncResult{
		PagesSynced:  job.JobPayload.PagesSynced,
		ChunksSynced: job.JobPayload.ChunksSynced,
	}
}

func BadRequest(id string, message string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: message,
			Retry:   false,
		},
	}
}
