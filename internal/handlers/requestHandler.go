package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/adapter"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/adapter/utils"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/api"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

var logRH *logger_i.Logger

type newJobData struct {
	id             string
	threadKey      string
	question       string
	isNewThread    bool
	traceId        string
	jobType        jobModel.JobType
	rootPageIDs    []string
	documentName   string
	documentSource string
	slackChannel   string
	slackThreadTS  string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// AskHandler godoc
// @Summary      Ask a question
// @Description  Accepts a question, queues a background answer job, and returns a job ID to poll.
// @Tags         Questions
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest       true  "Question and optional thread key"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data or thread key"
// @Router       /ask [post]
func AskHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid context by request", "remote", request.RemoteAddr)
		return
	}

	var requestData api.AskRequest
	defer closeBody(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateAskRequest(requestData) {
		logRH.Warn("Bad ask request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ThreadKey, "Bad Request")
		return
	}

	threadKey := requestData.ThreadKey
	isNewThread := threadKey == ""
	if isNewThread {
		threadKey = utils.GetNewUUID()
	}

	newJob := newJobData{
		id:          utils.GetNewUUID(),
		threadKey:   threadKey,
		question:    requestData.Question,
		isNewThread: isNewThread,
		traceId:     traceFrom(request),
		jobType:     jobModel.JobTypeQuestion,
	}
	CreateNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

// SyncHandler godoc
// @Summary      Trigger a workspace sync
// @Description  Queues a full re-index of the configured Notion roots. Only one sync may run at a time.
// @Tags         Sync
// @Accept       json
// @Produce      json
// @Param        request  body      api.SyncRequest      false  "Optional root page override"
// @Success      202      {object}  api.InitJobResponse  "Sync job created"
// @Failure      409      {object}  api.JobResponse      "A sync is already running"
// @Router       /sync [post]
func SyncHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid context by request", "remote", request.RemoteAddr)
		return
	}

	var requestData api.SyncRequest
	defer closeBody(request.Body)
	// body is optional, a decode failure just means defaults
	_ = json.NewDecoder(request.Body).Decode(&requestData)

	roots := requestData.RootPageIDs
	if len(roots) == 0 {
		roots = defaultRootPageIDs()
	}

	if !TryClaimSync() {
		WriteErrorResponse(w, http.StatusConflict, "", "A workspace sync is already running")
		return
	}

	newJob := newJobData{
		id:          utils.GetNewUUID(),
		traceId:     traceFrom(request),
		jobType:     jobModel.JobTypeSync,
		rootPageIDs: roots,
	}
	CreateNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a job by its ID.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse  "The current status of the job"
// @Failure      404  {object}  api.JobResponse  "Job not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	idString := utils.GetChiURLParam(r, "id")
	result, isFound := validateId(idString, traceFrom(r))

	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// PostIngestHandler godoc
// @Summary      Upload a document for indexing
// @Description  Receives a file via multipart/form-data, saves it to a temporary directory, and queues an ingest job.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document_name  formData  string  true  "The display name of the document"
// @Param        document       formData  file    true  "The PDF, DOCX or text file to upload"
// @Success      202  {object}  api.InitJobResponse  "Ingest job created"
// @Failure      400  {object}  api.JobResponse  "Missing fields or file too large"
// @Failure      500  {object}  api.JobResponse  "Storage or write error"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid context by request", "remote", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory", "error", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	const maxUploadSize = 32 << 20 //32mb
	err := r.ParseMultipartForm(maxUploadSize)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	docName := r.FormValue("document_name")
	if docName == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "document_name is required")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
	tempFilePath := filepath.Join(targetDir, filename)
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
		return
	}

	newJob := newJobData{
		id:             utils.GetNewUUID(),
		traceId:        traceFrom(r),
		jobType:        jobModel.JobTypeIngest,
		documentName:   docName,
		documentSource: tempFilePath,
	}
	CreateNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

func traceFrom(r *http.Request) string {
	trace, _ := r.Context().Value(config.TRACE_ID_KEY).(string)
	return trace
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logRH.Error("Couldn't close the request body", "error", err)
	}
}
