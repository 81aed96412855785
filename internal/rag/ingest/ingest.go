package ingest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/notionModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/metrics"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/chunker"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/embedding"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/vectorDB"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

var logger *logger_i.Logger

// WorkspaceFetcher is what a sync job needs from the Notion layer.
type WorkspaceFetcher interface {
	FetchWorkspace(ctx context.Context, rootPageIDs []string) ([]notionModel.Page, error)
}

// ProcessWorkspaceSync refetches every configured root page tree and rebuilds
// its slice of the index. Each root's old chunks are purged before the fresh
// ones go in, so pages deleted from Notion since the last sync disappear from
// retrieval instead of lingering.
func ProcessWorkspaceSync(ctx context.Context, job jobModel.Job, fetcher WorkspaceFetcher, splitter *chunker.Splitter, e embedding.Embedder, vectorDatabase vectorDB.DataProcessor) jobModel.Job {
	logger = logger_i.NewLogger("workspace_sync")
	loggr := logger.With("traceId", job.TraceId)

	job.CurrentStep = jobModel.SyncFetching
	pages, fetchErr := fetcher.FetchWorkspace(ctx, job.JobPayload.RootPageIDs)
	if len(pages) == 0 && fetchErr != nil {
		loggr.Error("Workspace fetch failed", "error", fetchErr)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Could not fetch any workspace pages"
		return job
	}
	if fetchErr != nil {
		loggr.Warn("Partial workspace fetch", "error", fetchErr)
	}

	job.CurrentStep = jobModel.SyncIndexing
	for _, rootID := range job.JobPayload.RootPageIDs {
		if err := vectorDatabase.DeleteByRoot(ctx, config.WorkspaceCollection, rootID); err != nil {
			loggr.Error("Stale tree cleanup failed", "rootPageId", rootID, "error", err)
			job.Status = jobModel.JobStatusError
			job.Error.Message = "Could not purge previously indexed root page"
			return job
		}
	}

	totalChunks := 0
	for _, page := range pages {
		// the root purge misses pages last indexed under a root that is no
		// longer configured, so each page still clears its own chunk ids
		err := vectorDatabase.DeleteBySource(ctx, config.WorkspaceCollection, page.ID)
		if err != nil {
			loggr.Error("Stale chunk cleanup failed", "pageId", page.ID, "error", err)
			job.Status = jobModel.JobStatusError
			job.Error.Message = "Could not replace previously indexed page"
			return job
		}

		chunks := splitter.Split(page)
		err = BatchIngest(ctx, chunks, vectorDatabase, e)
		if err != nil {
			loggr.Error("Page indexing failed", "pageId", page.ID, "error", err)
			job.Status = jobModel.JobStatusError
			job.Error.Message = "Embedding or upsert failed"
			return job
		}
		totalChunks += len(chunks)
	}

	metrics.SyncedPages.Add(float64(len(pages)))
	metrics.SyncedChunks.Add(float64(totalChunks))

	job.JobPayload.PagesSynced = len(pages)
	job.JobPayload.ChunksSynced = totalChunks
	job.Status = jobModel.JobStatusComplete
	loggr.Info("Workspace sync finished", "pages", len(pages), "chunks", totalChunks)
	return job
}

// ProcessDocumentIngestion indexes one uploaded file. The extracted text is
// treated like a fetched page so it flows through the same chunk and upsert
// path, with the job id standing in for the page id.
func ProcessDocumentIngestion(ctx context.Context, job jobModel.Job, splitter *chunker.Splitter, e embedding.Embedder, vectorDatabase vectorDB.DataProcessor) jobModel.Job {
	logger = logger_i.NewLogger("document_ingestion")
	loggr := logger.With("traceId", job.TraceId)

	docName := job.JobPayload.IngestFileName
	docPath := job.JobPayload.IngestURL
	loggr.Debug("Processing document", "filename", docName, "path", docPath)

	job.CurrentStep = jobModel.IngestExtract
	docType := getDocType(docPath)
	if docType == docTypeErr {
		loggr.Error("Unsupported document type", "path", docPath)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Unsupported document type"
		return job
	}

	text, err := extractText(docPath, docType)
	if err != nil {
		loggr.Error("Error extracting document content", "error", err)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Error extracting document content"
		return job
	}

	page := notionModel.Page{
		ID:        job.Id,
		Title:     docName,
		Source:    notionModel.SourceUpload,
		Content:   text,
		FetchedAt: time.Now().UTC(),
	}

	job.CurrentStep = jobModel.SyncIndexing
	chunks := splitter.Split(page)
	err = BatchIngest(ctx, chunks, vectorDatabase, e)
	if err != nil {
		loggr.Error("Error indexing document", "error", err)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Embedding or upsert failed"
		return job
	}

	if err := os.Remove(docPath); err != nil {
		loggr.Error("Error removing uploaded file", "error", err)
	}

	metrics.SyncedChunks.Add(float64(len(chunks)))
	job.JobPayload.ChunksSynced = len(chunks)
	job.Status = jobModel.JobStatusComplete
	return job
}

// BatchIngest embeds and upserts chunks in fixed-size batches so one oversized
// page cannot blow the embedding request limit.
func BatchIngest(ctx context.Context, chunks []notionModel.Chunk, vectorDatabase vectorDB.DataProcessor, e embedding.Embedder) error {
	for i := 0; i < len(chunks); i += config.EmbeddingBatchSize {
		end := i + config.EmbeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		currentBatch := chunks[i:end]

		texts := make([]string, len(currentBatch))
		for j, c := range currentBatch {
			texts[j] = c.Text
		}

		vectors, err := e.BatchEmbedding(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}

		err = vectorDatabase.UpsertBatch(ctx, config.WorkspaceCollection, currentBatch, vectors)
		if err != nil {
			return fmt.Errorf("upserting batch failed: %w", err)
		}
	}
	return nil
}
