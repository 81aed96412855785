package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

// api is the slice of the Notion REST surface the fetcher needs. The real
// client satisfies it; tests swap in a fake.
type api interface {
	GetPage(ctx context.Context, pageID string) (*notionapi.Page, error)
	GetBlockChildren(ctx context.Context, blockID string, cursor string) (*notionapi.GetChildrenResponse, error)
	QueryDatabase(ctx context.Context, databaseID string, cursor string) (*notionapi.DatabaseQueryResponse, error)
}

type restClient struct {
	client   *notionapi.Client
	pageSize int
}

func newRestClient(token string, pageSize int) *restClient {
	return &restClient{
		client:   notionapi.NewClient(notionapi.Token(token)),
		pageSize: pageSize,
	}
}

func (c *restClient) GetPage(ctx context.Context, pageID string) (*notionapi.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, config.NotionRequestTimeout)
	defer cancel()
	return c.client.Page.Get(ctx, notionapi.PageID(pageID))
}

func (c *restClient) GetBlockChildren(ctx context.Context, blockID string, cursor string) (*notionapi.GetChildrenResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, config.NotionRequestTimeout)
	defer cancel()
	return c.client.Block.GetChildren(ctx, notionapi.BlockID(blockID), &notionapi.Pagination{
		StartCursor: notionapi.Cursor(cursor),
		PageSize:    c.pageSize,
	})
}

func (c *restClient) QueryDatabase(ctx context.Context, databaseID string, cursor string) (*notionapi.DatabaseQueryResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, config.NotionRequestTimeout)
	defer cancel()
	return c.client.Database.Query(ctx, notionapi.DatabaseID(databaseID), &notionapi.DatabaseQueryRequest{
		StartCursor: notionapi.Cursor(cursor),
		PageSize:    c.pageSize,
	})
}

// NewFetcher builds a workspace fetcher backed by the Notion REST API.
func NewFetcher(settings config.Settings) *Fetcher {
	return &Fetcher{
		api:    newRestClient(settings.NotionToken, settings.NotionPageSize),
		logger: logger_i.NewLogger("notion"),
	}
}
