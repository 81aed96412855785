package notion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/notionModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

// Fetcher walks a set of root pages and flattens every reachable page into
// plain text. Child pages and database rows become pages of their own; any
// other nested block is rendered inline under its parent.
type Fetcher struct {
	api    api
	logger *logger_i.Logger
}

type pendingPage struct {
	id     string
	rootID string
	source notionModel.SourceType
}

// FetchWorkspace traverses every configured root and returns the reachable
// pages. A failing page is logged and skipped; the error reports how many
// were dropped so the caller can decide whether a partial sync is acceptable.
func (f *Fetcher) FetchWorkspace(ctx context.Context, rootPageIDs []string) ([]notionModel.Page, error) {
	loggr := f.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	visitedPages := make(map[string]bool)
	visitedDatabases := make(map[string]bool)

	queue := make([]pendingPage, 0, len(rootPageIDs))
	for _, id := range rootPageIDs {
		queue = append(queue, pendingPage{id: id, rootID: id, source: notionModel.SourcePage})
	}

	var pages []notionModel.Page
	var failed int

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return pages, err
		}

		next := queue[0]
		queue = queue[1:]
		if visitedPages[next.id] {
			continue
		}
		visitedPages[next.id] = true

		page, children, err := f.fetchPage(ctx, next, visitedDatabases)
		if err != nil {
			failed++
			loggr.Error("Skipping page", "pageId", next.id, "error", err.Error())
			continue
		}
		pages = append(pages, page)
		queue = append(queue, children...)
	}

	loggr.Info("Workspace fetch finished", "pages", len(pages), "failed", failed)
	if failed > 0 {
		return pages, fmt.Errorf("notion: %d of %d reachable pages failed to fetch", failed, failed+len(pages))
	}
	return pages, nil
}

// fetchPage renders one page and returns the child pages discovered inside it.
func (f *Fetcher) fetchPage(ctx context.Context, target pendingPage, visitedDatabases map[string]bool) (notionModel.Page, []pendingPage, error) {
	meta, err := f.api.GetPage(ctx, target.id)
	if err != nil {
		return notionModel.Page{}, nil, err
	}

	var content strings.Builder
	var children []pendingPage
	err = f.renderChildren(ctx, target.id, target.rootID, &content, &children, visitedDatabases, 0)
	if err != nil {
		return notionModel.Page{}, nil, err
	}

	return notionModel.Page{
		ID:         target.id,
		RootPageID: target.rootID,
		Title:      pageTitle(meta, meta.URL),
		URL:        meta.URL,
		Source:     target.source,
		Content:    strings.TrimRight(content.String(), "\n"),
		FetchedAt:  time.Now().UTC(),
	}, children, nil
}

// renderChildren pulls every child block of blockID across cursor pages and
// appends the rendered text. Nested blocks are rendered inline; child pages
// and database rows are collected for their own traversal instead.
func (f *Fetcher) renderChildren(ctx context.Context, blockID, rootID string, out *strings.Builder, children *[]pendingPage, visitedDatabases map[string]bool, depth int) error {
	cursor := ""
	for {
		resp, err := f.api.GetBlockChildren(ctx, blockID, cursor)
		if err != nil {
			return err
		}

		for _, block := range resp.Results {
			switch block.GetType() {
			case notionapi.BlockTypeChildPage:
				*children = append(*children, pendingPage{
					id:     string(block.GetID()),
					rootID: rootID,
					source: notionModel.SourcePage,
				})
			case notionapi.BlockTypeChildDatabase:
				rows, err := f.databaseRows(ctx, string(block.GetID()), rootID, visitedDatabases)
				if err != nil {
					return err
				}
				*children = append(*children, rows...)
			default:
				line := renderBlock(block)
				if line != "" {
					out.WriteString(line)
					out.WriteString("\n")
				}
				if block.GetHasChildren() {
					err := f.renderChildren(ctx, string(block.GetID()), rootID, out, children, visitedDatabases, depth+1)
					if err != nil {
						return err
					}
				}
			}
		}

		if !resp.HasMore {
			return nil
		}
		cursor = resp.NextCursor
	}
}

func (f *Fetcher) databaseRows(ctx context.Context, databaseID, rootID string, visited map[string]bool) ([]pendingPage, error) {
	if visited[databaseID] {
		return nil, nil
	}
	visited[databaseID] = true

	var rows []pendingPage
	cursor := ""
	for {
		resp, err := f.api.QueryDatabase(ctx, databaseID, cursor)
		if err != nil {
			return nil, err
		}
		for _, row := range resp.Results {
			rows = append(rows, pendingPage{
				id:     string(row.ID),
				rootID: rootID,
				source: notionModel.SourceDatabasePage,
			})
		}
		if !resp.HasMore {
			return rows, nil
		}
		cursor = string(resp.NextCursor)
	}
}

// pageTitle finds the first title-type property. Database rows name their
// title column freely so we cannot key on "title" alone. Pages with no usable
// title fall back to their URL so citations stay clickable.
func pageTitle(page *notionapi.Page, fallbackURL string) string {
	for _, prop := range page.Properties {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if t := plainText(title.Title); t != "" {
				return t
			}
		}
	}
	if fallbackURL != "" {
		return fallbackURL
	}
	return "Untitled"
}
