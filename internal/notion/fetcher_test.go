package notion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/notionModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

type fakeAPI struct {
	pages    map[string]*notionapi.Page
	children map[string][]notionapi.Block
	dbRows   map[string][]notionapi.Page
	// pageSize forces cursor pagination in GetBlockChildren when > 0
	pageSize  int
	pageErrs  map[string]error
	apiCalls  int
	blockErrs map[string]error
}

func (f *fakeAPI) GetPage(_ context.Context, pageID string) (*notionapi.Page, error) {
	f.apiCalls++
	if err := f.pageErrs[pageID]; err != nil {
		return nil, err
	}
	page, ok := f.pages[pageID]
	if !ok {
		return nil, errors.New("page not found: " + pageID)
	}
	return page, nil
}

func (f *fakeAPI) GetBlockChildren(_ context.Context, blockID string, cursor string) (*notionapi.GetChildrenResponse, error) {
	f.apiCalls++
	if err := f.blockErrs[blockID]; err != nil {
		return nil, err
	}
	all := f.children[blockID]
	if f.pageSize <= 0 || len(all) <= f.pageSize {
		return &notionapi.GetChildrenResponse{Results: all}, nil
	}

	start := 0
	if cursor != "" {
		for i, b := range all {
			if string(b.GetID()) == cursor {
				start = i
				break
			}
		}
	}
	end := start + f.pageSize
	if end >= len(all) {
		return &notionapi.GetChildrenResponse{Results: all[start:]}, nil
	}
	return &notionapi.GetChildrenResponse{
		Results:    all[start:end],
		HasMore:    true,
		NextCursor: string(all[end].GetID()),
	}, nil
}

func (f *fakeAPI) QueryDatabase(_ context.Context, databaseID string, _ string) (*notionapi.DatabaseQueryResponse, error) {
	f.apiCalls++
	return &notionapi.DatabaseQueryResponse{Results: f.dbRows[databaseID]}, nil
}

func rt(text string) []notionapi.RichText {
	return []notionapi.RichText{{PlainText: text}}
}

func titledPage(id, title string) *notionapi.Page {
	return &notionapi.Page{
		ID:  notionapi.ObjectID(id),
		URL: "https://notion.so/" + id,
		Properties: notionapi.Properties{
			"Name": &notionapi.TitleProperty{Title: rt(title)},
		},
	}
}

func basic(id string, blockType notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{ID: notionapi.BlockID(id), Type: blockType}
}

func newTestFetcher(api api) *Fetcher {
	return &Fetcher{api: api, logger: logger_i.NewLogger("notion_test")}
}

func TestFetchWorkspaceRendersBlocks(t *testing.T) {
	fake := &fakeAPI{
		pages: map[string]*notionapi.Page{"root": titledPage("root", "Handbook")},
		children: map[string][]notionapi.Block{
			"root": {
				&notionapi.Heading1Block{BasicBlock: basic("b1", notionapi.BlockTypeHeading1), Heading1: notionapi.Heading{RichText: rt("Welcome")}},
				&notionapi.ParagraphBlock{BasicBlock: basic("b2", notionapi.BlockTypeParagraph), Paragraph: notionapi.Paragraph{RichText: rt("Read this first.")}},
				&notionapi.BulletedListItemBlock{BasicBlock: basic("b3", notionapi.BlockTypeBulletedListItem), BulletedListItem: notionapi.ListItem{RichText: rt("one")}},
				&notionapi.NumberedListItemBlock{BasicBlock: basic("b4", notionapi.BlockTypeNumberedListItem), NumberedListItem: notionapi.ListItem{RichText: rt("two")}},
				&notionapi.ToDoBlock{BasicBlock: basic("b5", notionapi.BlockTypeToDo), ToDo: notionapi.ToDo{RichText: rt("ship it"), Checked: true}},
				&notionapi.ToDoBlock{BasicBlock: basic("b6", notionapi.BlockTypeToDo), ToDo: notionapi.ToDo{RichText: rt("write docs")}},
			},
		},
	}

	pages, err := newTestFetcher(fake).FetchWorkspace(context.Background(), []string{"root"})
	if err != nil {
		t.Fatalf("FetchWorkspace: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}

	got := pages[0]
	if got.Title != "Handbook" {
		t.Errorf("title = %q, want Handbook", got.Title)
	}
	if got.Source != notionModel.SourcePage {
		t.Errorf("source = %q, want page", got.Source)
	}
	want := "# Welcome\nRead this first.\n- one\n1. two\n[x] ship it\n[ ] write docs"
	if got.Content != want {
		t.Errorf("content =\n%q\nwant\n%q", got.Content, want)
	}
}

func TestFetchWorkspaceDescendsChildPagesOnce(t *testing.T) {
	fake := &fakeAPI{
		pages: map[string]*notionapi.Page{
			"root":  titledPage("root", "Root"),
			"child": titledPage("child", "Child"),
		},
		children: map[string][]notionapi.Block{
			"root": {
				&notionapi.ChildPageBlock{BasicBlock: basic("child", notionapi.BlockTypeChildPage)},
			},
			// cycle back to root must not recurse forever
			"child": {
				&notionapi.ChildPageBlock{BasicBlock: basic("root", notionapi.BlockTypeChildPage)},
				&notionapi.ParagraphBlock{BasicBlock: basic("p1", notionapi.BlockTypeParagraph), Paragraph: notionapi.Paragraph{RichText: rt("leaf text")}},
			},
		},
	}

	pages, err := newTestFetcher(fake).FetchWorkspace(context.Background(), []string{"root"})
	if err != nil {
		t.Fatalf("FetchWorkspace: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[1].ID != "child" || pages[1].Content != "leaf text" {
		t.Errorf("child page = %+v", pages[1])
	}
	if pages[1].RootPageID != "root" {
		t.Errorf("child root = %q, want root", pages[1].RootPageID)
	}
}

func TestFetchWorkspacePaginatesBlockChildren(t *testing.T) {
	blocks := make([]notionapi.Block, 0, 5)
	for _, word := range []string{"a", "b", "c", "d", "e"} {
		blocks = append(blocks, &notionapi.ParagraphBlock{
			BasicBlock: basic("blk-"+word, notionapi.BlockTypeParagraph),
			Paragraph:  notionapi.Paragraph{RichText: rt(word)},
		})
	}
	fake := &fakeAPI{
		pages:    map[string]*notionapi.Page{"root": titledPage("root", "Paginated")},
		children: map[string][]notionapi.Block{"root": blocks},
		pageSize: 2,
	}

	pages, err := newTestFetcher(fake).FetchWorkspace(context.Background(), []string{"root"})
	if err != nil {
		t.Fatalf("FetchWorkspace: %v", err)
	}
	if pages[0].Content != "a\nb\nc\nd\ne" {
		t.Errorf("content = %q", pages[0].Content)
	}
}

func TestFetchWorkspaceExpandsDatabases(t *testing.T) {
	fake := &fakeAPI{
		pages: map[string]*notionapi.Page{
			"root": titledPage("root", "Root"),
			"row1": titledPage("row1", "Row One"),
		},
		children: map[string][]notionapi.Block{
			"root": {
				&notionapi.ChildDatabaseBlock{BasicBlock: basic("db1", notionapi.BlockTypeChildDatabase)},
			},
			"row1": {
				&notionapi.ParagraphBlock{BasicBlock: basic("p1", notionapi.BlockTypeParagraph), Paragraph: notionapi.Paragraph{RichText: rt("row body")}},
			},
		},
		dbRows: map[string][]notionapi.Page{
			"db1": {*titledPage("row1", "Row One")},
		},
	}

	pages, err := newTestFetcher(fake).FetchWorkspace(context.Background(), []string{"root"})
	if err != nil {
		t.Fatalf("FetchWorkspace: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[1].Source != notionModel.SourceDatabasePage {
		t.Errorf("row source = %q, want database_page", pages[1].Source)
	}
}

func TestFetchWorkspaceSkipsFailingPages(t *testing.T) {
	fake := &fakeAPI{
		pages: map[string]*notionapi.Page{
			"good": titledPage("good", "Good"),
		},
		children: map[string][]notionapi.Block{
			"good": {
				&notionapi.ParagraphBlock{BasicBlock: basic("p1", notionapi.BlockTypeParagraph), Paragraph: notionapi.Paragraph{RichText: rt("still here")}},
			},
		},
		pageErrs: map[string]error{"bad": errors.New("boom")},
	}

	pages, err := newTestFetcher(fake).FetchWorkspace(context.Background(), []string{"bad", "good"})
	if err == nil {
		t.Fatal("expected a partial-failure error")
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("error = %v", err)
	}
	if len(pages) != 1 || pages[0].ID != "good" {
		t.Fatalf("pages = %+v", pages)
	}
}

func TestFetchWorkspaceTitleFallbacks(t *testing.T) {
	withURL := &notionapi.Page{ID: "root", URL: "https://notion.so/root", Properties: notionapi.Properties{}}
	bare := &notionapi.Page{ID: "bare", Properties: notionapi.Properties{}}
	fake := &fakeAPI{
		pages:    map[string]*notionapi.Page{"root": withURL, "bare": bare},
		children: map[string][]notionapi.Block{},
	}

	pages, err := newTestFetcher(fake).FetchWorkspace(context.Background(), []string{"root", "bare"})
	if err != nil {
		t.Fatalf("FetchWorkspace: %v", err)
	}
	if pages[0].Title != "https://notion.so/root" {
		t.Errorf("title = %q, want the page url fallback", pages[0].Title)
	}
	if pages[1].Title != "Untitled" {
		t.Errorf("title = %q, want Untitled", pages[1].Title)
	}
}
