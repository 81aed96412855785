package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag"
)

// Server exposes the workspace retriever over MCP stdio so other agents can
// search the synced Notion content without going through Slack.
type Server struct {
	ragService rag.Service
	topK       int
	version    string
}

func New(ragService rag.Service, topK int, version string) *Server {
	return &Server{
		ragService: ragService,
		topK:       topK,
		version:    version,
	}
}

// Run serves MCP requests over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "notion-workspace-rag",
		Title:   "Notion Workspace Search",
		Version: s.version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_workspace",
		Description: "Search the synced Notion workspace and return the most similar content chunks with page titles, URLs and similarity scores.",
	}, s.searchTool)

	return server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) searchTool(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	if input.Query == "" {
		return nil, SearchOutput{}, fmt.Errorf("query is required")
	}

	k := input.TopK
	if k <= 0 {
		k = s.topK
	}

	matches, err := s.ragService.Retrieve(ctx, input.Query, k)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Query:   input.Query,
		Count:   len(matches),
		Results: make([]SearchResultItem, 0, len(matches)),
	}
	for _, m := range matches {
		output.Results = append(output.Results, SearchResultItem{
			ChunkID: m.ChunkID,
			PageID:  m.PageID,
			Title:   m.Title,
			URL:     m.URL,
			Text:    m.Text,
			Score:   m.Score,
		})
	}
	return nil, output, nil
}
