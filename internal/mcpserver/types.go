package mcpserver

// SearchInput defines the inputs for the search_workspace MCP tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"natural language query over the synced workspace"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of chunks to return (default 4)"`
}

// SearchResultItem is one retrieved chunk with its citation metadata.
type SearchResultItem struct {
	ChunkID string  `json:"chunk_id"`
	PageID  string  `json:"page_id"`
	Title   string  `json:"title"`
	URL     string  `json:"url,omitempty"`
	Text    string  `json:"content"`
	Score   float32 `json:"score"`
}

// SearchOutput is the output for search_workspace.
type SearchOutput struct {
	Query   string             `json:"query"`
	Count   int                `json:"count"`
	Results []SearchResultItem `json:"results"`
}
