package config

import (
	"strings"
	"testing"
)

// setBaseEnv pins every variable Load reads so ambient shell state cannot
// leak into a test run.
func setBaseEnv(t *testing.T) {
	t.Helper()
	vars := map[string]string{
		"SLACK_BOT_TOKEN":      "xoxb-test",
		"SLACK_APP_TOKEN":      "xapp-test",
		"NOTION_TOKEN":         "secret_test",
		"NOTION_ROOT_PAGE_IDS": "root-one, root-two",
		"EMBEDDING_PROVIDER":   "openai",
		"OPENAI_API_KEY":       "sk-test",
		"GOOGLE_API_KEY":       "",
		"NOTION_PAGE_SIZE":     "",
		"EMBEDDING_DIMENSION":  "",
		"QDRANT_PORT":          "",
		"CHUNK_SIZE":           "",
		"CHUNK_OVERLAP":        "",
		"RETRIEVER_TOP_K":      "",
		"ANSWER_MAX_TOKENS":    "",
		"LOG_LEVEL":            "",
		"APP_ENV":              "",
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ChunkSize != DefaultChunkSize || s.ChunkOverlap != DefaultChunkOverlap {
		t.Errorf("chunking defaults = %d/%d", s.ChunkSize, s.ChunkOverlap)
	}
	if s.RetrieverTopK != DefaultTopK {
		t.Errorf("top-k = %d, want %d", s.RetrieverTopK, DefaultTopK)
	}
	if len(s.NotionRootPageIDs) != 2 || s.NotionRootPageIDs[1] != "root-two" {
		t.Errorf("root page ids = %v", s.NotionRootPageIDs)
	}
	if s.Provider != "openai" {
		t.Errorf("provider = %q", s.Provider)
	}
}

func TestLoadRejectsMalformedInt(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{"CHUNK_SIZE", "abc"},
		{"QDRANT_PORT", "oops"},
		{"RETRIEVER_TOP_K", "4.5"},
	}

	for _, c := range cases {
		t.Run(c.key, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(c.key, c.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("%s=%q did not fail Load", c.key, c.value)
			}
			if !strings.Contains(err.Error(), c.key) {
				t.Errorf("error %q does not name %s", err, c.key)
			}
		})
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing slack token", map[string]string{"SLACK_BOT_TOKEN": ""}},
		{"missing notion token", map[string]string{"NOTION_TOKEN": ""}},
		{"missing root pages", map[string]string{"NOTION_ROOT_PAGE_IDS": " , "}},
		{"overlap equals size", map[string]string{"CHUNK_SIZE": "500", "CHUNK_OVERLAP": "500"}},
		{"overlap above size", map[string]string{"CHUNK_SIZE": "100", "CHUNK_OVERLAP": "150"}},
		{"zero top-k", map[string]string{"RETRIEVER_TOP_K": "0"}},
		{"unknown provider", map[string]string{"EMBEDDING_PROVIDER": "cohere"}},
		{"openai provider without key", map[string]string{"OPENAI_API_KEY": ""}},
		{"google provider without key", map[string]string{"EMBEDDING_PROVIDER": "google", "GOOGLE_API_KEY": ""}},
		{"page size out of range", map[string]string{"NOTION_PAGE_SIZE": "500"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range c.env {
				t.Setenv(k, v)
			}

			if _, err := Load(); err == nil {
				t.Errorf("expected Load to fail")
			}
		})
	}
}
