package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Settings struct {
	SlackBotToken      string
	SlackAppLevelToken string

	NotionToken       string
	NotionRootPageIDs []string
	NotionPageSize    int

	// "openai" or "google"
	Provider             string
	OpenAIAPIKey         string
	OpenAIEmbeddingModel string
	GoogleAPIKey         string
	GoogleEmbeddingModel string
	LLMModel             string
	EmbeddingDimension   int32

	QdrantHost string
	QdrantPort int

	RedisAddr     string
	RedisPassword string

	ChunkSize     int
	ChunkOverlap  int
	RetrieverTopK int

	AnswerMaxTokens int
	SystemPrompt    string

	HTTPAuthToken string
	ListenAddr    string

	LogLevel slog.Level
	IsProd   bool
}

// Load reads the environment (a local .env is honored when present) and fails
// fast on anything that would only surface mid-request otherwise.
func Load() (Settings, error) {
	_ = godotenv.Load()

	env := &envReader{}
	s := Settings{
		SlackBotToken:      os.Getenv("SLACK_BOT_TOKEN"),
		SlackAppLevelToken: os.Getenv("SLACK_APP_TOKEN"),

		NotionToken:       os.Getenv("NOTION_TOKEN"),
		NotionRootPageIDs: splitIDList(os.Getenv("NOTION_ROOT_PAGE_IDS")),
		NotionPageSize:    env.intValue("NOTION_PAGE_SIZE", DefaultNotionPage),

		Provider:             envDefault("EMBEDDING_PROVIDER", "openai"),
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIEmbeddingModel: envDefault("OPENAI_EMBEDDING_MODEL", DefaultOpenAIModel),
		GoogleAPIKey:         os.Getenv("GOOGLE_API_KEY"),
		GoogleEmbeddingModel: envDefault("GOOGLE_EMBEDDING_MODEL", DefaultGoogleModel),
		LLMModel:             envDefault("LLM_MODEL", DefaultLLMModel),
		EmbeddingDimension:   int32(env.intValue("EMBEDDING_DIMENSION", DefaultEmbeddingDimension)),

		QdrantHost: envDefault("QDRANT_HOST", "localhost"),
		QdrantPort: env.intValue("QDRANT_PORT", 6334),

		RedisAddr:     envDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ChunkSize:     env.intValue("CHUNK_SIZE", DefaultChunkSize),
		ChunkOverlap:  env.intValue("CHUNK_OVERLAP", DefaultChunkOverlap),
		RetrieverTopK: env.intValue("RETRIEVER_TOP_K", DefaultTopK),

		AnswerMaxTokens: env.intValue("ANSWER_MAX_TOKENS", 1024),
		SystemPrompt: envDefault("SYSTEM_PROMPT",
			"You answer questions using only the numbered context blocks. "+
				"Cite the blocks you used as [1], [2] and so on. "+
				"If the context does not contain the answer, say so."),

		HTTPAuthToken: os.Getenv("HTTP_AUTH_TOKEN"),
		ListenAddr:    envDefault("LISTEN_ADDR", ServerListenAddr),

		LogLevel: parseLogLevel(envDefault("LOG_LEVEL", "info")),
		IsProd:   envDefault("APP_ENV", "dev") == "prod",
	}

	if env.err != nil {
		return Settings{}, env.err
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.SlackBotToken == "" || s.SlackAppLevelToken == "" {
		return fmt.Errorf("config: SLACK_BOT_TOKEN and SLACK_APP_TOKEN are required")
	}
	if s.NotionToken == "" {
		return fmt.Errorf("config: NOTION_TOKEN is required")
	}
	if len(s.NotionRootPageIDs) == 0 {
		return fmt.Errorf("config: NOTION_ROOT_PAGE_IDS is required")
	}

	switch s.Provider {
	case "openai":
		if s.OpenAIAPIKey == "" {
			return fmt.Errorf("config: OPENAI_API_KEY is required for the openai provider")
		}
	case "google":
		if s.GoogleAPIKey == "" {
			return fmt.Errorf("config: GOOGLE_API_KEY is required for the google provider")
		}
	default:
		return fmt.Errorf("config: unknown embedding provider %q", s.Provider)
	}

	if s.ChunkSize <= 0 {
		return fmt.Errorf("config: chunk size must be positive, got %d", s.ChunkSize)
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("config: chunk overlap must satisfy 0 <= overlap < size, got overlap=%d size=%d", s.ChunkOverlap, s.ChunkSize)
	}
	if s.RetrieverTopK < 1 {
		return fmt.Errorf("config: retriever top-k must be at least 1, got %d", s.RetrieverTopK)
	}
	if s.EmbeddingDimension <= 0 {
		return fmt.Errorf("config: embedding dimension must be positive, got %d", s.EmbeddingDimension)
	}
	if s.NotionPageSize < 1 || s.NotionPageSize > 100 {
		return fmt.Errorf("config: notion page size must be in 1..100, got %d", s.NotionPageSize)
	}
	return nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envReader accumulates the first malformed numeric variable it meets so Load
// can refuse to start instead of silently running on defaults.
type envReader struct {
	err error
}

func (r *envReader) intValue(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("config: %s must be an integer, got %q", key, v)
		}
		return fallback
	}
	return n
}

func splitIDList(raw string) []string {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
