package config

import "time"

const (
	TRACE_ID_KEY = "traceId"

	//rate limiting per client IP
	RateLimitPerSecond = 5
	RateLimitBurst     = 10

	//vector collections
	WorkspaceCollection   = "notion-workspace"
	AnswerCacheCollection = "answer-cache"

	// Cosine score above which a cached answer is considered the same question
	CacheSimilarityCutoff = 0.97

	DefaultEmbeddingDimension = 1536
	DefaultOpenAIModel        = "text-embedding-3-small"
	DefaultGoogleModel        = "gemini-embedding-001"
	DefaultLLMModel           = "gemini-2.0-flash"

	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 150
	DefaultTopK         = 4
	DefaultNotionPage   = 100

	EmbeddingBatchSize = 100

	//worker pool sizing
	RequestsPerNewWorkerCount = 10
	MaxWorkerCount            = 10
	MinWorkerCount            = 1
	IdleWorkerTimeout         = 1 * time.Minute
	BufferLimit               = 100

	ServerListenAddr   = ":3000"
	ServerReadTimeout  = 15 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second

	QdrantConnectionTimeout = 10 * time.Second
	QdrantUseTLS            = false
	QdrantPoolSize          = 4

	NotionRequestTimeout = 30 * time.Second
	QueryJobTimeout      = 60 * time.Second
	SyncJobTimeout       = 30 * time.Minute

	//redis database numbers
	RedisJobStore    = 0
	RedisThreadStore = 1

	RedisJobStoreTTL = 24 * time.Hour
	RedisThreadTTL   = 24 * time.Hour
)
