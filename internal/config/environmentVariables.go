package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//vector index
	EmbeddingOutputDimensionality int32 = 1536
	CollectionName                      = "lecture_docs"
	DistanceMetric                      = "cosine"

	//chunking
	ChunkSize    = 1000
	ChunkOverlap = 200

	//ingestion
	EmbeddingBatchSize = 100
	MaxUploadSize      = 32 << 20 //32mb
	UploadScratchDir   = "temporary_data"

	//retrieval
	DefaultSearchK = 3
	MaxSearchK     = 10

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 120 * time.Second //composer retries can take a while
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//vectorDB
	QdrantHost             = "127.0.0.1"
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1
	PageExtractTimeout     = 10 * time.Second

	//llm
	LLMConnectionTimeout = 30 * time.Second
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"

	//composer retry policy
	LLMMaxAttempts     = 3
	LLMBackoffInitial  = 2 * time.Second
	EmbedRetryBackoff  = 5 * time.Second

	ModelContext = "You are an assistant answering questions about uploaded lecture material. " +
		"Answer only from the provided reference material. If the material does not contain the answer, " +
		"say that the information was not found in the reference material. " +
		"End every answer with a 'Sources:' line citing the file names (and page numbers where available) you used."

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword   = ""
	RedisCatalogDB  = 0
	CatalogRedisKey = "documents"
)

// Env returns the value of the environment variable or the fallback.
func Env(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func EnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
