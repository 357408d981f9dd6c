package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Rag      RagConfig
	Ingest   IngestConfig
	Stats    StatsConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider   string // "openai", "ollama" or "gemini"
	EmbeddingModel      string
	EmbeddingDimensions int
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OllamaBaseURL       string
	GeminiAPIKey        string
	LLMProvider         string // "openai" or "ollama"
	LLMModel            string
	QueryCacheTTLSec    int
}

type RagConfig struct {
	TopK               int
	ContextTokenBudget int
	SimilarityFloor    float64
}

type IngestConfig struct {
	BatchSize    int
	RebuildTopic string
	LockTTLSec   int
}

type StatsConfig struct {
	CacheTTLSec int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", "all-MiniLM-L6-v2"),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 384),
			OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			GeminiAPIKey:        getEnv("GOOGLE_GEMINI_API_KEY", ""),
			LLMProvider:         getEnv("LLM_PROVIDER", "openai"),
			LLMModel:            getEnv("LLM_MODEL", "gpt-4o-mini"),
			QueryCacheTTLSec:    getEnvAsInt("QUERY_EMBEDDING_CACHE_TTL", 300),
		},
		Rag: RagConfig{
			TopK:               getEnvAsInt("RAG_TOP_K", 5),
			ContextTokenBudget: getEnvAsInt("RAG_CONTEXT_TOKEN_BUDGET", 1500),
			SimilarityFloor:    getEnvAsFloat("RAG_SIMILARITY_FLOOR", 0.0),
		},
		Ingest: IngestConfig{
			BatchSize:    getEnvAsInt("INGEST_BATCH_SIZE", 1000),
			RebuildTopic: getEnv("INDEX_REBUILD_TOPIC_NAME", "INDEX_REBUILD"),
			LockTTLSec:   getEnvAsInt("INGEST_LOCK_TTL_SECONDS", 0),
		},
		Stats: StatsConfig{
			CacheTTLSec: getEnvAsInt("STATS_CACHE_TTL", 600),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
