package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Search   SearchConfig
	Engine   EngineConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	SessionBackend     string // "redis" or "memory"
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string // e.g. "llama3", "qwen2.5"
}

type SearchConfig struct {
	WebProvider   string // "tavily" or "duckduckgo"
	CorpusTopK    int
	WebMaxResults int
}

type EngineConfig struct {
	ClarityTimeout   time.Duration
	RouteTimeout     time.Duration
	RetrievalTimeout time.Duration
	SynthesisTimeout time.Duration
	MaxContextTurns  int
	IndexTopicName   string
}

type APIKeys struct {
	GoogleGemini string
	HuggingFace  string
	Tavily       string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionBackend:     getEnv("SESSION_BACKEND", "redis"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
		},
		Search: SearchConfig{
			WebProvider:   getEnv("WEB_SEARCH_PROVIDER", "duckduckgo"),
			CorpusTopK:    getEnvAsInt("CORPUS_TOP_K", 10),
			WebMaxResults: getEnvAsInt("WEB_MAX_RESULTS", 5),
		},
		Engine: EngineConfig{
			ClarityTimeout:   getEnvAsDuration("CLARITY_TIMEOUT", 10*time.Second),
			RouteTimeout:     getEnvAsDuration("ROUTE_TIMEOUT", 10*time.Second),
			RetrievalTimeout: getEnvAsDuration("RETRIEVAL_TIMEOUT", 20*time.Second),
			SynthesisTimeout: getEnvAsDuration("SYNTHESIS_TIMEOUT", 20*time.Second),
			MaxContextTurns:  getEnvAsInt("MAX_CONTEXT_TURNS", 10),
			IndexTopicName:   getEnv("INDEX_PASSAGE_TOPIC_NAME", "INDEX_PASSAGE"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			Tavily:       getEnv("TAVILY_API_KEY", ""),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
