package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Retrieval RetrievalConfig
	Timeouts  TimeoutConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	TurnTopic    string // Watermill topic for completed turns
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "gemini" or "ollama"
	LLMModel          string // e.g. "gemini-2.5-flash", "llama3"
	SttModel          string // Gemini model used for transcription
	TtsModel          string // Gemini model used for speech synthesis
	TtsVoice          string
}

type RetrievalConfig struct {
	FetchK        int     // chunks pulled from pgvector per sub-query
	DocsK         int     // unique documents returned per sub-query
	RecencyLambda float64 // 0 = off; 0.03-0.07 favors fresher items
}

type TimeoutConfig struct {
	Transcribe time.Duration
	Enhance    time.Duration
	Retrieve   time.Duration // per sub-query
	Generate   time.Duration
	Synthesize time.Duration
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
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			TurnTopic:    getEnv("TURN_COMPLETED_TOPIC_NAME", "TURN_COMPLETED"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-2.5-flash"),
			SttModel:          getEnv("STT_MODEL", "gemini-2.5-flash"),
			TtsModel:          getEnv("TTS_MODEL", "gemini-2.5-flash-preview-tts"),
			TtsVoice:          getEnv("TTS_VOICE", "Kore"),
		},
		Retrieval: RetrievalConfig{
			FetchK:        getEnvAsInt("FETCH_K", 30),
			DocsK:         getEnvAsInt("DOCS_K", 3),
			RecencyLambda: getEnvAsFloat("RECENCY_LAMBDA", 0.0),
		},
		Timeouts: TimeoutConfig{
			Transcribe: getEnvAsDuration("TRANSCRIBE_TIMEOUT", 60*time.Second),
			Enhance:    getEnvAsDuration("ENHANCE_TIMEOUT", 30*time.Second),
			Retrieve:   getEnvAsDuration("RETRIEVE_TIMEOUT", 15*time.Second),
			Generate:   getEnvAsDuration("GENERATE_TIMEOUT", 60*time.Second),
			Synthesize: getEnvAsDuration("SYNTHESIZE_TIMEOUT", 90*time.Second),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
