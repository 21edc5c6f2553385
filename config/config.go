package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Provider ProviderConfig
	Tools    ToolsConfig
	Store    StoreConfig
}

type AppConfig struct {
	Port         string
	Environment  string
	Bearer       string
	LogFilePath  string
	RateLimitRPM int
}

type ProviderConfig struct {
	OpenAIKey      string
	BaseURL        string
	Model          string
	EmbeddingModel string
}

type ToolsConfig struct {
	AllowWebFetch []string
	AllowFileRead []string
}

type StoreConfig struct {
	RagPath     string
	DatabaseDSN string
	ExchangeDB  string
}

// Load reads configuration from the environment, with .env as a fallback.
// All values are immutable after startup.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:         getEnv("PORT", "8787"),
			Environment:  getEnv("GO_ENV", "development"),
			Bearer:       getEnv("BEARER", ""),
			LogFilePath:  getEnv("LOG_FILE_PATH", "relayd.log"),
			RateLimitRPM: getEnvAsInt("RATE_LIMIT_RPM", 200),
		},
		Provider: ProviderConfig{
			OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", ""),
			Model:          getEnv("MODEL", "gpt-4o-mini"),
			EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		Tools: ToolsConfig{
			AllowWebFetch: getEnvAsList("ALLOW_WEB_FETCH"),
			AllowFileRead: getEnvAsList("ALLOW_FILE_READ"),
		},
		Store: StoreConfig{
			RagPath:     getEnv("RAG_PATH", "./rag_store.json"),
			DatabaseDSN: getEnv("DATABASE_DSN", ""),
			ExchangeDB:  getEnv("EXCHANGE_DB", "data/relayd.db"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvAsList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
