package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        int
	DatabaseURL string
	NatsURL     string
	NatsToken   string
	LogLevel    string
	DataDir     string
	PromptPath  string

	OpenAIAPIKey string
	ChatModel    string

	EmbeddingProvider   string // "local" or "remote"
	EmbeddingModel      string
	EmbeddingDimensions int
	OllamaURL           string

	DuplicateThreshold float64
	RelatedThreshold   float64
}

// Load reads configuration from the environment, honouring a .env file
// in the working directory if one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:        envInt("CENTRALITA_PORT", 8760),
		DatabaseURL: envStr("DATABASE_URL", ""),
		NatsURL:     envStr("NATS_URL", ""),
		NatsToken:   envStr("NATS_TOKEN", ""),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		DataDir:     envStr("CENTRALITA_DATA_DIR", "./data"),
		PromptPath:  envStr("CENTRALITA_PROMPT_PATH", "prompts/separar_llamadas.txt"),

		OpenAIAPIKey: envStr("OPENAI_API_KEY", ""),
		ChatModel:    envStr("CENTRALITA_CHAT_MODEL", "gpt-4o"),

		EmbeddingProvider:   envStr("EMBEDDING_PROVIDER", "remote"),
		EmbeddingModel:      envStr("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimensions: envInt("EMBEDDING_DIMENSIONS", 1536),
		OllamaURL:           envStr("OLLAMA_URL", "http://localhost:11434"),

		DuplicateThreshold: envFloat("DUPLICATE_THRESHOLD", 0.98),
		RelatedThreshold:   envFloat("RELATED_THRESHOLD", 0.90),
	}
}

// Validate checks the parts of the config that make the pipeline unusable.
func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.EmbeddingProvider != "local" && c.EmbeddingProvider != "remote" {
		return fmt.Errorf("EMBEDDING_PROVIDER must be \"local\" or \"remote\", got %q", c.EmbeddingProvider)
	}
	if c.DuplicateThreshold < 0 || c.DuplicateThreshold > 1 {
		return fmt.Errorf("DUPLICATE_THRESHOLD must be in [0,1], got %g", c.DuplicateThreshold)
	}
	if c.RelatedThreshold < 0 || c.RelatedThreshold > 1 {
		return fmt.Errorf("RELATED_THRESHOLD must be in [0,1], got %g", c.RelatedThreshold)
	}
	if c.RelatedThreshold > c.DuplicateThreshold {
		return fmt.Errorf("RELATED_THRESHOLD (%g) must not exceed DUPLICATE_THRESHOLD (%g)",
			c.RelatedThreshold, c.DuplicateThreshold)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
