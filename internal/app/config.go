package app

import (
	"os"

	"github.com/nooch/nooch-backend/internal/pkg/envutil"
)

type Config struct {
	Port    string
	LogMode string

	// Redis is optional; without it realtime events stay in-process.
	RedisAddr string

	// OpenAI is optional; without it drafts fall back to the canned reply.
	OpenAIKey string
}

func LoadConfig() Config {
	return Config{
		Port:      envutil.Str("PORT", "8080"),
		LogMode:   envutil.Str("LOG_MODE", "development"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
		OpenAIKey: os.Getenv("OPENAI_API_KEY"),
	}
}
