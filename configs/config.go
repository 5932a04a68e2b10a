package config

import (
	"os"
	"strconv"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	PostgresURI       string
	APIToken          string
	UploadPostAPIKey  string
	UploadPostAPIURL  string
	HistoryLimit      int
	BotToken          string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	R2                R2
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:       getEnv("POSTGRES_URI", ""),
		APIToken:          getEnv("API_TOKEN", ""),
		UploadPostAPIKey:  getEnv("UPLOADPOST_API_KEY", ""),
		UploadPostAPIURL:  getEnv("UPLOADPOST_API_URL", "https://api.upload-post.com/api/uploadposts"),
		HistoryLimit:      getEnvInt("UPLOADPOST_HISTORY_LIMIT", 100),
		BotToken:          getEnv("BOT_TOKEN", ""),
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
