// Package config loads process-wide configuration from environment variables.
package config

import "os"

// Config holds every credential and identifier the bot needs at runtime.
// Optional values stay empty and the features that need them degrade with a
// friendly message instead of crashing.
type Config struct {
	LineChannelToken  string // LINE Messaging API channel access token
	LineChannelSecret string // LINE webhook signing secret
	GeminiAPIKey      string // Google Gemini API key (AI analysis is disabled without it)
	FugleAPIKey       string // Fugle realtime quote API key (optional TW quote source)
	TargetID          string // preconfigured push recipient for the cron endpoints
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	Port              string
}

// Load reads configuration from the environment.
func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return Config{
		LineChannelToken:  os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
		LineChannelSecret: os.Getenv("LINE_CHANNEL_SECRET"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		FugleAPIKey:       os.Getenv("FUGLE_API_KEY"),
		TargetID:          os.Getenv("MY_USER_ID"),
		RedisHost:         os.Getenv("REDIS_HOST"),
		RedisPort:         os.Getenv("REDIS_PORT"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		Port:              port,
	}
}
