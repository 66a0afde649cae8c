package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultFeedURLs lists the directory's category pages captured when
// FEED_URLS is not set.
var DefaultFeedURLs = []string{
	"https://www.liveatc.net/feedindex.php?type=class-b",
	"https://www.liveatc.net/feedindex.php?type=class-c",
	"https://www.liveatc.net/feedindex.php?type=class-d",
	"https://www.liveatc.net/feedindex.php?type=us-artcc",
	"https://www.liveatc.net/feedindex.php?type=canada",
	"https://www.liveatc.net/feedindex.php?type=international-eu",
	"https://www.liveatc.net/feedindex.php?type=international-oc",
	"https://www.liveatc.net/feedindex.php?type=international-as",
	"https://www.liveatc.net/feedindex.php?type=international-sa",
	"https://www.liveatc.net/feedindex.php?type=international-na",
	"https://www.liveatc.net/feedindex.php?type=international-af",
	"https://www.liveatc.net/feedindex.php?type=hf",
}

// Config holds the application configuration
type Config struct {
	FeedURLs      []string
	DataDir       string
	FetchInterval time.Duration
	HTTPTimeout   time.Duration
	Port          string
	RedisAddr     string // empty disables the latest-status cache
}

// Load loads the configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		FeedURLs:  DefaultFeedURLs,
		DataDir:   getenvDefault("DATA_DIR", "./data"),
		Port:      getenvDefault("PORT", "8080"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
	}

	if urls := os.Getenv("FEED_URLS"); urls != "" {
		cfg.FeedURLs = splitAndTrim(urls)
		if len(cfg.FeedURLs) == 0 {
			return nil, fmt.Errorf("FEED_URLS contains no URLs")
		}
	}

	interval, err := time.ParseDuration(getenvDefault("FETCH_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	return cfg, nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
