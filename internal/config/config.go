// Package config reads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/piwi3910/boxplanner/internal/project"
)

type Config struct {
	Port          string
	AllowedOrigin string
	LogLevel      string
	LogPretty     bool

	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	AdviceModel     string
	AnalysisTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// AppConfigPath is the JSON file holding application defaults.
	AppConfigPath string
}

// Load reads a .env file from the working directory when present, then the
// environment. Variables already set in the environment win over .env.
func Load() Config {
	_ = godotenv.Load()
	return fromEnv()
}

// LoadFile is Load with an explicit .env path. A missing file is an error.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return fromEnv(), nil
}

func fromEnv() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	timeout, err := strconv.Atoi(getEnv("ANALYSIS_TIMEOUT_SECONDS", "60"))
	if err != nil || timeout < 1 {
		timeout = 60
	}
	cacheTTL, err := strconv.Atoi(getEnv("ANALYSIS_CACHE_TTL_MINUTES", "1440"))
	if err != nil || cacheTTL < 1 {
		cacheTTL = 1440
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogPretty:       parseBool(os.Getenv("LOG_PRETTY")),
		OpenAIAPIKey:    strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o"),
		AdviceModel:     getEnv("ADVICE_MODEL", "gpt-4o-mini"),
		AnalysisTimeout: time.Duration(timeout) * time.Second,
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,
		CacheTTL:        time.Duration(cacheTTL) * time.Minute,
		AppConfigPath:   getEnv("BOXPLANNER_CONFIG", project.DefaultConfigPath()),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// AnalysisEnabled reports whether an analysis service key is configured.
func (c Config) AnalysisEnabled() bool {
	return c.OpenAIAPIKey != ""
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && v
}
