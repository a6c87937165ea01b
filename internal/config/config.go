package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numviz/internal/numline"
	"github.com/robalobadob/numviz/internal/reveal"
	"github.com/robalobadob/numviz/internal/session"
)

// Config holds application configuration
type Config struct {
	Port           string
	LogLevel       string
	DatabasePath   string
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	Production     bool
	DailySalt      string
	SessionIdleTTL time.Duration
	Timing         session.Timing
}

// Load reads configuration from environment variables with sensible defaults
func Load() Config {
	return Config{
		Port:           getEnv("PORT", "5175"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabasePath:   getEnv("DB_PATH", "./data/numviz.db"),
		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: getInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     getEnv("COOKIE_NAME", "numviz_token"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:     os.Getenv("NODE_ENV") == "production",
		DailySalt:      getEnv("DAILY_SALT", "local_dev_salt"),
		SessionIdleTTL: getDuration("SESSION_IDLE_TTL", 30*time.Minute),
		Timing: session.Timing{
			Reveal: reveal.Timing{
				SecondDelay: getMillis("REVEAL_SECOND_MS", 1500),
				ResultDelay: getMillis("REVEAL_RESULT_MS", 3000),
			},
			Line: numline.Timing{
				StartDelay: getMillis("NUMLINE_START_MS", 1000),
				Tick:       getMillis("NUMLINE_TICK_MS", 500),
			},
		},
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Warn().Str("key", key).Str("value", v).Int("default", def).Msg("invalid integer, using default")
		return def
	}
	return n
}

func getMillis(key string, def int) time.Duration {
	return time.Duration(getInt(key, def)) * time.Millisecond
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", v).Dur("default", def).Msg("invalid duration, using default")
		return def
	}
	return d
}
