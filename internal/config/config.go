// internal/config/config.go
//
// Process configuration read from the environment (after godotenv has loaded
// any .env file). Every setting has a development default.
//
//   PORT              HTTP port                       (5175)
//   LOG_LEVEL         zerolog level                   (info)
//   LOG_FORMAT        "json" or "console"             (json)
//   DB_PATH           SQLite file                     (./data/app.db)
//   CLIENT_ORIGIN     CORS origin of the web client   (http://localhost:5173)
//   JWT_SECRET        HS256 signing secret            (dev_secret_change_me)
//   JWT_EXPIRES_DAYS  account token lifetime in days  (14)
//   GEMINI_MODEL      model used for hints            (hint.DefaultModel)
//   SESSION_TTL       idle time before a session and its key are dropped (2h)
//   NODE_ENV          "production" enables Secure cookies

package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port           string
	LogLevel       string
	LogFormat      string
	DBPath         string
	ClientOrigin   string
	JWTSecret      string
	JWTExpiresDays int
	GeminiModel    string
	SessionTTL     time.Duration
	Production     bool
}

// Load reads the environment.
func Load() Config {
	return Config{
		Port:           getEnv("PORT", "5175"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		DBPath:         getEnv("DB_PATH", "./data/app.db"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: getInt("JWT_EXPIRES_DAYS", 14),
		GeminiModel:    getEnv("GEMINI_MODEL", ""),
		SessionTTL:     getDuration("SESSION_TTL", 2*time.Hour),
		Production:     os.Getenv("NODE_ENV") == "production",
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(k)); err == nil && d > 0 {
		return d
	}
	return def
}
