package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment
// variables.
type App struct {
	Env              string
	HTTPPort         string
	DatabaseURL      string
	RedisAddr        string
	QueueBackend     string
	JWTIssuer        string
	JWTSigningKey    string
	AccessTTL        time.Duration
	MeetingThreshold int
	ExportDir        string
	ReportHour       int
	StatsCacheTTL    time.Duration
	RateLimitPerMin  int
}

// Load returns application config populated from the environment
// (and a .env file when present) with sensible defaults.
func Load() App {
	_ = godotenv.Load()
	return App{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPPort:         getEnv("HTTP_PORT", "8081"),
		DatabaseURL:      getEnv("DATABASE_URL", "data/attendance.db"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		QueueBackend:     getEnv("QUEUE_BACKEND", "redis"),
		JWTIssuer:        getEnv("JWT_ISSUER", "attendance-kiosk"),
		JWTSigningKey:    getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		AccessTTL:        durationEnv("ACCESS_TTL", 30*24*time.Hour),
		MeetingThreshold: intEnv("MEETING_THRESHOLD", 20),
		ExportDir:        getEnv("EXPORT_DIR", "exports"),
		ReportHour:       intEnv("REPORT_HOUR", 21),
		StatsCacheTTL:    durationEnv("STATS_CACHE_TTL", 30*time.Second),
		RateLimitPerMin:  intEnv("RATE_LIMIT_PER_MIN", 120),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
