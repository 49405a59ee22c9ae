package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	DBDSN     string
	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// chat log backend: "local" (redis blobs) or "db"
	ChatStore string

	// IP geolocation lookup used when the client sends no coordinate
	GeoLookupURL string

	// rabbitMQ; empty URL dispatches events in-process
	RabbitURL   string
	RabbitQueue string

	WorkerConcurrency int
	RateLimitPerMin   int

	// proxies whose X-Forwarded-For is believed; nil trusts none
	TrustedProxies []string
}

// Load reads an optional .env file, then the environment. Variables already set in the
// environment win over the file.
func Load() Config {
	_ = godotenv.Load()

	// DSN demo：
	// app:apppass@tcp(127.0.0.1:3306)/talent_market?charset=utf8mb4&parseTime=true&loc=Local
	// sqlite:talent.db for a local file
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			"app", "apppass", "127.0.0.1", "3306", "talent_market",
		)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	chatStore := os.Getenv("CHAT_STORE")
	if chatStore != "db" {
		chatStore = "local"
	}

	geoURL := os.Getenv("GEO_LOOKUP_URL")
	if geoURL == "" {
		geoURL = "https://ipapi.co"
	}

	rabbitQueue := os.Getenv("RABBIT_QUEUE")
	if rabbitQueue == "" {
		rabbitQueue = "marketplace_events"
	}

	return Config{
		AppEnv:   getenv("APP_ENV", "development"),
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		DBDSN:     dsn,
		JWTSecret: secret,

		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       atoi("REDIS_DB", 0),

		ChatStore:    chatStore,
		GeoLookupURL: geoURL,

		RabbitURL:   os.Getenv("RABBIT_URL"),
		RabbitQueue: rabbitQueue,

		WorkerConcurrency: clamp(atoi("WORKER_CONCURRENCY", 2), 1, 50),
		RateLimitPerMin:   atoi("RATE_LIMIT_PER_MIN", 120),

		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
