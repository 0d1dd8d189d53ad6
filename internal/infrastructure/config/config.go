package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session  SessionConfig
	Upstream UpstreamConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type SessionConfig struct {
	CookieName   string        `env:"SESSION_COOKIE_NAME,   default=allerview_session"`
	CookieSecret string        `env:"SESSION_COOKIE_SECRET"`
	TokenTTL     time.Duration `env:"SESSION_TOKEN_TTL,     default=720h"`
	StateTTL     time.Duration `env:"DELEGATED_STATE_TTL,   default=10m"`
	AuditWorkers int           `env:"AUDIT_WORKERS,         default=4"`
}

type UpstreamConfig struct {
	// BaseURL includes the /api prefix of the portal API.
	BaseURL string `env:"UPSTREAM_API_URL, default=http://localhost:9000/api"`
	// ProviderLoginURL is the delegated provider's browser entry point.
	ProviderLoginURL string        `env:"PROVIDER_LOGIN_URL, default=http://localhost:9000/api/auth/google/login"`
	CallbackURL      string        `env:"CALLBACK_URL,       default=http://localhost:8080/auth/google/callback"`
	Timeout          time.Duration `env:"UPSTREAM_TIMEOUT,   default=10s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=portal_gateway"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
