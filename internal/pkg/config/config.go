package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the process-wide configuration, loaded once at startup and
// passed by reference into each component constructor. There is no
// hot-reload: changing any value requires a restart.
type Config struct {
	Port      string `env:"PORT,      default=5000"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET, required"`
	// BaseURL is the public origin used to build verification links.
	BaseURL  string `env:"BASE_URL,  default=http://localhost:5000"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	VerifyTokenTTL  time.Duration `env:"VERIFY_TOKEN_TTL,  default=10m"`
	SessionTokenTTL time.Duration `env:"SESSION_TOKEN_TTL, default=168h"`

	AuthRateLimit  int           `env:"AUTH_RATE_LIMIT,  default=10"`
	AuthRateWindow time.Duration `env:"AUTH_RATE_WINDOW, default=1m"`
	AuditWorkers   int           `env:"AUDIT_WORKERS,    default=4"`

	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=safestreet"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string        `env:"SMTP_HOST"`
	Port     int           `env:"SMTP_PORT,     default=587"`
	Username string        `env:"SMTP_USER"`
	Password string        `env:"SMTP_PASS"`
	From     string        `env:"EMAIL_FROM"`
	FromName string        `env:"EMAIL_FROM_NAME, default=SafeStreet"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT,  default=15s"`
	Disabled bool          `env:"SMTP_DISABLED, default=false"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
