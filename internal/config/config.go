package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/srgjo27/installation_proof/internal/platform/database"
)

type App struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	DBHost       string `envconfig:"DB_HOST" default:"localhost"`
	DBPort       string `envconfig:"DB_PORT" default:"5432"`
	DBUser       string `envconfig:"DB_USER" default:"postgres"`
	DBPassword   string `envconfig:"DB_PASSWORD"`
	DBName       string `envconfig:"DB_NAME" default:"installation_proof"`
	DBSSLMode    string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxRetries int    `envconfig:"DB_MAX_RETRIES" default:"10"`

	// memory keeps everything in process; only for local runs and demos.
	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`

	RabbitURL      string `envconfig:"RABBIT_URL"`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"proof.exchange"`

	S3Bucket        string `envconfig:"S3_BUCKET" default:"installation-proofs"`
	S3Region        string `envconfig:"S3_REGION" default:"ap-southeast-1"`
	S3Endpoint      string `envconfig:"S3_ENDPOINT"`
	S3PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`
	S3Prefix        string `envconfig:"S3_PREFIX" default:"proofs/"`

	UploadTimeout     time.Duration `envconfig:"UPLOAD_TIMEOUT" default:"30s"`
	UploadMaxAttempts uint          `envconfig:"UPLOAD_MAX_ATTEMPTS" default:"3"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"2m"`
	SweepBatchSize int           `envconfig:"SWEEP_BATCH_SIZE" default:"100"`
	SweepLeaseTTL  time.Duration `envconfig:"SWEEP_LEASE_TTL" default:"1m"`

	RateLimitRPS   float64  `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst int      `envconfig:"RATE_LIMIT_BURST" default:"40"`
	// IPs or CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"installation-proof"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (App, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return App{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var c App
	if err := envconfig.Process("", &c); err != nil {
		return App{}, err
	}
	if err := c.validate(); err != nil {
		return App{}, err
	}
	return c, nil
}

func (c App) validate() error {
	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or memory, got %q", c.StoreDriver)
	}
	if c.UploadMaxAttempts == 0 {
		return errors.New("UPLOAD_MAX_ATTEMPTS must be at least 1")
	}
	if c.SweepBatchSize < 1 {
		return errors.New("SWEEP_BATCH_SIZE must be at least 1")
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return fmt.Errorf("TRUSTED_PROXIES: %q is not an IP or CIDR", p)
			}
		}
	}
	return nil
}

func (c App) Database() database.Config {
	return database.Config{
		Host:       c.DBHost,
		Port:       c.DBPort,
		User:       c.DBUser,
		Password:   c.DBPassword,
		DBName:     c.DBName,
		SSLMode:    c.DBSSLMode,
		MaxRetries: c.DBMaxRetries,
		RetryDelay: 2 * time.Second,
	}
}

func (c App) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
