package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr       string `envconfig:"HTTP_ADDR" default:":8080"`
	GRPCHealthAddr string `envconfig:"GRPC_HEALTH_ADDR" default:":50053"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	Redis RedisConfig
	DB    DBConfig
	Auth  AuthConfig
	POS   POSConfig
}

type DBConfig struct {
	DSN string `envconfig:"POS_DSN"`
}

type AuthConfig struct {
	JWTSecret string        `envconfig:"JWT_SECRET" default:"dev-only-secret-change-me"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"12h"`
}

type POSConfig struct {
	// RateLimit uses the ulule limiter format, e.g. "120-M".
	RateLimit       string        `envconfig:"RATE_LIMIT" default:"120-M"`
	CatalogCacheTTL time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"5m"`
	AutoOpenShift   bool          `envconfig:"AUTO_OPEN_SHIFT" default:"false"`
}

func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode environment")
	}
	return cfg, nil
}
