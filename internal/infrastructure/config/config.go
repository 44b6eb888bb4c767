package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// Signing key pair for session tokens, PEM-encoded. The private key
	// issues, the public key verifies.
	AccessTokenPrivateKey string `env:"ACCESS_TOKEN_PRIVATE_KEY"`
	AccessTokenPublicKey  string `env:"ACCESS_TOKEN_PUBLIC_KEY"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=8760h"`

	// SaltFactor is the bcrypt work factor for credential hashing.
	SaltFactor int `env:"SALT_FACTOR, default=10"`

	// UploadRoot is where the media pipeline reads uploads and writes
	// compressed output.
	UploadRoot   string `env:"UPLOAD_ROOT,   default=public/uploads"`
	MediaWorkers int    `env:"MEDIA_WORKERS, default=4"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=rental_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger *slog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		panic(err)
	}
	return &cfg
}
