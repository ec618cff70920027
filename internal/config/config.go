package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string
	CatalogURL      string
	CatalogTimeout  time.Duration
	SnapshotDBPath  string
	MigrationsPath  string
	StorageBackend  string
	StorageDir      string
	RedisAddr       string
	RedisPassword   string
	MongoURI        string
	MongoDBName     string
	CartProfile     string
	ItemsPerPage    int
	KafkaBrokers    []string
	CheckoutTopic   string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	catalogTimeout, err := time.ParseDuration(getEnv("CATALOG_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_TIMEOUT: %w", err)
	}
	itemsPerPage, err := strconv.Atoi(getEnv("ITEMS_PER_PAGE", "10"))
	if err != nil || itemsPerPage < 1 {
		return nil, fmt.Errorf("invalid ITEMS_PER_PAGE %q", os.Getenv("ITEMS_PER_PAGE"))
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		CatalogURL:      getEnv("CATALOG_URL", "https://dummyjson.com/products"),
		CatalogTimeout:  catalogTimeout,
		SnapshotDBPath:  getEnv("SNAPSHOT_DB_PATH", "./catalog.db"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),
		StorageBackend:  strings.ToLower(getEnv("STORAGE_BACKEND", "file")),
		StorageDir:      getEnv("STORAGE_DIR", "./.storefront"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storefront"),
		CartProfile:     getEnv("CART_PROFILE", "default"),
		ItemsPerPage:    itemsPerPage,
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "")),
		CheckoutTopic:   getEnv("CHECKOUT_TOPIC", "cart-checkout"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		ShutdownTimeout: 10 * time.Second,
		RequestTimeout:  30 * time.Second,
	}

	switch cfg.StorageBackend {
	case "memory", "file", "redis", "mongo":
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
