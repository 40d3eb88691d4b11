package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration, optional. Rate limiting is off without it.
	RedisURL         string
	RateLimitPerHour int

	// JWT configuration
	JWTSecret string

	// Recipe catalog
	ImagesDir   string
	GeneratorID int64
	// RecipeOwnerUpdate lets recipe owners edit their own recipes. Off by
	// default: only administrators update.
	RecipeOwnerUpdate bool

	// Embeddings and search
	OpenAIAPIKey         string
	OpenAIEndpoint       string
	EmbeddingDeployment  string
	SearchDistanceFilter string
	SearchBackend        string

	// Logging
	LogLevel  string
	LogFormat string
}

// Addr is the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// SemanticSearchEnabled reports whether both an API key and an embedding
// deployment are configured.
func (c *Config) SemanticSearchEnabled() bool {
	return c.OpenAIAPIKey != "" && c.EmbeddingDeployment != ""
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env.UsesDotEnv() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := loadFromEnv()
	cfg.Environment = env

	switch env {
	case CI:
		// CI gets everything, secrets included, from the environment.
	case Development, Test:
		overrideFromSecrets(cfg)
	case Production:
		loadProdSecrets(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFromEnv() *Config {
	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		ServerHost:  getEnv("SERVER_HOST", "0.0.0.0"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		DBDriver:   getEnv("DB_DRIVER", DriverPostgres),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "recipes"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "recipes.db"),

		RedisURL:         os.Getenv("REDIS_URL"),
		RateLimitPerHour: getEnvInt("RATE_LIMIT_PER_HOUR", 60),

		JWTSecret: os.Getenv("JWT_SECRET"),

		ImagesDir:   getEnv("IMAGES_DIR", "data/images"),
		GeneratorID: int64(getEnvInt("GENERATOR_ID", 0)),

		RecipeOwnerUpdate: getEnvBool("RECIPE_OWNER_UPDATE", false),

		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIEndpoint:       os.Getenv("OPENAI_ENDPOINT"),
		EmbeddingDeployment:  os.Getenv("OPENAI_EMBEDDING_DEPLOYMENT"),
		SearchDistanceFilter: getEnv("SEARCH_DISTANCE_FILTER", "at_least"),
		SearchBackend:        getEnv("SEARCH_BACKEND", "linear"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// sensitive maps secret file names to the field they populate.
func sensitive(cfg *Config) map[string]*string {
	return map[string]*string{
		"db_user":        &cfg.DBUser,
		"db_password":    &cfg.DBPassword,
		"jwt_secret":     &cfg.JWTSecret,
		"redis_url":      &cfg.RedisURL,
		"openai_api_key": &cfg.OpenAIAPIKey,
	}
}

// overrideFromSecrets lets Docker secrets win over the environment when present.
func overrideFromSecrets(cfg *Config) {
	for name, field := range sensitive(cfg) {
		if v := readSecret(name); v != "" {
			*field = v
		}
	}
}

// loadProdSecrets takes sensitive values ONLY from Docker secrets.
func loadProdSecrets(cfg *Config) {
	for name, field := range sensitive(cfg) {
		*field = readSecret(name)
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
