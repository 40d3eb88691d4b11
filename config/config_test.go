package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("DB_NAME", "recipes")
	t.Setenv("DB_SSL_MODE", "disable")
	t.Setenv("JWT_SECRET", "test-secret-at-least-16")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
}

func TestLoadConfig(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "postgres", cfg.DBUser)
	assert.Equal(t, "postgres", cfg.DBPassword)
	assert.Equal(t, "recipes", cfg.DBName)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "test-secret-at-least-16", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "data/images", cfg.ImagesDir)
	assert.Equal(t, int64(0), cfg.GeneratorID)
	assert.Equal(t, "at_least", cfg.SearchDistanceFilter)
	assert.Equal(t, "linear", cfg.SearchBackend)
	assert.Equal(t, 60, cfg.RateLimitPerHour)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOrigins)
	assert.False(t, cfg.SemanticSearchEnabled())
	assert.False(t, cfg.RecipeOwnerUpdate)
}

func TestLoadConfig_RecipeOwnerUpdate(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RECIPE_OWNER_UPDATE", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.RecipeOwnerUpdate)
}

func TestLoadConfig_SecretsOverrideEnvironment(t *testing.T) {
	setBaseEnv(t)
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret-file-123\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "openai_api_key"), []byte("sk-secret"), 0o600))
	t.Setenv("OPENAI_EMBEDDING_DEPLOYMENT", "text-embedding-3-small")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-secret-file-123", cfg.JWTSecret)
	assert.Equal(t, "sk-secret", cfg.OpenAIAPIKey)
	assert.True(t, cfg.SemanticSearchEnabled())
}

func TestLoadConfig_ProductionReadsOnlySecrets(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENV", "production")

	_, err := LoadConfig()
	require.Error(t, err, "JWT secret from the environment must not count in production")

	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	for name, value := range map[string]string{
		"db_user":     "svc",
		"db_password": "pw",
		"jwt_secret":  "production-secret-value",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value), 0o600))
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Production, cfg.Environment)
	assert.Equal(t, "svc", cfg.DBUser)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadConfig_CIDetection(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CI", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, CI, cfg.Environment)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServerPort:           "8080",
			DBDriver:             DriverSQLite,
			SQLitePath:           "test.db",
			JWTSecret:            "0123456789abcdef",
			ImagesDir:            "images",
			SearchDistanceFilter: "at_least",
			SearchBackend:        "linear",
			LogFormat:            "json",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid sqlite", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"postgres without host", func(c *Config) { c.DBDriver = DriverPostgres }, true},
		{"short jwt secret", func(c *Config) { c.JWTSecret = "short" }, true},
		{"bad port", func(c *Config) { c.ServerPort = "http" }, true},
		{"generator id too large", func(c *Config) { c.GeneratorID = 1024 }, true},
		{"negative generator id", func(c *Config) { c.GeneratorID = -1 }, true},
		{"bad distance filter", func(c *Config) { c.SearchDistanceFilter = "closest" }, true},
		{"bad backend", func(c *Config) { c.SearchBackend = "faiss" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
