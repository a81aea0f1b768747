package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_PASSWORD", "s3cret")

	path := writeConfig(t, `
database:
  host: localhost
  port: 5432
  user: store
  name: travelstore
  ssl_mode: disable
kafka:
  brokers: ["localhost:9092"]
  store_events_topic: store-events
storage:
  public_base_url: http://localhost:8080/
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, StorageFS, cfg.Storage.Driver)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 24*60, cfg.Cart.TTLMinutes)
	assert.Equal(t, "http://localhost:8080", cfg.Storage.PublicBaseURL)
	assert.Equal(t, "host=localhost port=5432 user=store password=s3cret dbname=travelstore sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := writeConfig(t, "database:\n  driver: memory\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoadConfig_UnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	path := writeConfig(t, "database:\n  driver: sqlite\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown database driver")
}

func TestLoadConfig_GridFSNeedsMongo(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	path := writeConfig(t, "database:\n  driver: memory\nstorage:\n  driver: gridfs\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_FileMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
