package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/socialflow/internal/config"
)

func TestConfigValidation(t *testing.T) {
	t.Run("valid_default_config", func(t *testing.T) {
		assert.NoError(t, config.NewDefaultConfig().Validate())
	})

	tests := []struct {
		name      string
		configMod func(*config.Config)
		want      error
	}{
		{
			name:      "invalid_api_port_zero",
			configMod: func(c *config.Config) { c.Server.Port = 0 },
			want:      config.ErrInvalidAPIPort,
		},
		{
			name:      "invalid_api_port_too_high",
			configMod: func(c *config.Config) { c.Server.Port = 70000 },
			want:      config.ErrInvalidAPIPort,
		},
		{
			name:      "unknown_store_backend",
			configMod: func(c *config.Config) { c.Store.Backend = "cassandra" },
			want:      config.ErrInvalidStoreBackend,
		},
		{
			name:      "sqlite_without_dsn",
			configMod: func(c *config.Config) { c.Store.Backend = config.BackendSQLite },
			want:      config.ErrMissingDSN,
		},
		{
			name:      "postgres_without_dsn",
			configMod: func(c *config.Config) { c.Store.Backend = config.BackendPostgres },
			want:      config.ErrMissingDSN,
		},
		{
			name:      "mongo_without_uri",
			configMod: func(c *config.Config) { c.Store.Backend = config.BackendMongo },
			want:      config.ErrMissingMongoURI,
		},
		{
			name: "redis_without_addr",
			configMod: func(c *config.Config) {
				c.Store.Backend = config.BackendRedis
				c.Store.RedisAddr = ""
			},
			want: config.ErrMissingRedisAddr,
		},
		{
			name:      "zero_parallelism",
			configMod: func(c *config.Config) { c.Engine.Parallelism = 0 },
			want:      config.ErrInvalidParallelism,
		},
		{
			name:      "bad_log_level",
			configMod: func(c *config.Config) { c.Log.Level = "loud" },
			want:      config.ErrInvalidLogLevel,
		},
		{
			name:      "unknown_queue_backend",
			configMod: func(c *config.Config) { c.Queue.Backend = "kafka" },
			want:      config.ErrInvalidQueueBackend,
		},
		{
			name:      "sqlite_queue_without_sqlite_store",
			configMod: func(c *config.Config) { c.Queue.Backend = config.BackendSQLite },
			want:      config.ErrQueueNeedsSQLite,
		},
		{
			name:      "zero_workers",
			configMod: func(c *config.Config) { c.Queue.Workers = 0 },
			want:      config.ErrInvalidQueueWorkers,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			tt.configMod(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.NewDefaultConfig(), cfg)
}

func TestLoad_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "socialflow.yaml")
	content := `
store:
  backend: sqlite
  dsn: "file:test.db"
engine:
  parallelism: 8
server:
  port: 9090
log:
  level: debug
queue:
  backend: sqlite
  workers: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "file:test.db", cfg.Store.DSN)
	assert.Equal(t, 8, cfg.Engine.Parallelism)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Queue.Workers)
	assert.Equal(t, config.DefaultRedisPrefix, cfg.Store.RedisPrefix)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "socialflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600))

	t.Setenv("SOCIALFLOW_SERVER_PORT", "7070")
	t.Setenv("SOCIALFLOW_STORE_BACKEND", "redis")
	t.Setenv("SOCIALFLOW_STORE_REDIS_ADDR", "cache:6379")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, config.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Store.RedisAddr)
}

func TestLoad_InvalidFileIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_ValidatesResult(t *testing.T) {
	t.Setenv("SOCIALFLOW_ENGINE_PARALLELISM", "0")

	_, err := config.Load("")
	assert.ErrorIs(t, err, config.ErrInvalidParallelism)
}
