package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

type (
	// Config is the top-level service configuration.
	Config struct {
		Store  StoreConfig  `mapstructure:"store" yaml:"store"`
		Engine EngineConfig `mapstructure:"engine" yaml:"engine"`
		Server ServerConfig `mapstructure:"server" yaml:"server"`
		Log    LogConfig    `mapstructure:"log" yaml:"log"`
		Queue  QueueConfig  `mapstructure:"queue" yaml:"queue"`
	}

	// StoreConfig selects and addresses the record store backend.
	StoreConfig struct {
		Backend     string `mapstructure:"backend" yaml:"backend"`
		DSN         string `mapstructure:"dsn" yaml:"dsn"`
		RedisAddr   string `mapstructure:"redis_addr" yaml:"redis_addr"`
		RedisPrefix string `mapstructure:"redis_prefix" yaml:"redis_prefix"`
		MongoURI    string `mapstructure:"mongo_uri" yaml:"mongo_uri"`
		MongoDB     string `mapstructure:"mongo_db" yaml:"mongo_db"`
	}

	// EngineConfig tunes the task engine.
	EngineConfig struct {
		// Parallelism bounds how many CreateTask recipients run at once.
		Parallelism int `mapstructure:"parallelism" yaml:"parallelism"`
	}

	// ServerConfig is where the HTTP API listens.
	ServerConfig struct {
		Host string `mapstructure:"host" yaml:"host"`
		Port int    `mapstructure:"port" yaml:"port"`
	}

	LogConfig struct {
		Level string `mapstructure:"level" yaml:"level"`
	}

	// QueueConfig selects the command queue used for async dispatch.
	QueueConfig struct {
		Backend     string `mapstructure:"backend" yaml:"backend"`
		Workers     int    `mapstructure:"workers" yaml:"workers"`
		MaxAttempts int    `mapstructure:"max_attempts" yaml:"max_attempts"`
	}
)

// Store and queue backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
)

const (
	EnvPrefix = "SOCIALFLOW"

	DefaultAPIHost          = "0.0.0.0"
	DefaultAPIPort          = 8080
	MaxTCPPort              = 65535
	DefaultParallelism      = 4
	DefaultRedisAddr        = "localhost:6379"
	DefaultRedisPrefix      = "socialflow:"
	DefaultMongoDB          = "socialflow"
	DefaultLogLevel         = "info"
	DefaultQueueWorkers     = 2
	DefaultQueueMaxAttempts = 3
)

var (
	storeBackends = []string{BackendMemory, BackendSQLite, BackendPostgres, BackendRedis, BackendMongo}
	queueBackends = []string{BackendMemory, BackendSQLite, BackendRedis}
	logLevels     = []string{"debug", "info", "warn", "error"}
)

var (
	ErrInvalidAPIPort      = errors.New("invalid API port")
	ErrInvalidStoreBackend = errors.New("invalid store backend")
	ErrMissingDSN          = errors.New("store dsn is required for this backend")
	ErrMissingRedisAddr    = errors.New("redis address is required")
	ErrMissingMongoURI     = errors.New("mongo uri is required")
	ErrInvalidParallelism  = errors.New("engine parallelism must be positive")
	ErrInvalidLogLevel     = errors.New("invalid log level")
	ErrInvalidQueueBackend = errors.New("invalid queue backend")
	ErrInvalidQueueWorkers = errors.New("queue workers must be positive")
	ErrQueueNeedsSQLite    = errors.New("sqlite queue requires the sqlite store")
)

// NewDefaultConfig returns an in-memory configuration that validates.
func NewDefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:     BackendMemory,
			RedisAddr:   DefaultRedisAddr,
			RedisPrefix: DefaultRedisPrefix,
			MongoDB:     DefaultMongoDB,
		},
		Engine: EngineConfig{Parallelism: DefaultParallelism},
		Server: ServerConfig{Host: DefaultAPIHost, Port: DefaultAPIPort},
		Log:    LogConfig{Level: DefaultLogLevel},
		Queue: QueueConfig{
			Backend:     BackendMemory,
			Workers:     DefaultQueueWorkers,
			MaxAttempts: DefaultQueueMaxAttempts,
		},
	}
}

// Load reads configuration from path (YAML, optional) and from SOCIALFLOW_*
// environment variables, e.g. SOCIALFLOW_STORE_BACKEND. An empty path or a
// missing file yields the defaults plus environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			var pathErr *os.PathError
			if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := NewDefaultConfig()
	v.SetDefault("store.backend", def.Store.Backend)
	v.SetDefault("store.dsn", def.Store.DSN)
	v.SetDefault("store.redis_addr", def.Store.RedisAddr)
	v.SetDefault("store.redis_prefix", def.Store.RedisPrefix)
	v.SetDefault("store.mongo_uri", def.Store.MongoURI)
	v.SetDefault("store.mongo_db", def.Store.MongoDB)
	v.SetDefault("engine.parallelism", def.Engine.Parallelism)
	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("queue.backend", def.Queue.Backend)
	v.SetDefault("queue.workers", def.Queue.Workers)
	v.SetDefault("queue.max_attempts", def.Queue.MaxAttempts)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.Server.Port)
	}
	if !slices.Contains(storeBackends, c.Store.Backend) {
		return fmt.Errorf("%w: %q", ErrInvalidStoreBackend, c.Store.Backend)
	}
	switch c.Store.Backend {
	case BackendSQLite, BackendPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: %s", ErrMissingDSN, c.Store.Backend)
		}
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return ErrMissingMongoURI
		}
	}
	if c.Engine.Parallelism <= 0 {
		return ErrInvalidParallelism
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	if !slices.Contains(queueBackends, c.Queue.Backend) {
		return fmt.Errorf("%w: %q", ErrInvalidQueueBackend, c.Queue.Backend)
	}
	if c.Queue.Backend == BackendSQLite && c.Store.Backend != BackendSQLite {
		return ErrQueueNeedsSQLite
	}
	if (c.Store.Backend == BackendRedis || c.Queue.Backend == BackendRedis) && c.Store.RedisAddr == "" {
		return ErrMissingRedisAddr
	}
	if c.Queue.Workers <= 0 {
		return ErrInvalidQueueWorkers
	}
	return nil
}

// Addr is the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
