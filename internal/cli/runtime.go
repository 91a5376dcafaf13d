package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	_ "modernc.org/sqlite"

	"github.com/petrijr/socialflow/internal/config"
	"github.com/petrijr/socialflow/internal/engine"
	"github.com/petrijr/socialflow/internal/persistence"
	"github.com/petrijr/socialflow/internal/taskqueue"
	"github.com/petrijr/socialflow/pkg/api"
	"github.com/petrijr/socialflow/pkg/worker"
)

// runtime is an engine wired to the configured store, plus the command
// queue and worker used for async dispatch.
type runtime struct {
	Engine  api.Engine
	Queue   taskqueue.Queue
	Worker  *worker.Worker
	Metrics *api.BasicMetrics

	persistence persistence.Persistence
	queueClose  func() error
}

// openRuntime connects to the backends named in cfg.
func openRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*runtime, error) {
	var (
		p   persistence.Persistence
		db  *sql.DB
		rc  *redis.Client
		err error
	)

	switch cfg.Store.Backend {
	case config.BackendMemory:
		p = persistence.NewInMemory()

	case config.BackendSQLite:
		db, err = sql.Open("sqlite", cfg.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if cfg.Store.DSN == ":memory:" {
			db.SetMaxOpenConns(1)
		}
		p, err = engine.NewSQLitePersistence(db)

	case config.BackendPostgres:
		db, err = sql.Open("pgx", cfg.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		p, err = engine.NewPostgresPersistence(db)

	case config.BackendRedis:
		rc = newRedisClient(cfg)
		p = engine.NewRedisPersistence(rc, cfg.Store.RedisPrefix)

	case config.BackendMongo:
		client, cerr := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Store.MongoURI))
		if cerr != nil {
			return nil, fmt.Errorf("connect mongo: %w", cerr)
		}
		p = engine.NewMongoPersistence(client, cfg.Store.MongoDB)

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidStoreBackend, cfg.Store.Backend)
	}
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	queue, queueClose, err := openQueue(cfg, db, rc)
	if err != nil {
		_ = p.Close()
		return nil, err
	}

	metrics := &api.BasicMetrics{}
	eng := engine.NewEngineWithConfig(engine.Config{
		Persistence: p,
		Observer:    api.NewCompositeObserver(api.NewLoggingObserver(logger), metrics),
		Logger:      logger,
		Parallelism: cfg.Engine.Parallelism,
	})

	return &runtime{
		Engine: eng,
		Queue:  queue,
		Worker: worker.NewWithConfig(eng, queue, worker.Config{
			MaxAttempts: cfg.Queue.MaxAttempts,
			Logger:      logger,
		}),
		Metrics:     metrics,
		persistence: p,
		queueClose:  queueClose,
	}, nil
}

// openQueue returns the configured command queue and, when the queue owns
// a connection of its own, a func that closes it.
func openQueue(cfg *config.Config, db *sql.DB, rc *redis.Client) (taskqueue.Queue, func() error, error) {
	switch cfg.Queue.Backend {
	case config.BackendSQLite:
		if db == nil {
			return nil, nil, config.ErrQueueNeedsSQLite
		}
		q, err := taskqueue.NewSQLiteQueue(db)
		return q, nil, err
	case config.BackendRedis:
		if rc != nil {
			return taskqueue.NewRedisQueue(rc, cfg.Store.RedisPrefix), nil, nil
		}
		own := newRedisClient(cfg)
		return taskqueue.NewRedisQueue(own, cfg.Store.RedisPrefix), own.Close, nil
	default:
		return taskqueue.NewInMemoryQueue(0), nil, nil
	}
}

func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Store.RedisAddr})
}

// Close releases the store connection and any connection the queue owns.
func (r *runtime) Close() error {
	err := r.persistence.Close()
	if r.queueClose != nil {
		err = errors.Join(err, r.queueClose())
	}
	return err
}
