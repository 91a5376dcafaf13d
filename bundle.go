package socialflow

import (
	"database/sql"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/socialflow/internal/engine"
	"github.com/petrijr/socialflow/internal/taskqueue"
	workerpkg "github.com/petrijr/socialflow/pkg/worker"
)

// WorkerBundle wires together an Engine, a durable command queue, and a
// Worker that consumes commands from that queue.
type WorkerBundle struct {
	Engine Engine
	Worker *workerpkg.Worker

	// queue is kept unexported; it is mostly useful for inspection in tests.
	queue taskqueue.Queue
}

// NewSQLiteBundle constructs a durable Engine + Queue + Worker combo sharing
// the same SQLite database. Records, history and queued commands all live in
// db.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:socialflow.db?_journal=WAL")
//	bundle, err := socialflow.NewSQLiteBundle(db, worker.Config{MaxAttempts: 3})
//	// enqueue work via bundle.Worker, run bundle.Worker.ProcessOne in a loop
func NewSQLiteBundle(db *sql.DB, cfg workerpkg.Config) (*WorkerBundle, error) {
	eng, err := engine.NewSQLiteEngine(db)
	if err != nil {
		return nil, err
	}

	q, err := taskqueue.NewSQLiteQueue(db)
	if err != nil {
		return nil, err
	}

	return &WorkerBundle{
		Engine: eng,
		Worker: workerpkg.NewWithConfig(eng, q, cfg),
		queue:  q,
	}, nil
}

// NewRedisBundle is NewSQLiteBundle on Redis: records, history and the
// command list share client and keyPrefix.
func NewRedisBundle(client *redis.Client, keyPrefix string, cfg workerpkg.Config) *WorkerBundle {
	eng := engine.NewRedisEngine(client, keyPrefix)
	q := taskqueue.NewRedisQueue(client, keyPrefix)

	return &WorkerBundle{
		Engine: eng,
		Worker: workerpkg.NewWithConfig(eng, q, cfg),
		queue:  q,
	}
}
