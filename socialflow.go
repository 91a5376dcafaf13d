package socialflow

import (
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/petrijr/socialflow/internal/engine"
	"github.com/petrijr/socialflow/internal/persistence"
	"github.com/petrijr/socialflow/internal/taskqueue"
	"github.com/petrijr/socialflow/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Engine               = api.Engine
	EventType            = api.EventType
	EventHandlers        = api.EventHandlers
	HandlerFunc          = api.HandlerFunc
	HandlerPhase         = api.HandlerPhase
	TaskRequest          = api.TaskRequest
	NewUser              = api.NewUser
	User                 = api.User
	Group                = api.Group
	Task                 = api.Task
	Notification         = api.Notification
	Message              = api.Message
	HistoryEvent         = api.HistoryEvent
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver
)

// Re-export common observer helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
)

// Re-export the built-in event types.

const (
	EventSendMessage      = api.EventSendMessage
	EventFriendInvitation = api.EventFriendInvitation
	EventGroupInvitation  = api.EventGroupInvitation
)

// Re-export error sentinels.

var (
	ErrNotFound           = api.ErrNotFound
	ErrEmailAlreadyExists = api.ErrEmailAlreadyExists
	ErrInvalidRequest     = api.ErrInvalidRequest
	IsNotFound            = api.IsNotFound
)

// Engine constructors
// These wrap the internal/engine package so external callers
// never need to import internal packages.

// NewInMemoryEngine returns an Engine backed entirely by in-memory stores.
func NewInMemoryEngine() Engine {
	return engine.NewInMemoryEngine()
}

// NewInMemoryEngineWithObserver returns an in-memory Engine with the given Observer.
func NewInMemoryEngineWithObserver(obs Observer) Engine {
	return engine.NewEngineWithConfig(engine.Config{
		Persistence: persistence.NewInMemory(),
		Observer:    obs,
	})
}

// NewSQLiteEngine returns an Engine that persists records and task history
// in a SQLite database.
func NewSQLiteEngine(db *sql.DB) (Engine, error) {
	return engine.NewSQLiteEngine(db)
}

// NewPostgresEngine returns an Engine that persists records in PostgreSQL.
func NewPostgresEngine(db *sql.DB) (Engine, error) {
	return engine.NewPostgresEngine(db)
}

// NewRedisEngine returns an Engine that persists records in Redis under
// keyPrefix ("socialflow:" when empty).
func NewRedisEngine(client *redis.Client, keyPrefix string) Engine {
	return engine.NewRedisEngine(client, keyPrefix)
}

// NewMongoEngine returns an Engine that persists records in the dbName
// MongoDB database.
func NewMongoEngine(client *mongo.Client, dbName string) Engine {
	return engine.NewMongoEngine(client, dbName)
}

// NewInMemoryQueue returns a channel-backed command queue.
func NewInMemoryQueue(capacity int) taskqueue.Queue {
	return taskqueue.NewInMemoryQueue(capacity)
}
