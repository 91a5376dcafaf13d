package engine

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/petrijr/socialflow/internal/persistence"
	"github.com/petrijr/socialflow/pkg/api"
	"github.com/petrijr/socialflow/pkg/log"
)

// DefaultParallelism bounds how many recipients of one CreateTask call are
// processed at once.
const DefaultParallelism = 4

// engineImpl is a request-driven engine over a RecordStore. It holds no
// locks around record updates; see persistence.Lists.
type engineImpl struct {
	records persistence.RecordStore
	lists   persistence.Lists
	history persistence.EventStore

	registry    *eventRegistry
	observer    api.Observer
	logger      *slog.Logger
	parallelism int
	now         func() time.Time
}

var _ api.Engine = (*engineImpl)(nil)

// Config describes how to construct an engineImpl.
// Only used inside this module; external callers use the helper functions.
type Config struct {
	Persistence persistence.Persistence
	Observer    api.Observer
	Logger      *slog.Logger

	// Parallelism bounds concurrent recipient processing in CreateTask.
	// Zero means DefaultParallelism.
	Parallelism int

	// Now overrides the clock, for tests.
	Now func() time.Time
}

func NewInMemoryEngine() api.Engine {
	return NewEngine(persistence.NewInMemory())
}

func NewSQLiteEngine(db *sql.DB) (api.Engine, error) {
	p, err := NewSQLitePersistence(db)
	if err != nil {
		return nil, err
	}
	return NewEngine(p), nil
}

// NewSQLitePersistence builds record and history stores sharing db.
func NewSQLitePersistence(db *sql.DB) (persistence.Persistence, error) {
	records, err := persistence.NewSQLiteRecordStore(db)
	if err != nil {
		return persistence.Persistence{}, err
	}
	events, err := persistence.NewSQLiteEventStore(db)
	if err != nil {
		return persistence.Persistence{}, err
	}
	return persistence.Persistence{Records: records, Events: events}, nil
}

func NewPostgresEngine(db *sql.DB) (api.Engine, error) {
	p, err := NewPostgresPersistence(db)
	if err != nil {
		return nil, err
	}
	return NewEngine(p), nil
}

// NewPostgresPersistence builds record and history stores sharing db.
func NewPostgresPersistence(db *sql.DB) (persistence.Persistence, error) {
	records, err := persistence.NewPostgresRecordStore(db)
	if err != nil {
		return persistence.Persistence{}, err
	}
	events, err := persistence.NewPostgresEventStore(db)
	if err != nil {
		return persistence.Persistence{}, err
	}
	return persistence.Persistence{Records: records, Events: events}, nil
}

// NewRedisEngine creates an engine that keeps records and history in Redis
// under prefix.
func NewRedisEngine(client *redis.Client, prefix string) api.Engine {
	return NewEngine(NewRedisPersistence(client, prefix))
}

func NewRedisPersistence(client *redis.Client, prefix string) persistence.Persistence {
	return persistence.Persistence{
		Records: persistence.NewRedisRecordStore(client, prefix),
		Events:  persistence.NewRedisEventStore(client, prefix),
	}
}

// NewMongoEngine creates an engine that keeps records and history in the
// MongoDB database dbName.
func NewMongoEngine(client *mongo.Client, dbName string) api.Engine {
	return NewEngine(NewMongoPersistence(client, dbName))
}

func NewMongoPersistence(client *mongo.Client, dbName string) persistence.Persistence {
	return persistence.Persistence{
		Records: persistence.NewMongoRecordStore(client, dbName),
		Events:  persistence.NewMongoEventStore(client, dbName),
	}
}

// NewEngineWithConfig creates a new Engine using the given configuration.
// The built-in friend and group invitation workflows are pre-registered.
func NewEngineWithConfig(cfg Config) api.Engine {
	obs := cfg.Observer
	if obs == nil {
		obs = api.NoopObserver{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	history := cfg.Persistence.Events
	if history == nil {
		history = persistence.NoopEventStore{}
	}
	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	e := &engineImpl{
		records:     cfg.Persistence.Records,
		lists:       persistence.Lists{Store: cfg.Persistence.Records, Now: now},
		history:     history,
		registry:    newEventRegistry(),
		observer:    obs,
		logger:      logger,
		parallelism: parallelism,
		now:         now,
	}
	registerBuiltinEvents(e.registry)
	return e
}

// NewEngine returns an Engine backed by p with default settings.
func NewEngine(p persistence.Persistence) api.Engine {
	return NewEngineWithConfig(Config{
		Persistence: p,
	})
}

func (e *engineImpl) RegisterEvent(eventType api.EventType, handlers api.EventHandlers) {
	e.registry.Register(eventType, handlers)
}

func (e *engineImpl) UnregisterEvent(eventType api.EventType) {
	e.registry.Unregister(eventType)
}

func (e *engineImpl) TaskHistory(ctx context.Context, subject string) ([]api.HistoryEvent, error) {
	return e.history.ListEvents(ctx, subject)
}

// record appends a history event. History is an audit aid: a failed append
// is logged, never returned.
func (e *engineImpl) record(ctx context.Context, ev api.HistoryEvent) {
	if ev.At.IsZero() {
		ev.At = e.now()
	}
	if err := e.history.AppendEvent(ctx, ev); err != nil {
		e.logger.WarnContext(ctx, "history append failed",
			slog.String("subject", ev.Subject),
			slog.String("type", string(ev.Type)),
			log.Error(err))
	}
}

func (e *engineImpl) timestamp() time.Time {
	return e.now().UTC()
}
