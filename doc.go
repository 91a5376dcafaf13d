// Package socialflow provides an embeddable task/event engine for social
// actions such as friend requests, group invitations and message delivery.
//
// A social action becomes a durable Task that stays open until the recipient
// resolves it. Each Task carries an EventType that selects a pair of
// pluggable handlers:
//
//   - Action runs once when the task is created (e.g. notify the recipient).
//   - Finish runs when the task is accepted (e.g. create the friendship).
//
// Cancelling a task runs neither handler. While a task is open its id is
// listed in the recipient's tasks and in the creator's tracking list; both
// references are removed when the task closes.
//
// # Engine
//
// The Engine is request-driven: every method is one unit of work and nothing
// runs in the background. Engines can be backed by different stores:
//
//   - In-memory (non-durable, best for tests)
//   - SQLite
//   - Postgres
//   - Redis
//   - MongoDB
//
// Every backend implements the same keyed-record contract (fetch, save,
// remove, count and first-match equality search), so the engine behaves
// identically on all of them.
//
// # Built-in events
//
// friendInvitation and groupInvitation are registered on every engine.
// Applications add their own with RegisterEvent:
//
//	eng := socialflow.NewInMemoryEngine()
//	eng.RegisterEvent("challenge", socialflow.EventHandlers{
//		Action: func(ctx context.Context, eng socialflow.Engine, t *socialflow.Task) (any, error) {
//			id, err := eng.Notify(ctx, t.From, t.To, t.Content, t.EventType)
//			return id, err
//		},
//	})
//
// # Async dispatch
//
// Engine operations can also be queued and executed by a worker.
// LocalRunner bundles an in-memory engine, an in-memory queue and a pool of
// worker goroutines; NewSQLiteBundle and NewRedisBundle do the same on
// durable queues.
//
// # Observability
//
// Observers receive task lifecycle callbacks. LoggingObserver writes
// structured slog records, BasicMetrics keeps atomic counters, and
// NewCompositeObserver fans out to several observers.
package socialflow
