// Package api contains the core building blocks used by the socialflow
// engine: the record shapes it persists, the event-type handler contract,
// the Engine interface and the Observer hooks.
//
// Most users interact with the higher-level socialflow package, which
// re-exports selected types and helpers from this package. The api package is
// intended for custom integrations, alternative record stores, or
// contributors extending the engine itself.
//
// # Records
//
// The engine works on five record kinds: User, Group, Task, Notification and
// Message. Every record implements Record, which is the only thing a record
// store needs to know about it:
//
//   - Kind and RecordID identify it.
//   - SearchFields exposes the scalar fields usable in equality searches.
//   - ListField exposes the identifier lists that push/pull primitives mutate.
//
// Records hold identifiers of other records, never embedded copies. The
// record store is the single source of truth.
//
// # Tasks and event types
//
// A Task is one pending unit of workflow linking an initiator (From), a
// recipient (To) and an EventType. The engine keeps a registry mapping each
// EventType to an EventHandlers pair:
//
//   - Action runs right after the task is persisted (typically a notification).
//   - Finish runs when the task is resolved and performs the durable side
//     effect (group membership, a new direct group, ...).
//
// Either handler may be nil. Handlers receive the Engine so they can call
// back into notification and group creation.
//
// # Observability
//
// The Observer interface receives lifecycle callbacks. LoggingObserver,
// BasicMetrics and CompositeObserver are ready-made implementations.
package api
