// Package worker provides the background worker that executes queued engine
// commands.
//
// Producers (the HTTP server, the CLI, application code) enqueue commands
// such as "create a task" or "finish a task" on a taskqueue.Queue. A Worker
// pulls one command at a time and runs it against an api.Engine:
//
//   - create-task:  Engine.CreateTask
//   - finish-task:  Engine.FinishTask
//   - cancel-task:  Engine.CancelTask
//   - send-message: Engine.SendMessage
//
// The engine itself has no background loop; workers only move the moment at
// which a request-driven operation runs. Several workers may share a queue.
//
// # Retries
//
// A command that fails with a transient error is re-enqueued after
// Config.Backoff until it has been attempted Config.MaxAttempts times.
// Lookup misses (api.ErrNotFound) and malformed requests
// (api.ErrInvalidRequest) are never retried. Neither is a command whose
// engine call reached a step that must not run twice: an invoked finish
// handler, a failed action handler or a stored message (see api.Attempt).
// Only failures before those steps, such as a store error while loading the
// task, are retried.
//
// Most applications do not drive a Worker by hand; socialflow.LocalRunner
// wires an engine, an in-memory queue and a pool of worker goroutines.
package worker
