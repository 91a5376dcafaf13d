package taskqueue

import (
	"context"
	"time"

	"github.com/petrijr/socialflow/pkg/api"
)

// CommandType identifies what the worker should do with a queued command.
type CommandType string

const (
	CommandCreateTask  CommandType = api.CommandCreateTask
	CommandFinishTask  CommandType = api.CommandFinishTask
	CommandCancelTask  CommandType = api.CommandCancelTask
	CommandSendMessage CommandType = api.CommandSendMessage
)

// Command is a unit of deferred engine work.
type Command struct {
	ID   string
	Type CommandType

	// Payload is command-type specific:
	//   - create-task:  api.CreateTaskPayload
	//   - finish-task:  api.FinishTaskPayload
	//   - cancel-task:  api.CancelTaskPayload
	//   - send-message: api.SendMessagePayload
	Payload any

	EnqueuedAt time.Time

	// Attempts counts how many times the command has been handed to a worker.
	Attempts int
}

// Queue is a simple async command queue interface.
type Queue interface {
	// Enqueue adds a command to the queue. It should respect ctx for cancellation.
	Enqueue(ctx context.Context, c Command) error

	// Dequeue removes and returns the next command, blocking until one is
	// available or the context is cancelled.
	Dequeue(ctx context.Context) (*Command, error)

	// Len returns the approximate number of commands queued.
	Len() int
}
