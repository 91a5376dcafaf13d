package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/socialflow/internal/taskqueue"
	"github.com/petrijr/socialflow/pkg/api"
	sflog "github.com/petrijr/socialflow/pkg/log"
)

// ErrInvalidPayload is returned by ProcessOne for a command whose payload
// does not match its type.
var ErrInvalidPayload = errors.New("invalid command payload")

// QueueErrorPause is how long Run waits after the queue itself fails.
const QueueErrorPause = time.Second

// Config controls retry behaviour and logging.
type Config struct {
	// MaxAttempts is the total number of times a command is tried.
	// Values below 1 mean a single attempt.
	MaxAttempts int

	// Backoff is the delay before a failed command is re-enqueued.
	Backoff time.Duration

	Logger *slog.Logger
}

// Worker pulls commands from a Queue and executes them using an Engine.
type Worker struct {
	engine api.Engine
	queue  taskqueue.Queue
	cfg    Config
	logger *slog.Logger
}

// New creates a Worker that tries each command once.
func New(engine api.Engine, queue taskqueue.Queue) *Worker {
	return NewWithConfig(engine, queue, Config{})
}

// NewWithConfig creates a Worker with the given retry policy.
func NewWithConfig(engine api.Engine, queue taskqueue.Queue, cfg Config) *Worker {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		engine: engine,
		queue:  queue,
		cfg:    cfg,
		logger: logger,
	}
}

// EnqueueCreateTask queues a CreateTask call.
func (w *Worker) EnqueueCreateTask(ctx context.Context, req api.TaskRequest) error {
	return w.enqueue(ctx, taskqueue.CommandCreateTask, api.CreateTaskPayload{Request: req})
}

// EnqueueFinishTask queues a FinishTask call.
func (w *Worker) EnqueueFinishTask(ctx context.Context, id api.TaskID) error {
	return w.enqueue(ctx, taskqueue.CommandFinishTask, api.FinishTaskPayload{TaskID: id})
}

// EnqueueCancelTask queues a CancelTask call.
func (w *Worker) EnqueueCancelTask(ctx context.Context, id api.TaskID) error {
	return w.enqueue(ctx, taskqueue.CommandCancelTask, api.CancelTaskPayload{TaskID: id})
}

// EnqueueSendMessage queues a SendMessage call.
func (w *Worker) EnqueueSendMessage(ctx context.Context, from api.UserID, to api.GroupID, content string) error {
	return w.enqueue(ctx, taskqueue.CommandSendMessage, api.SendMessagePayload{From: from, To: to, Content: content})
}

func (w *Worker) enqueue(ctx context.Context, typ taskqueue.CommandType, payload any) error {
	return w.queue.Enqueue(ctx, taskqueue.Command{
		ID:         uuid.NewString(),
		Type:       typ,
		Payload:    payload,
		EnqueuedAt: time.Now(),
	})
}

// ProcessOne pulls a single command from the queue and executes it.
// Returns (processed, error):
//   - processed == false: nothing was dequeued (ctx cancelled or queue error).
//   - processed == true: a command ran; err is the engine's result. A failed
//     command that will be retried still reports its error.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	cmd, err := w.queue.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if cmd == nil {
		return false, nil
	}

	execCtx, attempt := api.WithAttempt(ctx)
	runErr := w.execute(execCtx, cmd)
	if runErr == nil {
		return true, nil
	}

	w.logger.ErrorContext(ctx, "command failed",
		slog.String("command_id", cmd.ID),
		slog.String("command_type", string(cmd.Type)),
		slog.Int("attempt", cmd.Attempts),
		sflog.Error(runErr),
	)

	if retryable(runErr) && !attempt.Irreversible() && cmd.Attempts < w.cfg.MaxAttempts {
		if err := w.requeue(ctx, *cmd); err != nil {
			return true, errors.Join(runErr, err)
		}
	}
	return true, runErr
}

// Run calls ProcessOne until ctx is cancelled, then returns ctx.Err().
// Failed commands are logged by ProcessOne and do not stop the loop; a
// failing queue is retried after QueueErrorPause.
func (w *Worker) Run(ctx context.Context) error {
	for {
		processed, err := w.ProcessOne(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil || processed {
			continue
		}
		w.logger.WarnContext(ctx, "dequeue failed", sflog.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(QueueErrorPause):
		}
	}
}

func (w *Worker) execute(ctx context.Context, cmd *taskqueue.Command) error {
	switch cmd.Type {
	case taskqueue.CommandCreateTask:
		p, ok := cmd.Payload.(api.CreateTaskPayload)
		if !ok {
			return payloadError(cmd)
		}
		_, err := w.engine.CreateTask(ctx, p.Request)
		return err

	case taskqueue.CommandFinishTask:
		p, ok := cmd.Payload.(api.FinishTaskPayload)
		if !ok {
			return payloadError(cmd)
		}
		_, err := w.engine.FinishTask(ctx, p.TaskID)
		return err

	case taskqueue.CommandCancelTask:
		p, ok := cmd.Payload.(api.CancelTaskPayload)
		if !ok {
			return payloadError(cmd)
		}
		return w.engine.CancelTask(ctx, p.TaskID)

	case taskqueue.CommandSendMessage:
		p, ok := cmd.Payload.(api.SendMessagePayload)
		if !ok {
			return payloadError(cmd)
		}
		_, err := w.engine.SendMessage(ctx, p.From, p.To, p.Content)
		return err

	default:
		// Unknown command; processed, but reported so it isn't silently dropped.
		return fmt.Errorf("%w: unknown command type %q", ErrInvalidPayload, cmd.Type)
	}
}

func (w *Worker) requeue(ctx context.Context, cmd taskqueue.Command) error {
	if w.cfg.Backoff > 0 {
		timer := time.NewTimer(w.cfg.Backoff)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return w.queue.Enqueue(ctx, cmd)
}

func payloadError(cmd *taskqueue.Command) error {
	return fmt.Errorf("%w: %s command carries %T", ErrInvalidPayload, cmd.Type, cmd.Payload)
}

func retryable(err error) bool {
	return !errors.Is(err, api.ErrNotFound) &&
		!errors.Is(err, api.ErrInvalidRequest) &&
		!errors.Is(err, ErrInvalidPayload)
}
