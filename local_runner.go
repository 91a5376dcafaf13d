package socialflow

import (
	"context"
	"errors"
	"sync"

	"github.com/petrijr/socialflow/internal/taskqueue"
	"github.com/petrijr/socialflow/pkg/worker"
)

// LocalRunner bundles an in-memory Engine, an in-memory command queue, and a
// Worker to provide a simple "local runner" for development and debugging.
//
// Typical usage:
//
//	runner := socialflow.NewLocalRunner()
//
//	// Synchronous call (no queue/worker involved):
//	res, err := runner.Engine.FriendInvitation(ctx, alice, bob)
//
//	// Asynchronous call:
//	_ = runner.StartWorkers(ctx, 2)
//	_ = runner.FinishTaskAsync(ctx, taskID)
//	...
//	runner.Stop()
type LocalRunner struct {
	// Engine is the in-memory engine used by this runner.
	Engine Engine

	// Queue is the in-memory command queue used by the Worker.
	Queue taskqueue.Queue

	// Worker processes commands from Queue using Engine.
	Worker *worker.Worker

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewLocalRunner constructs a LocalRunner backed by an in-memory engine,
// in-memory queue, and a Worker with default config.
func NewLocalRunner() *LocalRunner {
	eng := NewInMemoryEngine()
	q := taskqueue.NewInMemoryQueue(1024)

	return &LocalRunner{
		Engine: eng,
		Queue:  q,
		Worker: worker.New(eng, q),
	}
}

// StartWorkers starts concurrency goroutines running Worker.Run until Stop
// cancels them.
//
// If StartWorkers is called more than once without Stop, it returns an error.
func (r *LocalRunner) StartWorkers(ctx context.Context, concurrency int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.New("socialflow: LocalRunner already started")
	}

	if concurrency <= 0 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true

	r.wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer r.wg.Done()
			_ = r.Worker.Run(ctx)
		}()
	}

	return nil
}

// Stop cancels all worker goroutines started by StartWorkers and waits
// for them to exit.
func (r *LocalRunner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// CreateTaskAsync enqueues a CreateTask call.
func (r *LocalRunner) CreateTaskAsync(ctx context.Context, req TaskRequest) error {
	return r.Worker.EnqueueCreateTask(ctx, req)
}

// FinishTaskAsync enqueues a FinishTask call.
func (r *LocalRunner) FinishTaskAsync(ctx context.Context, id string) error {
	return r.Worker.EnqueueFinishTask(ctx, id)
}

// CancelTaskAsync enqueues a CancelTask call.
func (r *LocalRunner) CancelTaskAsync(ctx context.Context, id string) error {
	return r.Worker.EnqueueCancelTask(ctx, id)
}

// SendMessageAsync enqueues a SendMessage call.
func (r *LocalRunner) SendMessageAsync(ctx context.Context, from, groupID, content string) error {
	return r.Worker.EnqueueSendMessage(ctx, from, groupID, content)
}
