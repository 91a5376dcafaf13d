package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

//
// Helpers
//

// testObserver is a simple Observer implementation used to verify fan-out behavior.
type testObserver struct {
	mu sync.Mutex

	created       int
	skipped       int
	finished      int
	cancelled     int
	handlers      int
	notifications int

	lastTask    *Task
	lastSkipTo  string
	lastHandler struct {
		Phase    HandlerPhase
		Err      error
		Duration time.Duration
	}
}

func (o *testObserver) OnTaskCreated(ctx context.Context, task *Task) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.created++
	o.lastTask = task
}

func (o *testObserver) OnTaskSkipped(ctx context.Context, req TaskRequest, to string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.skipped++
	o.lastSkipTo = to
}

func (o *testObserver) OnTaskFinished(ctx context.Context, task *Task) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished++
	o.lastTask = task
}

func (o *testObserver) OnTaskCancelled(ctx context.Context, task *Task) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelled++
	o.lastTask = task
}

func (o *testObserver) OnHandler(ctx context.Context, task *Task, phase HandlerPhase, err error, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handlers++
	o.lastHandler.Phase = phase
	o.lastHandler.Err = err
	o.lastHandler.Duration = d
}

func (o *testObserver) OnNotificationSent(ctx context.Context, n *Notification) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notifications++
}

// recordingHandler is a minimal slog.Handler that just records log records.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *recordingHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *recordingHandler) WithGroup(name string) slog.Handler {
	return h
}

func attrsToMap(r slog.Record) map[string]any {
	m := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value.Any()
		return true
	})
	return m
}

func newTestTask() *Task {
	return &Task{
		ID:        "task-123",
		From:      "alice",
		To:        "bob",
		EventType: EventFriendInvitation,
		Creator:   "alice",
	}
}

//
// NoopObserver
//

func TestNoopObserver_DoesNotPanic(t *testing.T) {
	ctx := context.Background()
	task := newTestTask()
	var o Observer = NoopObserver{}

	o.OnTaskCreated(ctx, task)
	o.OnTaskSkipped(ctx, TaskRequest{From: "alice"}, "bob")
	o.OnTaskFinished(ctx, task)
	o.OnTaskCancelled(ctx, task)
	o.OnHandler(ctx, task, PhaseAction, errors.New("boom"), time.Second)
	o.OnNotificationSent(ctx, &Notification{ID: "n1"})
}

//
// CompositeObserver
//

func TestNewCompositeObserver_EmptyReturnsNoop(t *testing.T) {
	o := NewCompositeObserver()
	if _, ok := o.(NoopObserver); !ok {
		t.Fatalf("expected NewCompositeObserver() to return NoopObserver, got %T", o)
	}
}

func TestNewCompositeObserver_SingleReturnsThatObserver(t *testing.T) {
	single := &testObserver{}
	o := NewCompositeObserver(single, nil)

	if got, ok := o.(*testObserver); !ok || got != single {
		t.Fatalf("expected the single non-nil observer to be returned, got %T (%p)", o, o)
	}
}

func TestCompositeObserver_ForwardsAllEvents(t *testing.T) {
	ctx := context.Background()
	task := newTestTask()

	o1 := &testObserver{}
	o2 := &testObserver{}
	co, ok := NewCompositeObserver(o1, o2).(*CompositeObserver)
	if !ok {
		t.Fatalf("expected *CompositeObserver")
	}

	err := errors.New("handler failed")
	co.OnTaskCreated(ctx, task)
	co.OnTaskSkipped(ctx, TaskRequest{From: "alice"}, "carol")
	co.OnTaskFinished(ctx, task)
	co.OnTaskCancelled(ctx, task)
	co.OnHandler(ctx, task, PhaseFinish, err, 2*time.Second)
	co.OnNotificationSent(ctx, &Notification{ID: "n1"})

	for i, o := range []*testObserver{o1, o2} {
		if o.created != 1 || o.skipped != 1 || o.finished != 1 || o.cancelled != 1 || o.handlers != 1 || o.notifications != 1 {
			t.Fatalf("observer %d did not receive all calls: %+v", i+1, o)
		}
		if o.lastTask != task {
			t.Fatalf("observer %d task mismatch", i+1)
		}
		if o.lastSkipTo != "carol" {
			t.Fatalf("observer %d skip recipient = %q, want carol", i+1, o.lastSkipTo)
		}
		if o.lastHandler.Phase != PhaseFinish || o.lastHandler.Err != err || o.lastHandler.Duration != 2*time.Second {
			t.Fatalf("observer %d handler mismatch: %+v", i+1, o.lastHandler)
		}
	}
}

//
// LoggingObserver
//

func TestNewLoggingObserver_NilLoggerUsesDefault(t *testing.T) {
	o := NewLoggingObserver(nil)
	lo, ok := o.(*LoggingObserver)
	if !ok {
		t.Fatalf("expected *LoggingObserver, got %T", o)
	}
	if lo.Logger == nil {
		t.Fatalf("expected non-nil Logger when created with nil")
	}
}

func TestLoggingObserver_OnTaskCreated_EmitsInfoLog(t *testing.T) {
	ctx := context.Background()
	task := newTestTask()

	h := &recordingHandler{}
	o := NewLoggingObserver(slog.New(h))

	o.OnTaskCreated(ctx, task)

	if len(h.records) != 1 {
		t.Fatalf("expected 1 log record, got %d", len(h.records))
	}

	rec := h.records[0]
	if rec.Level != slog.LevelInfo {
		t.Fatalf("expected LevelInfo, got %v", rec.Level)
	}
	if rec.Message != "task_created" {
		t.Fatalf("expected message task_created, got %q", rec.Message)
	}

	attrs := attrsToMap(rec)
	if attrs["task_id"] != task.ID {
		t.Fatalf("expected task_id=%q, got %v", task.ID, attrs["task_id"])
	}
	if attrs["event_type"] != string(EventFriendInvitation) {
		t.Fatalf("expected event_type=%q, got %v", EventFriendInvitation, attrs["event_type"])
	}
}

func TestLoggingObserver_OnHandler_LevelDependsOnError(t *testing.T) {
	ctx := context.Background()
	task := newTestTask()

	h := &recordingHandler{}
	o := NewLoggingObserver(slog.New(h))

	o.OnHandler(ctx, task, PhaseAction, nil, time.Second)
	o.OnHandler(ctx, task, PhaseFinish, errors.New("boom"), 2*time.Second)

	if len(h.records) != 2 {
		t.Fatalf("expected 2 log records, got %d", len(h.records))
	}

	successRec := h.records[0]
	failRec := h.records[1]

	if successRec.Level != slog.LevelDebug {
		t.Fatalf("expected success record LevelDebug, got %v", successRec.Level)
	}
	if failRec.Level != slog.LevelError {
		t.Fatalf("expected failure record LevelError, got %v", failRec.Level)
	}

	attrs := attrsToMap(failRec)
	if attrs["phase"] != string(PhaseFinish) {
		t.Fatalf("expected phase=finish, got %v", attrs["phase"])
	}
	if attrs["error"] == nil {
		t.Fatalf("expected error attribute on failure record, got nil")
	}
}

//
// BasicMetrics
//

func TestBasicMetrics_TaskCountersAndSnapshot(t *testing.T) {
	var m BasicMetrics

	ctx := context.Background()
	task := newTestTask()

	// 3 created, 1 finished, 1 cancelled -> open = 1
	m.OnTaskCreated(ctx, task)
	m.OnTaskCreated(ctx, task)
	m.OnTaskCreated(ctx, task)
	m.OnTaskSkipped(ctx, TaskRequest{}, "bob")
	m.OnTaskFinished(ctx, task)
	m.OnTaskCancelled(ctx, task)
	m.OnNotificationSent(ctx, &Notification{})

	snap := m.Snapshot()

	if snap.TasksCreated != 3 {
		t.Fatalf("TasksCreated=%d, want 3", snap.TasksCreated)
	}
	if snap.TasksSkipped != 1 {
		t.Fatalf("TasksSkipped=%d, want 1", snap.TasksSkipped)
	}
	if snap.OpenTasks != 1 {
		t.Fatalf("OpenTasks=%d, want 1", snap.OpenTasks)
	}
	if snap.NotificationsSent != 1 {
		t.Fatalf("NotificationsSent=%d, want 1", snap.NotificationsSent)
	}
	if snap.HandlersCompleted != 0 || snap.AvgHandlerDuration != 0 {
		t.Fatalf("expected no handler metrics, got %+v", snap)
	}
}

func TestBasicMetrics_OnHandler_SuccessOnlyCountsDuration(t *testing.T) {
	var m BasicMetrics
	ctx := context.Background()
	task := newTestTask()

	m.OnHandler(ctx, task, PhaseAction, nil, 1*time.Second)
	m.OnHandler(ctx, task, PhaseFinish, nil, 3*time.Second)
	m.OnHandler(ctx, task, PhaseFinish, errors.New("fail"), 10*time.Second)

	snap := m.Snapshot()

	if snap.HandlersCompleted != 2 {
		t.Fatalf("HandlersCompleted=%d, want 2", snap.HandlersCompleted)
	}
	if snap.HandlersFailed != 1 {
		t.Fatalf("HandlersFailed=%d, want 1", snap.HandlersFailed)
	}
	if want := 2 * time.Second; snap.AvgHandlerDuration != want {
		t.Fatalf("AvgHandlerDuration=%v, want %v", snap.AvgHandlerDuration, want)
	}
}

func TestNotFoundError_UnwrapsToSentinel(t *testing.T) {
	err := NewNotFoundError(KindTask, "t1")
	if !IsNotFound(err) {
		t.Fatalf("expected IsNotFound to report true for %v", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Kind != KindTask || nf.ID != "t1" {
		t.Fatalf("unexpected NotFoundError: %#v", nf)
	}
}
