package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the engine for logging and metrics.
//
// Implementations should be fast and non-blocking; CreateTask may call them
// from several goroutines at once.
type Observer interface {
	// OnTaskCreated is called after a task is persisted and linked to its
	// recipient, before its Action handler runs.
	OnTaskCreated(ctx context.Context, task *Task)

	// OnTaskSkipped is called when an open task with the same
	// (from, to, eventType) already exists.
	OnTaskSkipped(ctx context.Context, req TaskRequest, to string)

	// OnTaskFinished is called once a finished task has been deleted.
	OnTaskFinished(ctx context.Context, task *Task)

	// OnTaskCancelled is called once a cancelled task has been deleted.
	OnTaskCancelled(ctx context.Context, task *Task)

	// OnHandler is called after an Action or Finish handler returns, for both
	// successes and failures (err != nil).
	OnHandler(ctx context.Context, task *Task, phase HandlerPhase, err error, duration time.Duration)

	// OnNotificationSent is called after a notification is persisted.
	OnNotificationSent(ctx context.Context, n *Notification)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnTaskCreated(ctx context.Context, task *Task)                 {}
func (NoopObserver) OnTaskSkipped(ctx context.Context, req TaskRequest, to string) {}
func (NoopObserver) OnTaskFinished(ctx context.Context, task *Task)                {}
func (NoopObserver) OnTaskCancelled(ctx context.Context, task *Task)               {}
func (NoopObserver) OnNotificationSent(ctx context.Context, n *Notification)       {}
func (NoopObserver) OnHandler(ctx context.Context, task *Task, phase HandlerPhase, err error, d time.Duration) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnTaskCreated(ctx context.Context, task *Task) {
	for _, o := range c.observers {
		o.OnTaskCreated(ctx, task)
	}
}

func (c *CompositeObserver) OnTaskSkipped(ctx context.Context, req TaskRequest, to string) {
	for _, o := range c.observers {
		o.OnTaskSkipped(ctx, req, to)
	}
}

func (c *CompositeObserver) OnTaskFinished(ctx context.Context, task *Task) {
	for _, o := range c.observers {
		o.OnTaskFinished(ctx, task)
	}
}

func (c *CompositeObserver) OnTaskCancelled(ctx context.Context, task *Task) {
	for _, o := range c.observers {
		o.OnTaskCancelled(ctx, task)
	}
}

func (c *CompositeObserver) OnHandler(ctx context.Context, task *Task, phase HandlerPhase, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnHandler(ctx, task, phase, err, d)
	}
}

func (c *CompositeObserver) OnNotificationSent(ctx context.Context, n *Notification) {
	for _, o := range c.observers {
		o.OnNotificationSent(ctx, n)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs task lifecycle events
// using the provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnTaskCreated(ctx context.Context, task *Task) {
	o.Logger.InfoContext(ctx, "task_created",
		slog.String("task_id", task.ID),
		slog.String("event_type", string(task.EventType)),
		slog.String("from", task.From),
		slog.String("to", task.To),
	)
}

func (o *LoggingObserver) OnTaskSkipped(ctx context.Context, req TaskRequest, to string) {
	o.Logger.InfoContext(ctx, "task_skipped",
		slog.String("event_type", string(req.EventType)),
		slog.String("from", req.From),
		slog.String("to", to),
	)
}

func (o *LoggingObserver) OnTaskFinished(ctx context.Context, task *Task) {
	o.Logger.InfoContext(ctx, "task_finished",
		slog.String("task_id", task.ID),
		slog.String("event_type", string(task.EventType)),
	)
}

func (o *LoggingObserver) OnTaskCancelled(ctx context.Context, task *Task) {
	o.Logger.InfoContext(ctx, "task_cancelled",
		slog.String("task_id", task.ID),
		slog.String("event_type", string(task.EventType)),
	)
}

func (o *LoggingObserver) OnHandler(ctx context.Context, task *Task, phase HandlerPhase, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "handler_completed",
		slog.String("task_id", task.ID),
		slog.String("event_type", string(task.EventType)),
		slog.String("phase", string(phase)),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnNotificationSent(ctx context.Context, n *Notification) {
	o.Logger.DebugContext(ctx, "notification_sent",
		slog.String("notification_id", n.ID),
		slog.String("event_type", string(n.EventType)),
		slog.String("to", n.To),
	)
}

// BasicMetrics collects simple counters and aggregate handler durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	tasksCreated      atomic.Int64
	tasksSkipped      atomic.Int64
	tasksFinished     atomic.Int64
	tasksCancelled    atomic.Int64
	handlersFailed    atomic.Int64
	handlersCompleted atomic.Int64
	totalHandlerTime  atomic.Int64 // nanoseconds
	notificationsSent atomic.Int64
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	TasksCreated   int64
	TasksSkipped   int64
	TasksFinished  int64
	TasksCancelled int64
	OpenTasks      int64

	HandlersCompleted  int64
	HandlersFailed     int64
	AvgHandlerDuration time.Duration

	NotificationsSent int64
}

func (m *BasicMetrics) OnTaskCreated(ctx context.Context, task *Task) {
	m.tasksCreated.Add(1)
}

func (m *BasicMetrics) OnTaskSkipped(ctx context.Context, req TaskRequest, to string) {
	m.tasksSkipped.Add(1)
}

func (m *BasicMetrics) OnTaskFinished(ctx context.Context, task *Task) {
	m.tasksFinished.Add(1)
}

func (m *BasicMetrics) OnTaskCancelled(ctx context.Context, task *Task) {
	m.tasksCancelled.Add(1)
}

func (m *BasicMetrics) OnHandler(ctx context.Context, task *Task, phase HandlerPhase, err error, d time.Duration) {
	// Only successful handlers count towards the average duration.
	if err != nil {
		m.handlersFailed.Add(1)
		return
	}
	m.handlersCompleted.Add(1)
	m.totalHandlerTime.Add(d.Nanoseconds())
}

func (m *BasicMetrics) OnNotificationSent(ctx context.Context, n *Notification) {
	m.notificationsSent.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	created := m.tasksCreated.Load()
	finished := m.tasksFinished.Load()
	cancelled := m.tasksCancelled.Load()
	completed := m.handlersCompleted.Load()
	totalNs := m.totalHandlerTime.Load()

	var avg time.Duration
	if completed > 0 {
		avg = time.Duration(totalNs / completed)
	}

	return BasicMetricsSnapshot{
		TasksCreated:       created,
		TasksSkipped:       m.tasksSkipped.Load(),
		TasksFinished:      finished,
		TasksCancelled:     cancelled,
		OpenTasks:          created - finished - cancelled,
		HandlersCompleted:  completed,
		HandlersFailed:     m.handlersFailed.Load(),
		AvgHandlerDuration: avg,
		NotificationsSent:  m.notificationsSent.Load(),
	}
}
