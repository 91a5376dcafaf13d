package api

import (
	"context"
	"time"
)

// EventType selects which handler pair governs a Task.
type EventType string

const (
	EventSendMessage      EventType = "sendMessage"
	EventFriendInvitation EventType = "friendInvitation"
	EventGroupInvitation  EventType = "groupInvitation"
)

// KnownEventTypes lists the event types the engine ships with.
var KnownEventTypes = []EventType{EventSendMessage, EventFriendInvitation, EventGroupInvitation}

// HandlerFunc is invoked with the full task and the engine that owns it.
// The returned value is handed back to the caller of CreateTask/FinishTask.
type HandlerFunc func(ctx context.Context, eng Engine, task *Task) (any, error)

// EventHandlers is the handler pair registered for one event type. Either
// field may be nil.
type EventHandlers struct {
	Action HandlerFunc
	Finish HandlerFunc
}

// HandlerPhase names which handler of a pair ran.
type HandlerPhase string

const (
	PhaseAction HandlerPhase = "action"
	PhaseFinish HandlerPhase = "finish"
)

// HistoryType identifies a task history event.
type HistoryType string

const (
	HistoryTaskCreated      HistoryType = "task.created"
	HistoryTaskSkipped      HistoryType = "task.skipped"
	HistoryTaskFinished     HistoryType = "task.finished"
	HistoryTaskCancelled    HistoryType = "task.cancelled"
	HistoryHandlerFailed    HistoryType = "handler.failed"
	HistoryNotificationSent HistoryType = "notification.sent"
)

// HistoryEvent is a minimal append-only history record for audit/debugging.
// Skipped tasks have no TaskID; they are recorded under the initiator.
type HistoryEvent struct {
	Subject   string      `json:"subject" bson:"subject"`
	At        time.Time   `json:"at" bson:"at"`
	Type      HistoryType `json:"type" bson:"type"`
	EventType EventType   `json:"eventType" bson:"eventType"`

	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`

	// Small, human-oriented details (e.g. an error string).
	Detail string `json:"detail,omitempty" bson:"detail,omitempty"`
}
