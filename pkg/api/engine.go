package api

import "context"

// TaskRequest describes a CreateTask call. To holds one or many recipients.
// Creator defaults to From; Content defaults to "".
type TaskRequest struct {
	From      string
	To        []string
	EventType EventType
	Creator   string
	Content   string
}

// NewUser describes a CreateUser call.
type NewUser struct {
	Name   string
	Email  string
	Avatar string
}

// Engine is the high-level engine API. Every method is a request-driven unit
// of work; the engine runs no background loop of its own.
type Engine interface {
	// RegisterEvent installs or replaces the handler pair for eventType.
	RegisterEvent(eventType EventType, handlers EventHandlers)

	// UnregisterEvent removes the handler pair for eventType, if any.
	UnregisterEvent(eventType EventType)

	// CreateTask persists one task per recipient, skipping recipients that
	// already have an open task with the same (from, to, eventType). It
	// returns the Action handler results of the created tasks, in recipient
	// order. Skipped recipients contribute no entry.
	CreateTask(ctx context.Context, req TaskRequest) ([]any, error)

	// FinishTask runs the Finish handler, clears the task's cross-references
	// and deletes it. The result is nil when no Finish handler is registered.
	FinishTask(ctx context.Context, id TaskID) (any, error)

	// CancelTask clears the task's cross-references and deletes it without
	// running any handler.
	CancelTask(ctx context.Context, id TaskID) error

	// Notify persists a notification and appends it to the recipient's list.
	Notify(ctx context.Context, from, to, content string, eventType EventType) (NotificationID, error)

	CreateUser(ctx context.Context, u NewUser) (UserID, error)
	CreateGroup(ctx context.Context, name string, creator UserID, avatar string, invited []UserID) (GroupID, error)
	CreateDirectGroup(ctx context.Context, user1, user2 UserID) (GroupID, error)
	GroupInvitation(ctx context.Context, inviter UserID, groupID GroupID, invited []UserID) ([]any, error)
	FriendInvitation(ctx context.Context, from, to UserID) ([]any, error)

	SendMessage(ctx context.Context, from UserID, to GroupID, content string) (MessageID, error)
	ReadMessage(ctx context.Context, reader UserID, id MessageID) error
	PendingNotifications(ctx context.Context, userID UserID) ([]NotificationID, error)

	GetUser(ctx context.Context, id UserID) (*User, error)
	GetGroup(ctx context.Context, id GroupID) (*Group, error)
	GetTask(ctx context.Context, id TaskID) (*Task, error)
	GetNotification(ctx context.Context, id NotificationID) (*Notification, error)
	GetMessage(ctx context.Context, id MessageID) (*Message, error)

	// TaskHistory returns the recorded history events for subject, which is a
	// task id (or, for skipped tasks, the initiator id).
	TaskHistory(ctx context.Context, subject string) ([]HistoryEvent, error)
}
