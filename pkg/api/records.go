package api

import "time"

type (
	UserID         = string
	GroupID        = string
	TaskID         = string
	NotificationID = string
	MessageID      = string
)

// Kind identifies a record kind in the record store.
type Kind string

const (
	KindUser         Kind = "user"
	KindGroup        Kind = "group"
	KindTask         Kind = "task"
	KindNotification Kind = "notification"
	KindMessage      Kind = "message"
)

// Kinds lists every record kind a store must support.
var Kinds = []Kind{KindUser, KindGroup, KindTask, KindNotification, KindMessage}

// SystemCreator is the creator recorded on groups the engine creates itself.
const SystemCreator = "system"

// Record is implemented by every persisted record type.
type Record interface {
	Kind() Kind
	RecordID() string
	SetRecordID(id string)

	// SearchFields returns the scalar fields usable in equality searches,
	// keyed by their encoded field name.
	SearchFields() map[string]string

	// ListField returns a pointer to the identifier list stored under name.
	ListField(name string) (*[]string, bool)

	// Touch records a modification time, for record kinds that track one.
	Touch(now time.Time)
}

// Field names used for list mutation and searching.
const (
	FieldFriends       = "friends"
	FieldGroups        = "groups"
	FieldNotifications = "notifications"
	FieldTasks         = "tasks"
	FieldTracking      = "tracking"
	FieldMembers       = "members"
	FieldMessages      = "messages"
	FieldReaders       = "readers"

	FieldEmail     = "email"
	FieldFrom      = "from"
	FieldTo        = "to"
	FieldEventType = "eventType"
	FieldCreator   = "creator"
)

// User is the identity projection the engine maintains cross-references on.
type User struct {
	ID              string    `json:"id" bson:"_id"`
	Name            string    `json:"name" bson:"name"`
	Email           string    `json:"email" bson:"email"`
	Avatar          string    `json:"avatar" bson:"avatar"`
	CreateAt        time.Time `json:"createAt" bson:"createAt"`
	Friends         []string  `json:"friends" bson:"friends"`
	Groups          []string  `json:"groups" bson:"groups"`
	Notifications   []string  `json:"notifications" bson:"notifications"`
	Tasks           []string  `json:"tasks" bson:"tasks"`
	Tracking        []string  `json:"tracking" bson:"tracking"`
	IsOnline        bool      `json:"isOnline" bson:"isOnline"`
	LastUpdatedTime time.Time `json:"lastUpdatedTime" bson:"lastUpdatedTime"`
}

func (u *User) Kind() Kind            { return KindUser }
func (u *User) RecordID() string      { return u.ID }
func (u *User) SetRecordID(id string) { u.ID = id }
func (u *User) Touch(now time.Time)   { u.LastUpdatedTime = now }
func (u *User) SearchFields() map[string]string {
	return map[string]string{FieldEmail: u.Email}
}

func (u *User) ListField(name string) (*[]string, bool) {
	switch name {
	case FieldFriends:
		return &u.Friends, true
	case FieldGroups:
		return &u.Groups, true
	case FieldNotifications:
		return &u.Notifications, true
	case FieldTasks:
		return &u.Tasks, true
	case FieldTracking:
		return &u.Tracking, true
	}
	return nil, false
}

// Group is either a user-created group or a two-party direct group backing a
// friendship (IsDirect, Creator == SystemCreator).
type Group struct {
	ID              string    `json:"id" bson:"_id"`
	Name            string    `json:"name" bson:"name"`
	Creator         string    `json:"creator" bson:"creator"`
	Avatar          string    `json:"avatar" bson:"avatar"`
	CreateAt        time.Time `json:"createAt" bson:"createAt"`
	Members         []string  `json:"members" bson:"members"`
	Messages        []string  `json:"messages" bson:"messages"`
	IsDirect        bool      `json:"isDirect" bson:"isDirect"`
	LastUpdatedTime time.Time `json:"lastUpdatedTime" bson:"lastUpdatedTime"`
}

func (g *Group) Kind() Kind            { return KindGroup }
func (g *Group) RecordID() string      { return g.ID }
func (g *Group) SetRecordID(id string) { g.ID = id }
func (g *Group) Touch(now time.Time)   { g.LastUpdatedTime = now }
func (g *Group) SearchFields() map[string]string {
	return map[string]string{FieldCreator: g.Creator}
}

func (g *Group) ListField(name string) (*[]string, bool) {
	switch name {
	case FieldMembers:
		return &g.Members, true
	case FieldMessages:
		return &g.Messages, true
	}
	return nil, false
}

// Task is one pending workflow unit. From is a UserID or, for group
// invitations, a GroupID. Creator is the user who caused the task and the
// owner of its tracking entry.
type Task struct {
	ID              string    `json:"id" bson:"_id"`
	From            string    `json:"from" bson:"from"`
	To              string    `json:"to" bson:"to"`
	EventType       EventType `json:"eventType" bson:"eventType"`
	Creator         string    `json:"creator" bson:"creator"`
	Content         string    `json:"content" bson:"content"`
	CreateAt        time.Time `json:"createAt" bson:"createAt"`
	LastUpdatedTime time.Time `json:"lastUpdatedTime" bson:"lastUpdatedTime"`
}

func (t *Task) Kind() Kind            { return KindTask }
func (t *Task) RecordID() string      { return t.ID }
func (t *Task) SetRecordID(id string) { t.ID = id }
func (t *Task) Touch(now time.Time)   { t.LastUpdatedTime = now }
func (t *Task) SearchFields() map[string]string {
	return map[string]string{
		FieldFrom:      t.From,
		FieldTo:        t.To,
		FieldEventType: string(t.EventType),
		FieldCreator:   t.Creator,
	}
}

func (t *Task) ListField(string) (*[]string, bool) { return nil, false }

// Notification is immutable once created.
type Notification struct {
	ID        string    `json:"id" bson:"_id"`
	From      string    `json:"from" bson:"from"`
	To        string    `json:"to" bson:"to"`
	EventType EventType `json:"eventType" bson:"eventType"`
	Content   string    `json:"content" bson:"content"`
	CreateAt  time.Time `json:"createAt" bson:"createAt"`
}

func (n *Notification) Kind() Kind            { return KindNotification }
func (n *Notification) RecordID() string      { return n.ID }
func (n *Notification) SetRecordID(id string) { n.ID = id }
func (n *Notification) Touch(time.Time)       {}
func (n *Notification) SearchFields() map[string]string {
	return map[string]string{
		FieldFrom:      n.From,
		FieldTo:        n.To,
		FieldEventType: string(n.EventType),
	}
}

func (n *Notification) ListField(string) (*[]string, bool) { return nil, false }

// MessageType tags message content.
type MessageType string

const (
	MessageText    MessageType = "text"
	MessageImage   MessageType = "image"
	MessageVideo   MessageType = "video"
	MessageSound   MessageType = "sound"
	MessageSticker MessageType = "sticker"
	MessageGIF     MessageType = "gif"
)

// Message is a group message. Readers starts with the sender.
type Message struct {
	ID              string      `json:"id" bson:"_id"`
	From            string      `json:"from" bson:"from"`
	To              string      `json:"to" bson:"to"`
	Type            MessageType `json:"type" bson:"type"`
	Content         string      `json:"content" bson:"content"`
	CreateAt        time.Time   `json:"createAt" bson:"createAt"`
	Readers         []string    `json:"readers" bson:"readers"`
	LastUpdatedTime time.Time   `json:"lastUpdatedTime" bson:"lastUpdatedTime"`
}

func (m *Message) Kind() Kind            { return KindMessage }
func (m *Message) RecordID() string      { return m.ID }
func (m *Message) SetRecordID(id string) { m.ID = id }
func (m *Message) Touch(now time.Time)   { m.LastUpdatedTime = now }
func (m *Message) SearchFields() map[string]string {
	return map[string]string{FieldFrom: m.From, FieldTo: m.To}
}

func (m *Message) ListField(name string) (*[]string, bool) {
	if name == FieldReaders {
		return &m.Readers, true
	}
	return nil, false
}

// NewRecord returns an empty record of the given kind.
func NewRecord(kind Kind) (Record, bool) {
	switch kind {
	case KindUser:
		return &User{}, true
	case KindGroup:
		return &Group{}, true
	case KindTask:
		return &Task{}, true
	case KindNotification:
		return &Notification{}, true
	case KindMessage:
		return &Message{}, true
	}
	return nil, false
}
