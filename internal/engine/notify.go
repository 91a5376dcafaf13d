package engine

import (
	"context"

	"github.com/petrijr/socialflow/pkg/api"
)

// Notify persists a notification and appends its id to the recipient's
// notifications list.
func (e *engineImpl) Notify(
	ctx context.Context, from, to, content string, eventType api.EventType,
) (api.NotificationID, error) {
	n := &api.Notification{
		From:      from,
		To:        to,
		EventType: eventType,
		Content:   content,
		CreateAt:  e.timestamp(),
	}
	if err := e.records.Save(ctx, n); err != nil {
		return "", err
	}
	if err := e.lists.Append(ctx, api.KindUser, to, api.FieldNotifications, n.ID); err != nil {
		return "", err
	}

	e.observer.OnNotificationSent(ctx, n)
	e.record(ctx, api.HistoryEvent{
		Subject:   to,
		Type:      api.HistoryNotificationSent,
		EventType: eventType,
		From:      from,
		To:        to,
		Detail:    n.ID,
	})
	return n.ID, nil
}

func (e *engineImpl) PendingNotifications(ctx context.Context, userID api.UserID) ([]api.NotificationID, error) {
	u, err := e.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Notifications == nil {
		return []api.NotificationID{}, nil
	}
	return u.Notifications, nil
}

func (e *engineImpl) GetNotification(ctx context.Context, id api.NotificationID) (*api.Notification, error) {
	var n api.Notification
	if err := e.records.Fetch(ctx, id, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
