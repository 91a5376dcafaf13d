package engine

import (
	"context"

	"github.com/petrijr/socialflow/pkg/api"
)

// SendMessage stores a text message in a group and notifies every other
// member.
func (e *engineImpl) SendMessage(
	ctx context.Context, from api.UserID, to api.GroupID, content string,
) (api.MessageID, error) {
	group, err := e.GetGroup(ctx, to)
	if err != nil {
		return "", err
	}

	now := e.timestamp()
	msg := &api.Message{
		From:            from,
		To:              to,
		Type:            api.MessageText,
		Content:         content,
		CreateAt:        now,
		Readers:         []string{from},
		LastUpdatedTime: now,
	}
	if err := e.records.Save(ctx, msg); err != nil {
		return "", err
	}
	api.MarkIrreversible(ctx)
	if err := e.lists.Append(ctx, api.KindGroup, to, api.FieldMessages, msg.ID); err != nil {
		return "", err
	}

	for _, member := range group.Members {
		if member == from {
			continue
		}
		if _, err := e.Notify(ctx, from, member, content, api.EventSendMessage); err != nil {
			return msg.ID, err
		}
	}
	return msg.ID, nil
}

// ReadMessage appends reader to the message's readers.
func (e *engineImpl) ReadMessage(ctx context.Context, reader api.UserID, id api.MessageID) error {
	return e.lists.Append(ctx, api.KindMessage, id, api.FieldReaders, reader)
}

func (e *engineImpl) GetMessage(ctx context.Context, id api.MessageID) (*api.Message, error) {
	var m api.Message
	if err := e.records.Fetch(ctx, id, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
