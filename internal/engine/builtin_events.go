package engine

import (
	"context"
	"fmt"

	"github.com/petrijr/socialflow/internal/persistence"
	"github.com/petrijr/socialflow/pkg/api"
)

// listsProvider exposes the engine's list writer to built-in handlers, which
// receive the engine only through the api.Engine interface.
type listsProvider interface {
	listWriter() persistence.Lists
}

func (e *engineImpl) listWriter() persistence.Lists {
	return e.lists
}

func registerBuiltinEvents(r *eventRegistry) {
	r.Register(api.EventFriendInvitation, api.EventHandlers{
		Action: notifyRecipient,
		Finish: finishFriendInvitation,
	})
	r.Register(api.EventGroupInvitation, api.EventHandlers{
		Action: notifyRecipient,
		Finish: finishGroupInvitation,
	})
}

// notifyRecipient tells the task's recipient about it and returns the task.
func notifyRecipient(ctx context.Context, eng api.Engine, task *api.Task) (any, error) {
	if _, err := eng.Notify(ctx, task.From, task.To, task.Content, task.EventType); err != nil {
		return nil, err
	}
	return task, nil
}

// finishFriendInvitation creates the direct group backing the friendship,
// links it from both users and tells the inviter. It returns the group id.
func finishFriendInvitation(ctx context.Context, eng api.Engine, task *api.Task) (any, error) {
	lists, err := listsOf(eng)
	if err != nil {
		return nil, err
	}

	groupID, err := eng.CreateDirectGroup(ctx, task.From, task.To)
	if err != nil {
		return nil, err
	}
	for _, userID := range []string{task.From, task.To} {
		if err := lists.Append(ctx, api.KindUser, userID, api.FieldFriends, groupID); err != nil {
			return nil, err
		}
	}

	content := fmt.Sprintf("%s accepted your friend invitation", task.To)
	if _, err := eng.Notify(ctx, task.To, trackingOwner(task), content, task.EventType); err != nil {
		return nil, err
	}
	return groupID, nil
}

// finishGroupInvitation adds the invitee to the group and tells the inviter.
func finishGroupInvitation(ctx context.Context, eng api.Engine, task *api.Task) (any, error) {
	lists, err := listsOf(eng)
	if err != nil {
		return nil, err
	}

	groupID, userID := task.From, task.To
	if err := lists.Append(ctx, api.KindUser, userID, api.FieldGroups, groupID); err != nil {
		return nil, err
	}
	if err := lists.Append(ctx, api.KindGroup, groupID, api.FieldMembers, userID); err != nil {
		return nil, err
	}

	content := fmt.Sprintf("%s joined group %s", userID, groupID)
	if _, err := eng.Notify(ctx, userID, trackingOwner(task), content, task.EventType); err != nil {
		return nil, err
	}
	return nil, nil
}

func listsOf(eng api.Engine) (persistence.Lists, error) {
	p, ok := eng.(listsProvider)
	if !ok {
		return persistence.Lists{}, fmt.Errorf("built-in handler needs the socialflow engine, got %T", eng)
	}
	return p.listWriter(), nil
}

func trackingOwner(task *api.Task) string {
	if task.Creator != "" {
		return task.Creator
	}
	return task.From
}
