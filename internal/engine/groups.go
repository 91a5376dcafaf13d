package engine

import (
	"context"
	"fmt"

	"github.com/petrijr/socialflow/pkg/api"
)

// CreateDirectGroup persists a two-member system group. Calling it twice for
// the same pair creates two groups.
func (e *engineImpl) CreateDirectGroup(ctx context.Context, user1, user2 api.UserID) (api.GroupID, error) {
	now := e.timestamp()
	g := &api.Group{
		Creator:         api.SystemCreator,
		CreateAt:        now,
		Members:         []string{user1, user2},
		Messages:        []string{},
		IsDirect:        true,
		LastUpdatedTime: now,
	}
	if err := e.records.Save(ctx, g); err != nil {
		return "", err
	}
	return g.ID, nil
}

// CreateGroup persists a group owned by creator, links it from the
// creator's groups and invites everyone in invited.
func (e *engineImpl) CreateGroup(
	ctx context.Context, name string, creator api.UserID, avatar string, invited []api.UserID,
) (api.GroupID, error) {
	if creator == "" {
		return "", fmt.Errorf("%w: group requires a creator", api.ErrInvalidRequest)
	}
	now := e.timestamp()
	g := &api.Group{
		Name:            name,
		Creator:         creator,
		Avatar:          avatar,
		CreateAt:        now,
		Members:         []string{creator},
		Messages:        []string{},
		LastUpdatedTime: now,
	}
	if err := e.records.Save(ctx, g); err != nil {
		return "", err
	}
	if err := e.lists.Append(ctx, api.KindUser, creator, api.FieldGroups, g.ID); err != nil {
		return "", err
	}
	if _, err := e.GroupInvitation(ctx, creator, g.ID, invited); err != nil {
		return g.ID, err
	}
	return g.ID, nil
}

// GroupInvitation creates one groupInvitation task per invitee, tracked by
// inviter. An empty invitee list is a no-op.
func (e *engineImpl) GroupInvitation(
	ctx context.Context, inviter api.UserID, groupID api.GroupID, invited []api.UserID,
) ([]any, error) {
	if len(invited) == 0 {
		return nil, nil
	}
	return e.CreateTask(ctx, api.TaskRequest{
		From:      groupID,
		To:        invited,
		EventType: api.EventGroupInvitation,
		Creator:   inviter,
		Content:   fmt.Sprintf("%s invited you to join group %s", inviter, groupID),
	})
}

// FriendInvitation creates a friendInvitation task from one user to another.
func (e *engineImpl) FriendInvitation(ctx context.Context, from, to api.UserID) ([]any, error) {
	return e.CreateTask(ctx, api.TaskRequest{
		From:      from,
		To:        []string{to},
		EventType: api.EventFriendInvitation,
		Content:   fmt.Sprintf("friend invitation from %s", from),
	})
}

func (e *engineImpl) GetGroup(ctx context.Context, id api.GroupID) (*api.Group, error) {
	var g api.Group
	if err := e.records.Fetch(ctx, id, &g); err != nil {
		return nil, err
	}
	return &g, nil
}
