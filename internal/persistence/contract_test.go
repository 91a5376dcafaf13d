package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/socialflow/pkg/api"
)

// runRecordStoreContract exercises the behaviour every RecordStore backend
// must share. Subtests use unique values so they can share one store.
func runRecordStoreContract(t *testing.T, store RecordStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("SaveAssignsIDAndFetchRoundTrips", func(t *testing.T) {
		u := &api.User{
			Name:     "Alice",
			Email:    uuid.NewString() + "@example.com",
			CreateAt: time.Now().UTC().Truncate(time.Millisecond),
			Friends:  []string{},
			Tasks:    []string{"t-1"},
		}
		require.NoError(t, store.Save(ctx, u))
		require.NotEmpty(t, u.ID)

		var got api.User
		require.NoError(t, store.Fetch(ctx, u.ID, &got))
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, u.Email, got.Email)
		assert.Equal(t, []string{"t-1"}, got.Tasks)
		assert.True(t, u.CreateAt.Equal(got.CreateAt))
	})

	t.Run("FetchMissingReturnsNotFound", func(t *testing.T) {
		var got api.Task
		err := store.Fetch(ctx, "missing-"+uuid.NewString(), &got)
		require.Error(t, err)
		assert.True(t, api.IsNotFound(err))

		var nf *api.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, api.KindTask, nf.Kind)
	})

	t.Run("SaveUpsertsExistingRecord", func(t *testing.T) {
		email := uuid.NewString() + "@example.com"
		u := &api.User{Name: "Bob", Email: email}
		require.NoError(t, store.Save(ctx, u))

		u.Name = "Robert"
		require.NoError(t, store.Save(ctx, u))

		var got api.User
		require.NoError(t, store.Fetch(ctx, u.ID, &got))
		assert.Equal(t, "Robert", got.Name)

		n, err := store.Count(ctx, api.KindUser, Where(api.FieldEmail, email))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("CountMatchesEveryCondition", func(t *testing.T) {
		from := "u-" + uuid.NewString()
		for _, to := range []string{"bob", "carol"} {
			task := &api.Task{From: from, To: to, EventType: api.EventFriendInvitation, Creator: from}
			require.NoError(t, store.Save(ctx, task))
		}
		other := &api.Task{From: from, To: "bob", EventType: api.EventGroupInvitation, Creator: from}
		require.NoError(t, store.Save(ctx, other))

		n, err := store.Count(ctx, api.KindTask, Where(api.FieldFrom, from))
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		n, err = store.Count(ctx, api.KindTask,
			Where(api.FieldFrom, from).And(api.FieldTo, "bob").And(api.FieldEventType, string(api.EventFriendInvitation)))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = store.Count(ctx, api.KindTask,
			Where(api.FieldFrom, from).And(api.FieldEventType, string(api.EventSendMessage)))
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("FirstFindsMatchingRecord", func(t *testing.T) {
		email := uuid.NewString() + "@example.com"
		u := &api.User{Name: "Dana", Email: email}
		require.NoError(t, store.Save(ctx, u))

		var got api.User
		found, err := store.First(ctx, Where(api.FieldEmail, email), &got)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, u.ID, got.ID)

		found, err = store.First(ctx, Where(api.FieldEmail, "nobody-"+email), &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("RemoveIsIdempotent", func(t *testing.T) {
		from := "u-" + uuid.NewString()
		task := &api.Task{From: from, To: "bob", EventType: api.EventFriendInvitation}
		require.NoError(t, store.Save(ctx, task))

		require.NoError(t, store.Remove(ctx, api.KindTask, task.ID))
		require.NoError(t, store.Remove(ctx, api.KindTask, task.ID))

		var got api.Task
		assert.True(t, api.IsNotFound(store.Fetch(ctx, task.ID, &got)))

		n, err := store.Count(ctx, api.KindTask, Where(api.FieldFrom, from))
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("UnsearchableFieldIsRejected", func(t *testing.T) {
		_, err := store.Count(ctx, api.KindUser, Where("name", "Alice"))
		assert.ErrorIs(t, err, ErrUnsearchableField)
	})

	t.Run("ListPushAndPull", func(t *testing.T) {
		u := &api.User{Name: "Eve", Email: uuid.NewString() + "@example.com"}
		require.NoError(t, store.Save(ctx, u))

		require.NoError(t, AppendToList(ctx, store, api.KindUser, u.ID, api.FieldTasks, "t1", "t2"))
		require.NoError(t, AppendToList(ctx, store, api.KindUser, u.ID, api.FieldTasks, "t3"))

		removed, err := RemoveFromList(ctx, store, api.KindUser, u.ID, api.FieldTasks, "t1")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = RemoveFromList(ctx, store, api.KindUser, u.ID, api.FieldTasks, "absent")
		require.NoError(t, err)
		assert.False(t, removed)

		var got api.User
		require.NoError(t, store.Fetch(ctx, u.ID, &got))
		assert.Equal(t, []string{"t2", "t3"}, got.Tasks)
		assert.False(t, got.LastUpdatedTime.IsZero())
	})

	t.Run("ListOnMissingRecordReturnsNotFound", func(t *testing.T) {
		err := AppendToList(ctx, store, api.KindGroup, "missing-"+uuid.NewString(), api.FieldMembers, "u1")
		assert.True(t, api.IsNotFound(err))

		_, err = RemoveFromList(ctx, store, api.KindGroup, "missing-"+uuid.NewString(), api.FieldMembers, "u1")
		assert.True(t, api.IsNotFound(err))
	})

	t.Run("UnknownListFieldIsAnError", func(t *testing.T) {
		g := &api.Group{Name: "g"}
		require.NoError(t, store.Save(ctx, g))
		err := AppendToList(ctx, store, api.KindGroup, g.ID, api.FieldFriends, "x")
		require.Error(t, err)
		assert.False(t, api.IsNotFound(err))
	})
}

// runEventStoreContract exercises the history store behaviour shared by all
// EventStore backends.
func runEventStoreContract(t *testing.T, store EventStore) {
	t.Helper()
	ctx := context.Background()

	subject := "task-" + uuid.NewString()
	events := []api.HistoryEvent{
		{Subject: subject, Type: api.HistoryTaskCreated, EventType: api.EventFriendInvitation, From: "alice", To: "bob"},
		{Subject: subject, Type: api.HistoryHandlerFailed, EventType: api.EventFriendInvitation, Detail: "boom"},
		{Subject: subject, Type: api.HistoryTaskFinished, EventType: api.EventFriendInvitation},
	}
	for _, ev := range events {
		require.NoError(t, store.AppendEvent(ctx, ev))
	}
	require.NoError(t, store.AppendEvent(ctx, api.HistoryEvent{Subject: "other-" + subject, Type: api.HistoryTaskCreated}))

	got, err := store.ListEvents(ctx, subject)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, ev := range events {
		assert.Equal(t, ev.Type, got[i].Type)
		assert.Equal(t, ev.Subject, got[i].Subject)
	}
	assert.Equal(t, "alice", got[0].From)
	assert.Equal(t, "bob", got[0].To)
	assert.Equal(t, "boom", got[1].Detail)

	none, err := store.ListEvents(ctx, "nothing-"+subject)
	require.NoError(t, err)
	assert.Empty(t, none)
}
