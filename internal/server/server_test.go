package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/socialflow/internal/engine"
	"github.com/petrijr/socialflow/internal/server"
	"github.com/petrijr/socialflow/internal/taskqueue"
	"github.com/petrijr/socialflow/pkg/api"
	"github.com/petrijr/socialflow/pkg/worker"
)

type testServerEnv struct {
	engine api.Engine
	queue  *taskqueue.InMemoryQueue
	worker *worker.Worker
	router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
}

func testServer(t *testing.T, withWorker bool) *testServerEnv {
	t.Helper()
	env := &testServerEnv{engine: engine.NewInMemoryEngine()}
	if withWorker {
		env.queue = taskqueue.NewInMemoryQueue(16)
		env.worker = worker.New(env.engine, env.queue)
	}
	env.router = server.NewServer(env.engine, env.worker, nil).SetupRoutes()
	return env
}

func (env *testServerEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testServerEnv) createUser(t *testing.T, name string) string {
	t.Helper()
	w := env.do(t, "POST", "/users", map[string]string{"name": name, "email": name + "@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res server.IDResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.ID)
	return res.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthEndpoint(t *testing.T) {
	env := testServer(t, false)
	w := env.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateUser(t *testing.T) {
	env := testServer(t, false)
	id := env.createUser(t, "alice")

	w := env.do(t, "GET", "/users/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	u := decode[api.User](t, w)
	assert.Equal(t, "alice@example.com", u.Email)

	w = env.do(t, "POST", "/users", map[string]string{"name": "copy", "email": "alice@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, "POST", "/users", map[string]string{"name": "nobody"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMissingRecords(t *testing.T) {
	env := testServer(t, false)

	for _, path := range []string{"/users/nope", "/groups/nope", "/tasks/nope", "/notifications/nope", "/messages/nope"} {
		w := env.do(t, "GET", path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		res := decode[server.ErrorResponse](t, w)
		assert.Equal(t, http.StatusNotFound, res.Status)
	}

	w := env.do(t, "POST", "/tasks/nope/finish", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFriendInvitationFlow(t *testing.T) {
	env := testServer(t, false)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	w := env.do(t, "POST", "/users/"+alice+"/friends", map[string]string{"to": bob})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Results []api.Task `json:"results"`
	}](t, w)
	require.Len(t, created.Results, 1)
	taskID := created.Results[0].ID

	// Duplicate while open yields an empty result list.
	w = env.do(t, "POST", "/users/"+alice+"/friends", map[string]string{"to": bob})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"results":[]}`, w.Body.String())

	w = env.do(t, "GET", "/users/"+bob+"/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	notes := decode[struct {
		Notifications []string `json:"notifications"`
	}](t, w)
	assert.Len(t, notes.Notifications, 1)

	w = env.do(t, "POST", "/tasks/"+taskID+"/finish", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	finished := decode[server.ResultResponse](t, w)
	groupID, ok := finished.Result.(string)
	require.True(t, ok)

	w = env.do(t, "GET", "/groups/"+groupID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	g := decode[api.Group](t, w)
	assert.ElementsMatch(t, []string{alice, bob}, g.Members)
	assert.True(t, g.IsDirect)

	w = env.do(t, "GET", "/history/"+taskID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[struct {
		Events []api.HistoryEvent `json:"events"`
	}](t, w)
	require.Len(t, history.Events, 2)
	assert.Equal(t, api.HistoryTaskCreated, history.Events[0].Type)
	assert.Equal(t, api.HistoryTaskFinished, history.Events[1].Type)
}

func TestGroupAndMessages(t *testing.T) {
	env := testServer(t, false)
	owner := env.createUser(t, "owner")
	guest := env.createUser(t, "guest")

	w := env.do(t, "POST", "/groups", map[string]any{"name": "crew", "creator": owner, "invited": []string{guest}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	groupID := decode[server.IDResponse](t, w).ID

	w = env.do(t, "POST", "/groups/"+groupID+"/messages", map[string]string{"from": owner, "content": "welcome"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	msgID := decode[server.IDResponse](t, w).ID

	w = env.do(t, "POST", "/messages/"+msgID+"/read", map[string]string{"reader": guest})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, "GET", "/messages/"+msgID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	msg := decode[api.Message](t, w)
	assert.Equal(t, []string{owner, guest}, msg.Readers)

	w = env.do(t, "POST", "/groups/"+groupID+"/invitations", map[string]any{"inviter": owner})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"results":[]}`, w.Body.String())
}

func TestCreateAndCancelTask(t *testing.T) {
	env := testServer(t, false)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	w := env.do(t, "POST", "/tasks", map[string]any{"from": alice, "to": []string{bob}, "eventType": "friendInvitation"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Results []api.Task `json:"results"`
	}](t, w)
	require.Len(t, created.Results, 1)

	w = env.do(t, "POST", "/tasks/"+created.Results[0].ID+"/cancel", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	u, err := env.engine.GetUser(context.Background(), bob)
	require.NoError(t, err)
	assert.Empty(t, u.Tasks)
	assert.Empty(t, u.Friends)

	w = env.do(t, "POST", "/tasks", map[string]any{"from": alice, "to": []string{}, "eventType": "friendInvitation"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAsyncRoutes(t *testing.T) {
	t.Run("without_worker", func(t *testing.T) {
		env := testServer(t, false)
		w := env.do(t, "POST", "/tasks/x/finish?async=true", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("with_worker", func(t *testing.T) {
		env := testServer(t, true)
		alice := env.createUser(t, "alice")
		bob := env.createUser(t, "bob")

		w := env.do(t, "POST", "/users/"+alice+"/friends?async=true", map[string]string{"to": bob})
		require.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, 1, env.queue.Len())

		processed, err := env.worker.ProcessOne(context.Background())
		require.NoError(t, err)
		require.True(t, processed)

		u, err := env.engine.GetUser(context.Background(), bob)
		require.NoError(t, err)
		require.Len(t, u.Tasks, 1)

		w = env.do(t, "POST", "/tasks/"+u.Tasks[0]+"/cancel?async=true", nil)
		require.Equal(t, http.StatusAccepted, w.Code)
		_, err = env.worker.ProcessOne(context.Background())
		require.NoError(t, err)

		_, err = env.engine.GetTask(context.Background(), u.Tasks[0])
		assert.True(t, api.IsNotFound(err))
	})
}

func TestNotifyEndpoint(t *testing.T) {
	env := testServer(t, false)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	w := env.do(t, "POST", "/notifications", map[string]string{
		"from": alice, "to": bob, "content": "ping", "eventType": "sendMessage",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[server.IDResponse](t, w).ID

	w = env.do(t, "GET", "/notifications/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	n := decode[api.Notification](t, w)
	assert.Equal(t, bob, n.To)
	assert.Equal(t, "ping", n.Content)
}
