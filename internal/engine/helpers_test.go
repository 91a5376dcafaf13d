package engine

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/petrijr/socialflow/internal/persistence"
	"github.com/petrijr/socialflow/pkg/api"
)

type testEnv struct {
	eng     api.Engine
	p       persistence.Persistence
	metrics *api.BasicMetrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, persistence.NewInMemory())
}

func newTestEnvWith(t *testing.T, p persistence.Persistence) *testEnv {
	t.Helper()
	metrics := &api.BasicMetrics{}
	eng := NewEngineWithConfig(Config{
		Persistence: p,
		Observer:    metrics,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &testEnv{eng: eng, p: p, metrics: metrics}
}

func (env *testEnv) mustCreateUser(t *testing.T, name string) string {
	t.Helper()
	id, err := env.eng.CreateUser(context.Background(), api.NewUser{
		Name:  name,
		Email: name + "@example.com",
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return id
}

func (env *testEnv) mustGetUser(t *testing.T, id string) *api.User {
	t.Helper()
	u, err := env.eng.GetUser(context.Background(), id)
	if err != nil {
		t.Fatalf("GetUser(%s) failed: %v", id, err)
	}
	return u
}

func (env *testEnv) mustGetGroup(t *testing.T, id string) *api.Group {
	t.Helper()
	g, err := env.eng.GetGroup(context.Background(), id)
	if err != nil {
		t.Fatalf("GetGroup(%s) failed: %v", id, err)
	}
	return g
}

func (env *testEnv) countTasks(t *testing.T, q persistence.Query) int {
	t.Helper()
	n, err := env.p.Records.Count(context.Background(), api.KindTask, q)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	return n
}

// taskIDsFrom extracts task ids from Action results of the built-in
// handlers, which return the created task.
func taskIDsFrom(t *testing.T, results []any) []string {
	t.Helper()
	ids := make([]string, 0, len(results))
	for i, r := range results {
		task, ok := r.(*api.Task)
		if !ok {
			t.Fatalf("result %d: expected *api.Task, got %T", i, r)
		}
		ids = append(ids, task.ID)
	}
	return ids
}

func assertContains(t *testing.T, list []string, id, what string) {
	t.Helper()
	if !slices.Contains(list, id) {
		t.Fatalf("expected %s to contain %q, got %v", what, id, list)
	}
}

func assertNotContains(t *testing.T, list []string, id, what string) {
	t.Helper()
	if slices.Contains(list, id) {
		t.Fatalf("expected %s not to contain %q, got %v", what, id, list)
	}
}
