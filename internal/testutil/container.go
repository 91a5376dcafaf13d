package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

const startupTimeout = 3 * time.Minute

// sharedContainer runs one container per test binary; every test that asks
// for it gets the same connection string.
type sharedContainer struct {
	name  string
	start func(ctx context.Context) (testcontainers.Container, error)
	dsn   func(endpoint string) string

	once sync.Once
	addr string
	err  error
}

func (c *sharedContainer) get(t *testing.T) string {
	t.Helper()
	c.once.Do(c.run)
	if c.err != nil {
		t.Fatalf("%s container: %v", c.name, c.err)
	}
	return c.addr
}

func (c *sharedContainer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	ctr, err := c.start(ctx)
	if err != nil {
		c.err = err
		return
	}
	endpoint, err := ctr.Endpoint(ctx, "")
	if err != nil {
		_ = ctr.Terminate(context.Background())
		c.err = err
		return
	}
	c.addr = c.dsn(endpoint)
}
