package testutil

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var mongoContainer = &sharedContainer{
	name: "mongo",
	start: func(ctx context.Context) (testcontainers.Container, error) {
		return testcontainers.Run(ctx, "mongo:7",
			testcontainers.WithExposedPorts("27017/tcp"),
			testcontainers.WithWaitStrategy(
				wait.ForListeningPort("27017/tcp"),
				wait.ForLog("mongod startup complete"),
			),
		)
	},
	dsn: func(endpoint string) string { return "mongodb://" + endpoint },
}

// GetMongoURI returns the URI of a MongoDB container shared by the test
// binary, starting it on first use.
func GetMongoURI(t *testing.T) string {
	t.Helper()
	return mongoContainer.get(t)
}
