package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgUser     = "socialflow"
	pgPassword = "socialflow"
	pgDatabase = "socialflow_test"
)

func postgresDSN(hostPort string) string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", pgUser, pgPassword, hostPort, pgDatabase)
}

var postgresContainer = &sharedContainer{
	name: "postgres",
	start: func(ctx context.Context) (testcontainers.Container, error) {
		return testcontainers.Run(ctx, "postgres:16",
			testcontainers.WithExposedPorts("5432/tcp"),
			testcontainers.WithEnv(map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDatabase,
			}),
			testcontainers.WithWaitStrategy(
				wait.ForAll(
					wait.ForListeningPort("5432/tcp"),
					// The log line appears before the server accepts
					// external connections; a real query settles it.
					wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
						return postgresDSN(host + ":" + port.Port())
					}).WithQuery("SELECT 1"),
				).WithDeadline(2*time.Minute),
			),
		)
	},
	dsn: postgresDSN,
}

// GetPostgresEndpoint returns a pgx DSN for a PostgreSQL container shared by
// the test binary, starting it on first use.
func GetPostgresEndpoint(t *testing.T) string {
	t.Helper()
	return postgresContainer.get(t)
}
