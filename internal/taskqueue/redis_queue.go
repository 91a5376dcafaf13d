package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue implements Queue on a single Redis list:
//
//	<prefix>commands
//
// Producers LPUSH and workers BRPOP, so the list is FIFO. Values are
// JSON-encoded commands (see EncodeCommand).
type RedisQueue struct {
	client *redis.Client
	key    string
	logger *slog.Logger

	// blockTimeout bounds each BRPOP so a cancelled ctx is noticed even
	// when the client does not propagate context deadlines.
	blockTimeout time.Duration
}

// NewRedisQueue constructs a Redis-backed Queue. An empty prefix defaults
// to "socialflow:".
func NewRedisQueue(client *redis.Client, prefix string) *RedisQueue {
	if prefix == "" {
		prefix = "socialflow:"
	}
	return &RedisQueue{
		client:       client,
		key:          prefix + "commands",
		logger:       slog.Default(),
		blockTimeout: time.Second,
	}
}

// Ensure RedisQueue implements Queue.
var _ Queue = (*RedisQueue)(nil)

// Enqueue pushes a command onto the list (LPUSH).
func (q *RedisQueue) Enqueue(ctx context.Context, c Command) error {
	data, err := EncodeCommand(c)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, data).Err()
}

// Dequeue blocks on BRPOP until a command is available or ctx is cancelled.
func (q *RedisQueue) Dequeue(ctx context.Context) (*Command, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := q.client.BRPop(ctx, q.blockTimeout, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
		// BRPop returns [key, value].
		if len(res) != 2 {
			q.logger.WarnContext(ctx, "redis queue: unexpected BRPOP reply", slog.Any("reply", res))
			continue
		}

		c, err := DecodeCommand([]byte(res[1]))
		if err != nil {
			return nil, fmt.Errorf("redis queue: %w", err)
		}
		c.Attempts++
		return c, nil
	}
}

// Len returns the approximate number of commands queued (LLEN).
func (q *RedisQueue) Len() int {
	n, err := q.client.LLen(context.Background(), q.key).Result()
	if err != nil {
		q.logger.Warn("redis queue: LLEN failed", slog.Any("error", err))
		return 0
	}
	return int(n)
}
