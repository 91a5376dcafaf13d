package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/socialflow/pkg/api"
)

// RedisEventStore keeps one Redis list of JSON-encoded history events per
// subject under <prefix>history:<subject>.
type RedisEventStore struct {
	client *redis.Client
	prefix string
}

var _ EventStore = (*RedisEventStore)(nil)

func NewRedisEventStore(client *redis.Client, prefix string) *RedisEventStore {
	if prefix == "" {
		prefix = "socialflow:"
	}
	return &RedisEventStore{client: client, prefix: prefix}
}

func (s *RedisEventStore) key(subject string) string {
	return s.prefix + "history:" + subject
}

func (s *RedisEventStore) AppendEvent(ctx context.Context, ev api.HistoryEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, s.key(ev.Subject), data).Err()
}

func (s *RedisEventStore) ListEvents(ctx context.Context, subject string) ([]api.HistoryEvent, error) {
	items, err := s.client.LRange(ctx, s.key(subject), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]api.HistoryEvent, 0, len(items))
	for _, item := range items {
		var ev api.HistoryEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}
