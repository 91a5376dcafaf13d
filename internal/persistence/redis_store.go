package persistence

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/socialflow/pkg/api"
)

// RedisRecordStore is a RecordStore backed by Redis.
// It uses a simple key structure:
//
//	<prefix>rec:<kind>:<id>                => JSON-encoded record
//	<prefix>idx:<kind>:all                 => SET of all ids of a kind
//	<prefix>idx:<kind>:<field>:<value>     => SET of ids with field == value
//
// Save writes the payload and adds it to every index it matches; a failed
// index write fails the Save. Index entries for values a record no longer
// holds are left behind, and Count/First re-check the decoded payload so
// such stale entries are ignored.
type RedisRecordStore struct {
	client *redis.Client
	prefix string
}

var _ RecordStore = (*RedisRecordStore)(nil)

// NewRedisRecordStore creates a RedisRecordStore.
// prefix is optional but recommended (e.g. "socialflow:").
func NewRedisRecordStore(client *redis.Client, prefix string) *RedisRecordStore {
	if prefix == "" {
		prefix = "socialflow:"
	}
	return &RedisRecordStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisRecordStore) keyRecord(kind api.Kind, id string) string {
	return s.prefix + "rec:" + string(kind) + ":" + id
}

func (s *RedisRecordStore) keyAll(kind api.Kind) string {
	return s.prefix + "idx:" + string(kind) + ":all"
}

func (s *RedisRecordStore) keyIndex(kind api.Kind, field, value string) string {
	return s.prefix + "idx:" + string(kind) + ":" + field + ":" + value
}

func (s *RedisRecordStore) Fetch(ctx context.Context, id string, dst api.Record) error {
	data, err := s.client.Get(ctx, s.keyRecord(dst.Kind(), id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return api.NewNotFoundError(dst.Kind(), id)
		}
		return err
	}
	return DecodeRecord(data, dst)
}

func (s *RedisRecordStore) Save(ctx context.Context, rec api.Record) error {
	assignID(rec)
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}

	// The payload and its index entries are written in one MULTI; a record
	// missing from an index would be invisible to Count and First.
	kind, id := rec.Kind(), rec.RecordID()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keyRecord(kind, id), data, 0)
	pipe.SAdd(ctx, s.keyAll(kind), id)
	for field, value := range rec.SearchFields() {
		pipe.SAdd(ctx, s.keyIndex(kind, field, value), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save %s %s: %w", kind, id, err)
	}
	return nil
}

func (s *RedisRecordStore) Remove(ctx context.Context, kind api.Kind, id string) error {
	key := s.keyRecord(kind, id)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, s.keyAll(kind), id)
	if rec, err := decodeAs(kind, data); err == nil {
		for field, value := range rec.SearchFields() {
			pipe.SRem(ctx, s.keyIndex(kind, field, value), id)
		}
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisRecordStore) Count(ctx context.Context, kind api.Kind, q Query) (int, error) {
	recs, err := s.search(ctx, kind, q)
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// First returns the matching record with the lowest id. Redis sets carry no
// insertion order.
func (s *RedisRecordStore) First(ctx context.Context, q Query, dst api.Record) (bool, error) {
	recs, err := s.search(ctx, dst.Kind(), q)
	if err != nil {
		return false, err
	}
	if len(recs) == 0 {
		return false, nil
	}
	return true, DecodeRecord(recs[0], dst)
}

func (s *RedisRecordStore) Close() error {
	return s.client.Close()
}

// search returns the encoded records of kind matching q, ordered by id.
func (s *RedisRecordStore) search(ctx context.Context, kind api.Kind, q Query) ([][]byte, error) {
	if err := q.validate(kind); err != nil {
		return nil, err
	}

	var ids []string
	var err error
	if len(q) == 0 {
		ids, err = s.client.SMembers(ctx, s.keyAll(kind)).Result()
	} else {
		keys := make([]string, 0, len(q))
		for _, c := range q {
			keys = append(keys, s.keyIndex(kind, c.Field, c.Value))
		}
		ids, err = s.client.SInter(ctx, keys...).Result()
	}
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	slices.Sort(ids)

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, s.keyRecord(kind, id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	var out [][]byte
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		rec, err := decodeAs(kind, data)
		if err != nil {
			return nil, err
		}
		if q.Matches(rec) {
			out = append(out, data)
		}
	}
	return out, nil
}
