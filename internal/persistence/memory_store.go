package persistence

import (
	"context"
	"sync"

	"github.com/petrijr/socialflow/pkg/api"
)

// InMemoryRecordStore is a simple, goroutine-safe RecordStore backed by
// maps of encoded records. Records are stored encoded so callers never share
// memory with the store.
type InMemoryRecordStore struct {
	mu      sync.RWMutex
	seq     uint64
	records map[api.Kind]map[string]memoryEntry
}

type memoryEntry struct {
	seq  uint64
	data []byte
}

// NewInMemoryRecordStore creates a new InMemoryRecordStore.
func NewInMemoryRecordStore() *InMemoryRecordStore {
	return &InMemoryRecordStore{
		records: make(map[api.Kind]map[string]memoryEntry),
	}
}

// Ensure InMemoryRecordStore implements RecordStore.
var _ RecordStore = (*InMemoryRecordStore)(nil)

func (s *InMemoryRecordStore) Fetch(ctx context.Context, id string, dst api.Record) error {
	s.mu.RLock()
	entry, ok := s.records[dst.Kind()][id]
	s.mu.RUnlock()

	if !ok {
		return api.NewNotFoundError(dst.Kind(), id)
	}
	return DecodeRecord(entry.data, dst)
}

func (s *InMemoryRecordStore) Save(ctx context.Context, rec api.Record) error {
	assignID(rec)
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.records[rec.Kind()]
	if !ok {
		byID = make(map[string]memoryEntry)
		s.records[rec.Kind()] = byID
	}
	entry, exists := byID[rec.RecordID()]
	if !exists {
		s.seq++
		entry.seq = s.seq
	}
	entry.data = data
	byID[rec.RecordID()] = entry
	return nil
}

func (s *InMemoryRecordStore) Remove(ctx context.Context, kind api.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records[kind], id)
	return nil
}

func (s *InMemoryRecordStore) Count(ctx context.Context, kind api.Kind, q Query) (int, error) {
	if err := q.validate(kind); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, entry := range s.records[kind] {
		rec, err := decodeAs(kind, entry.data)
		if err != nil {
			return 0, err
		}
		if q.Matches(rec) {
			n++
		}
	}
	return n, nil
}

// First returns the earliest-inserted matching record.
func (s *InMemoryRecordStore) First(ctx context.Context, q Query, dst api.Record) (bool, error) {
	kind := dst.Kind()
	if err := q.validate(kind); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *memoryEntry
	for _, entry := range s.records[kind] {
		if best != nil && entry.seq > best.seq {
			continue
		}
		rec, err := decodeAs(kind, entry.data)
		if err != nil {
			return false, err
		}
		if q.Matches(rec) {
			e := entry
			best = &e
		}
	}
	if best == nil {
		return false, nil
	}
	return true, DecodeRecord(best.data, dst)
}

func (s *InMemoryRecordStore) Close() error {
	return nil
}
