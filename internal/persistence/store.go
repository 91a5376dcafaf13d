package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/petrijr/socialflow/pkg/api"
)

// ErrUnsearchableField is returned when a Query names a field that the
// record kind does not expose for equality search.
var ErrUnsearchableField = errors.New("field is not searchable")

// RecordStore is the keyed-record store every engine operation goes through.
// Implementations provide per-record atomicity only; read-modify-write
// sequences spanning several calls are not serialised.
type RecordStore interface {
	// Fetch loads the record identified by id into dst. dst selects the kind.
	// A miss returns an *api.NotFoundError.
	Fetch(ctx context.Context, id string, dst api.Record) error

	// Save upserts rec. A record without an id is assigned a fresh one.
	Save(ctx context.Context, rec api.Record) error

	// Remove deletes a record. Removing an absent record is not an error.
	Remove(ctx context.Context, kind api.Kind, id string) error

	// Count returns the number of records of kind matching q.
	Count(ctx context.Context, kind api.Kind, q Query) (int, error)

	// First loads the first record matching q into dst and reports whether
	// one was found.
	First(ctx context.Context, q Query, dst api.Record) (bool, error)

	Close() error
}

// Condition is one equality test against a record's search field.
type Condition struct {
	Field string
	Value string
}

// Query is a conjunction of equality conditions. The zero Query matches
// every record of a kind.
type Query []Condition

// Where starts a Query with a single condition.
func Where(field, value string) Query {
	return Query{{Field: field, Value: value}}
}

// And returns a copy of q extended with one more condition.
func (q Query) And(field, value string) Query {
	out := make(Query, len(q), len(q)+1)
	copy(out, q)
	return append(out, Condition{Field: field, Value: value})
}

// Matches reports whether rec satisfies every condition in q.
func (q Query) Matches(rec api.Record) bool {
	fields := rec.SearchFields()
	for _, c := range q {
		if v, ok := fields[c.Field]; !ok || v != c.Value {
			return false
		}
	}
	return true
}

func (q Query) validate(kind api.Kind) error {
	proto, ok := api.NewRecord(kind)
	if !ok {
		return fmt.Errorf("unknown record kind %q", kind)
	}
	fields := proto.SearchFields()
	for _, c := range q {
		if _, ok := fields[c.Field]; !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnsearchableField, kind, c.Field)
		}
	}
	return nil
}

func assignID(rec api.Record) {
	if rec.RecordID() == "" {
		rec.SetRecordID(uuid.NewString())
	}
}
