package persistence

import (
	"context"
	"slices"
	"time"

	"github.com/petrijr/socialflow/pkg/api"
)

// Lists mutates list fields of stored records, stamping LastUpdatedTime from
// Now (time.Now when nil). There is no locking: concurrent writes to the same
// record race and the last write wins.
type Lists struct {
	Store RecordStore
	Now   func() time.Time
}

func (l Lists) now() time.Time {
	if l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}

// Append fetches the record, appends values to its list field and saves it
// back.
func (l Lists) Append(ctx context.Context, kind api.Kind, id, field string, values ...string) error {
	rec, list, err := fetchList(ctx, l.Store, kind, id, field)
	if err != nil {
		return err
	}
	*list = append(*list, values...)
	rec.Touch(l.now())
	return l.Store.Save(ctx, rec)
}

// Remove fetches the record, drops every occurrence of values from its list
// field and saves it back. It reports whether anything was removed; when
// nothing matched the record is not rewritten.
func (l Lists) Remove(ctx context.Context, kind api.Kind, id, field string, values ...string) (bool, error) {
	rec, list, err := fetchList(ctx, l.Store, kind, id, field)
	if err != nil {
		return false, err
	}
	before := len(*list)
	*list = slices.DeleteFunc(*list, func(v string) bool {
		return slices.Contains(values, v)
	})
	if len(*list) == before {
		return false, nil
	}
	rec.Touch(l.now())
	return true, l.Store.Save(ctx, rec)
}

// AppendToList is Lists{Store: store}.Append.
func AppendToList(
	ctx context.Context, store RecordStore, kind api.Kind, id, field string,
	values ...string,
) error {
	return Lists{Store: store}.Append(ctx, kind, id, field, values...)
}

// RemoveFromList is Lists{Store: store}.Remove.
func RemoveFromList(
	ctx context.Context, store RecordStore, kind api.Kind, id, field string,
	values ...string,
) (bool, error) {
	return Lists{Store: store}.Remove(ctx, kind, id, field, values...)
}

func fetchList(
	ctx context.Context, store RecordStore, kind api.Kind, id, field string,
) (api.Record, *[]string, error) {
	rec, ok := api.NewRecord(kind)
	if !ok {
		return nil, nil, &unknownKindError{kind: kind}
	}
	if err := store.Fetch(ctx, id, rec); err != nil {
		return nil, nil, err
	}
	list, ok := rec.ListField(field)
	if !ok {
		return nil, nil, &listFieldError{kind: kind, field: field}
	}
	return rec, list, nil
}

type listFieldError struct {
	kind  api.Kind
	field string
}

func (e *listFieldError) Error() string {
	return string(e.kind) + " has no list field " + e.field
}
