package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/petrijr/socialflow/pkg/api"
)

// SQLiteRecordStore is a RecordStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
//
// Records live in a single table keyed by (kind, id); equality searches run
// against the JSON payload with json_extract.
type SQLiteRecordStore struct {
	db *sqlx.DB
}

// Ensure SQLiteRecordStore implements RecordStore.
var _ RecordStore = (*SQLiteRecordStore)(nil)

// NewSQLiteRecordStore initializes the required schema in the given
// database and returns a new SQLiteRecordStore.
func NewSQLiteRecordStore(db *sql.DB) (*SQLiteRecordStore, error) {
	s := &SQLiteRecordStore{db: sqlx.NewDb(db, "sqlite")}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteRecordStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (kind, id)
		);`,
	)
	return err
}

func (s *SQLiteRecordStore) Fetch(ctx context.Context, id string, dst api.Record) error {
	var data string
	err := s.db.GetContext(ctx, &data,
		`SELECT data FROM records WHERE kind = ? AND id = ?`,
		string(dst.Kind()), id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.NewNotFoundError(dst.Kind(), id)
		}
		return fmt.Errorf("fetch %s %s: %w", dst.Kind(), id, err)
	}
	return DecodeRecord([]byte(data), dst)
}

func (s *SQLiteRecordStore) Save(ctx context.Context, rec api.Record) error {
	assignID(rec)
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (kind, id, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (kind, id) DO UPDATE
		SET data = excluded.data, updated_at = excluded.updated_at`,
		string(rec.Kind()),
		rec.RecordID(),
		string(data),
		time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save %s %s: %w", rec.Kind(), rec.RecordID(), err)
	}
	return nil
}

func (s *SQLiteRecordStore) Remove(ctx context.Context, kind api.Kind, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE kind = ? AND id = ?`, string(kind), id,
	)
	return err
}

func (s *SQLiteRecordStore) Count(ctx context.Context, kind api.Kind, q Query) (int, error) {
	if err := q.validate(kind); err != nil {
		return 0, err
	}
	where, args := sqliteWhere(kind, q)

	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM records WHERE `+where, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return n, nil
}

// First returns the earliest-inserted matching record.
func (s *SQLiteRecordStore) First(ctx context.Context, q Query, dst api.Record) (bool, error) {
	kind := dst.Kind()
	if err := q.validate(kind); err != nil {
		return false, err
	}
	where, args := sqliteWhere(kind, q)

	var data string
	err := s.db.GetContext(ctx, &data,
		`SELECT data FROM records WHERE `+where+` ORDER BY rowid LIMIT 1`, args...,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("first %s: %w", kind, err)
	}
	return true, DecodeRecord([]byte(data), dst)
}

func (s *SQLiteRecordStore) Close() error {
	return s.db.Close()
}

func sqliteWhere(kind api.Kind, q Query) (string, []any) {
	clauses := []string{"kind = ?"}
	args := []any{string(kind)}
	for _, c := range q {
		clauses = append(clauses, "json_extract(data, ?) = ?")
		args = append(args, "$."+c.Field, c.Value)
	}
	return strings.Join(clauses, " AND "), args
}
