package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/petrijr/socialflow/pkg/api"
)

// PostgresRecordStore is a RecordStore backed by PostgreSQL.
//
// It expects an *sql.DB that uses a PostgreSQL driver (for example,
// "github.com/jackc/pgx/v5/stdlib").
//
// The caller is responsible for:
//   - importing the driver for its side effects, e.g.:
//     _ "github.com/jackc/pgx/v5/stdlib"
//   - providing a DSN via sql.Open.
type PostgresRecordStore struct {
	db *sql.DB
}

// Ensure PostgresRecordStore implements RecordStore.
var _ RecordStore = (*PostgresRecordStore)(nil)

// NewPostgresRecordStore initializes the required schema in the given
// database and returns a new PostgresRecordStore.
func NewPostgresRecordStore(db *sql.DB) (*PostgresRecordStore, error) {
	s := &PostgresRecordStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresRecordStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			seq BIGSERIAL,
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (kind, id)
		);
	`)
	return err
}

func (s *PostgresRecordStore) Fetch(ctx context.Context, id string, dst api.Record) error {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE kind = $1 AND id = $2`,
		string(dst.Kind()), id,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.NewNotFoundError(dst.Kind(), id)
		}
		return fmt.Errorf("fetch %s %s: %w", dst.Kind(), id, err)
	}
	return DecodeRecord(data, dst)
}

func (s *PostgresRecordStore) Save(ctx context.Context, rec api.Record) error {
	assignID(rec)
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (kind, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (kind, id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = now()
	`,
		string(rec.Kind()),
		rec.RecordID(),
		string(data),
	)
	if err != nil {
		return fmt.Errorf("save %s %s: %w", rec.Kind(), rec.RecordID(), err)
	}
	return nil
}

func (s *PostgresRecordStore) Remove(ctx context.Context, kind api.Kind, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE kind = $1 AND id = $2`, string(kind), id,
	)
	return err
}

func (s *PostgresRecordStore) Count(ctx context.Context, kind api.Kind, q Query) (int, error) {
	if err := q.validate(kind); err != nil {
		return 0, err
	}
	where, args := postgresWhere(kind, q)

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE `+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return n, nil
}

// First returns the earliest-inserted matching record.
func (s *PostgresRecordStore) First(ctx context.Context, q Query, dst api.Record) (bool, error) {
	kind := dst.Kind()
	if err := q.validate(kind); err != nil {
		return false, err
	}
	where, args := postgresWhere(kind, q)

	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE `+where+` ORDER BY seq LIMIT 1`, args...,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("first %s: %w", kind, err)
	}
	return true, DecodeRecord(data, dst)
}

func (s *PostgresRecordStore) Close() error {
	return s.db.Close()
}

func postgresWhere(kind api.Kind, q Query) (string, []any) {
	clauses := []string{"kind = $1"}
	args := []any{string(kind)}
	for _, c := range q {
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("data->>($%d::text) = $%d", n+1, n+2))
		args = append(args, c.Field, c.Value)
	}
	return strings.Join(clauses, " AND "), args
}
