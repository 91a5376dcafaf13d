package persistence

import (
	"context"
	"database/sql"

	"github.com/petrijr/socialflow/pkg/api"
)

// PostgresEventStore stores task history events in PostgreSQL.
type PostgresEventStore struct {
	db *sql.DB
}

var _ EventStore = (*PostgresEventStore)(nil)

func NewPostgresEventStore(db *sql.DB) (*PostgresEventStore, error) {
	s := &PostgresEventStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresEventStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS history_events (
			id BIGSERIAL PRIMARY KEY,
			subject TEXT NOT NULL,
			at BIGINT NOT NULL,
			type TEXT NOT NULL,
			event_type TEXT NOT NULL DEFAULT '',
			from_id TEXT NOT NULL DEFAULT '',
			to_id TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT ''
		);
	`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_history_events_subject ON history_events(subject, id)`)
	return err
}

func (s *PostgresEventStore) AppendEvent(ctx context.Context, ev api.HistoryEvent) error {
	r := newHistoryRow(ev)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history_events (subject, at, type, event_type, from_id, to_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.Subject, r.At, r.Type, r.EventType, r.From, r.To, r.Detail,
	)
	return err
}

func (s *PostgresEventStore) ListEvents(ctx context.Context, subject string) ([]api.HistoryEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject, at, type, event_type, from_id, to_id, detail
		FROM history_events
		WHERE subject = $1
		ORDER BY id ASC`, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.HistoryEvent
	for rows.Next() {
		var r historyRow
		if err := rows.Scan(&r.Subject, &r.At, &r.Type, &r.EventType, &r.From, &r.To, &r.Detail); err != nil {
			return nil, err
		}
		out = append(out, r.event())
	}
	return out, rows.Err()
}

