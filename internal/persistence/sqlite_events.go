package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/petrijr/socialflow/pkg/api"
)

// SQLiteEventStore stores task history events in SQLite.
type SQLiteEventStore struct {
	db *sqlx.DB
}

// Ensure SQLiteEventStore implements the interfaces.
var _ EventStore = (*SQLiteEventStore)(nil)

type historyRow struct {
	Subject   string `db:"subject"`
	At        int64  `db:"at"`
	Type      string `db:"type"`
	EventType string `db:"event_type"`
	From      string `db:"from_id"`
	To        string `db:"to_id"`
	Detail    string `db:"detail"`
}

func (r historyRow) event() api.HistoryEvent {
	return api.HistoryEvent{
		Subject:   r.Subject,
		At:        time.Unix(0, r.At),
		Type:      api.HistoryType(r.Type),
		EventType: api.EventType(r.EventType),
		From:      r.From,
		To:        r.To,
		Detail:    r.Detail,
	}
}

func newHistoryRow(ev api.HistoryEvent) historyRow {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	return historyRow{
		Subject:   ev.Subject,
		At:        at.UnixNano(),
		Type:      string(ev.Type),
		EventType: string(ev.EventType),
		From:      ev.From,
		To:        ev.To,
		Detail:    ev.Detail,
	}
}

func NewSQLiteEventStore(db *sql.DB) (*SQLiteEventStore, error) {
	s := &SQLiteEventStore{db: sqlx.NewDb(db, "sqlite")}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteEventStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS history_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT NOT NULL,
			at INTEGER NOT NULL,
			type TEXT NOT NULL,
			event_type TEXT NOT NULL DEFAULT '',
			from_id TEXT NOT NULL DEFAULT '',
			to_id TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_history_events_subject ON history_events(subject, id);
	`)
	return err
}

func (s *SQLiteEventStore) AppendEvent(ctx context.Context, ev api.HistoryEvent) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO history_events (subject, at, type, event_type, from_id, to_id, detail)
		VALUES (:subject, :at, :type, :event_type, :from_id, :to_id, :detail)`,
		newHistoryRow(ev),
	)
	return err
}

func (s *SQLiteEventStore) ListEvents(ctx context.Context, subject string) ([]api.HistoryEvent, error) {
	var rows []historyRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT subject, at, type, event_type, from_id, to_id, detail
		FROM history_events
		WHERE subject = ?
		ORDER BY id ASC`, subject)
	if err != nil {
		return nil, err
	}

	out := make([]api.HistoryEvent, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.event())
	}
	return out, nil
}
