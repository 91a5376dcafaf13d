package taskqueue

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLiteQueue is a persistent Queue backed by SQLite. Commands are claimed
// in FIFO order of their auto-incrementing row id.
type SQLiteQueue struct {
	db           *sqlx.DB
	pollInterval time.Duration
}

type commandRow struct {
	Seq  int64  `db:"seq"`
	Data []byte `db:"data"`
}

// NewSQLiteQueue initializes the commands table in db and returns a queue.
func NewSQLiteQueue(db *sql.DB) (*SQLiteQueue, error) {
	q := &SQLiteQueue{
		db:           sqlx.NewDb(db, "sqlite"),
		pollInterval: 20 * time.Millisecond,
	}
	if err := q.initSchema(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *SQLiteQueue) initSchema() error {
	_, err := q.db.Exec(`
		CREATE TABLE IF NOT EXISTS commands (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			data BLOB NOT NULL
		);
	`)
	return err
}

// Ensure SQLiteQueue implements Queue.
var _ Queue = (*SQLiteQueue)(nil)

func (q *SQLiteQueue) Enqueue(ctx context.Context, c Command) error {
	data, err := EncodeCommand(c)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, `INSERT INTO commands (data) VALUES (?)`, data)
	return err
}

// Dequeue polls until a command can be claimed or ctx is cancelled.
func (q *SQLiteQueue) Dequeue(ctx context.Context) (*Command, error) {
	for {
		row, err := q.claim(ctx)
		if err != nil {
			return nil, err
		}
		if row == nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(q.pollInterval):
				continue
			}
		}

		c, err := DecodeCommand(row.Data)
		if err != nil {
			return nil, err
		}
		c.Attempts++
		return c, nil
	}
}

// claim selects and deletes the oldest row in one transaction. It returns
// nil when the queue is empty.
func (q *SQLiteQueue) claim(ctx context.Context) (*commandRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, err := q.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var row commandRow
	err = tx.GetContext(ctx, &row, `SELECT seq, data FROM commands ORDER BY seq LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM commands WHERE seq = ?`, row.Seq); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &row, nil
}

func (q *SQLiteQueue) Len() int {
	var n int
	if err := q.db.Get(&n, `SELECT COUNT(*) FROM commands`); err != nil {
		return 0
	}
	return n
}
