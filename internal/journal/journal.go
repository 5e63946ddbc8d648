// Package journal persists a local record of rebalance executions to a
// SQLite database, so there is an audit trail independent of the brokerage's
// order history.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Entry is one journaled order.
type Entry struct {
	ID        int64
	Timestamp time.Time
	Symbol    string
	Side      string
	Qty       decimal.Decimal
	Kind      string
	OrderID   string
	DryRun    bool
}

// Journal is a SQLite-backed order journal.
type Journal struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS rebalance_orders (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	ts        TEXT NOT NULL,
	symbol    TEXT NOT NULL,
	side      TEXT NOT NULL,
	qty       TEXT NOT NULL,
	kind      TEXT NOT NULL,
	order_id  TEXT NOT NULL DEFAULT '',
	dry_run   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_rebalance_orders_ts ON rebalance_orders(ts);
`

// Open opens (or creates) the journal database at dbPath and ensures the
// schema exists.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", dbPath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialising journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends one entry. Qty is stored as text to keep decimal precision.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	dryRun := 0
	if e.DryRun {
		dryRun = 1
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO rebalance_orders (ts, symbol, side, qty, kind, order_id, dry_run)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ts.Format(time.RFC3339), e.Symbol, e.Side, e.Qty.String(), e.Kind, e.OrderID, dryRun)
	if err != nil {
		return fmt.Errorf("recording journal entry for %s: %w", e.Symbol, err)
	}
	return nil
}

// List returns the most recent entries, newest first, up to limit.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, ts, symbol, side, qty, kind, order_id, dry_run
		 FROM rebalance_orders ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			ts     string
			qty    string
			dryRun int
		)
		if err := rows.Scan(&e.ID, &ts, &e.Symbol, &e.Side, &qty, &e.Kind, &e.OrderID, &dryRun); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		e.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing journal timestamp %q: %w", ts, err)
		}
		e.Qty, err = decimal.NewFromString(qty)
		if err != nil {
			return nil, fmt.Errorf("parsing journal qty %q: %w", qty, err)
		}
		e.DryRun = dryRun != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
