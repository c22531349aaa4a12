// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package upload

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/propverify/pkg/types"
)

// Ledger records a receipt for every accepted upload in SQLite.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens or creates the receipts database at path.
func OpenLedger(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	db.SetMaxOpenConns(1)

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS receipts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_id TEXT NOT NULL,
			file_name TEXT NOT NULL,
			size INTEGER NOT NULL,
			sha256 TEXT NOT NULL,
			url TEXT NOT NULL,
			received_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_receipts_order_id ON receipts(order_id)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends a receipt.
func (l *Ledger) Record(ctx context.Context, r types.UploadReceipt) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO receipts (order_id, file_name, size, sha256, url, received_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.OrderID, r.FileName, r.Size, r.SHA256, r.URL, r.ReceivedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording receipt for %s: %w", r.OrderID, err)
	}
	return nil
}

// ForOrder returns every receipt for orderID, oldest first.
func (l *Ledger) ForOrder(ctx context.Context, orderID string) ([]types.UploadReceipt, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT order_id, file_name, size, sha256, url, received_at
		 FROM receipts WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying receipts: %w", err)
	}
	defer rows.Close()

	var out []types.UploadReceipt
	for rows.Next() {
		var (
			r          types.UploadReceipt
			receivedAt string
		)
		if err := rows.Scan(&r.OrderID, &r.FileName, &r.Size, &r.SHA256, &r.URL, &receivedAt); err != nil {
			return nil, fmt.Errorf("scanning receipt: %w", err)
		}
		r.ReceivedAt, err = time.Parse(time.RFC3339Nano, receivedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing received_at %q: %w", receivedAt, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
