// Package store persists pipeline outputs: the cleansed order dataset to a
// local SQLite file and the analysis result tables to PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/shiftsync/venuepulse/internal/ingest"
)

// SQLite wraps the cleansed-data database. The threshold stage writes the
// filtered orders here; the peak-hours stage can read them back later
// without touching the raw CSVs again.
type SQLite struct {
	*sql.DB
	path string
}

// OpenSQLite creates (or opens) the cleansed-data database and ensures the
// schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &SQLite{DB: sqlDB, path: path}
	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}
	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}

// Path returns the database file path.
func (db *SQLite) Path() string {
	return db.path
}

func (db *SQLite) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

func (db *SQLite) createSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS cleansed_orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_uuid TEXT,
		venue_xref_id TEXT,
		concept TEXT,
		order_take_out_type_label TEXT,
		order_duration_minutes REAL,
		order_seated_at_local DATETIME,
		business_date TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_cleansed_orders_concept ON cleansed_orders(concept);
	CREATE INDEX IF NOT EXISTS idx_cleansed_orders_type ON cleansed_orders(order_take_out_type_label);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// ReplaceCleansedOrders clears the table and writes the filtered dataset in
// one transaction, mirroring an "if_exists=replace" load.
func (db *SQLite) ReplaceCleansedOrders(orders []ingest.OrderRecord) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM cleansed_orders`); err != nil {
		return fmt.Errorf("failed to clear cleansed orders: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO cleansed_orders (
			order_uuid, venue_xref_id, concept, order_take_out_type_label,
			order_duration_minutes, order_seated_at_local, business_date
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range orders {
		if _, err := stmt.Exec(
			o.OrderUUID,
			o.VenueID,
			o.Concept,
			o.OrderType,
			o.DurationMinutes,
			o.SeatedAt.Format("2006-01-02 15:04:05"),
			o.BusinessDate,
		); err != nil {
			return fmt.Errorf("failed to insert cleansed order: %w", err)
		}
	}

	return tx.Commit()
}

// ReadCleansedOrders loads the filtered dataset back for the peak-hours
// stage.
func (db *SQLite) ReadCleansedOrders() ([]ingest.OrderRecord, error) {
	rows, err := db.QueryContext(context.Background(), `
		SELECT order_uuid, venue_xref_id, concept, order_take_out_type_label,
		       order_duration_minutes, order_seated_at_local, business_date
		FROM cleansed_orders
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cleansed orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var orders []ingest.OrderRecord
	for rows.Next() {
		var (
			o      ingest.OrderRecord
			seated sql.NullString
		)
		if err := rows.Scan(&o.OrderUUID, &o.VenueID, &o.Concept, &o.OrderType,
			&o.DurationMinutes, &seated, &o.BusinessDate); err != nil {
			return nil, fmt.Errorf("failed to scan cleansed order: %w", err)
		}
		if seated.Valid {
			o.SeatedAt = parseStoredTimestamp(seated.String)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func parseStoredTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
