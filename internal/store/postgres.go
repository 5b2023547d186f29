package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/shiftsync/venuepulse/internal/segment"
)

// Postgres exports the analysis result tables for downstream BI tools. The
// three tables mirror the core's logical outputs: peak hours by method, the
// full agreement table, and the high-confidence summary (overlap >= 2).
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects with the given DSN and ensures the result tables
// exist. Credentials are supplied by the caller; this package owns no
// configuration.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	p := &Postgres{db: db}
	if err := p.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create result tables: %w", err)
	}
	return p, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS peak_hours_analysis (
			id SERIAL PRIMARY KEY,
			concept TEXT,
			method TEXT,
			hour INTEGER,
			normalized_order_count FLOAT,
			is_peak BOOLEAN,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS overlap_analysis (
			id SERIAL PRIMARY KEY,
			concept TEXT,
			hour INTEGER,
			overlap_count INTEGER,
			overlap_category TEXT,
			normalized_order_count FLOAT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS peak_hours_summary (
			id SERIAL PRIMARY KEY,
			concept TEXT,
			hour INTEGER,
			agreement_level TEXT,
			agreement_count INTEGER,
			normalized_order_count FLOAT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range statements {
		if _, err := p.db.ExecContext(context.Background(), stmt); err != nil {
			return err
		}
	}
	return nil
}

// ExportAnalysis inserts all three result tables in one transaction.
func (p *Postgres) ExportAnalysis(peaks []segment.PeakHourRow, agreement []segment.AgreementRow) error {
	tx, err := p.db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, row := range peaks {
		if _, err := tx.Exec(`
			INSERT INTO peak_hours_analysis (concept, method, hour, normalized_order_count, is_peak)
			VALUES ($1, $2, $3, $4, $5)
		`, row.Concept, string(row.Method), row.Hour, row.NormalizedOrderCount, row.IsPeak); err != nil {
			return fmt.Errorf("failed to insert peak hour row: %w", err)
		}
	}

	for _, row := range agreement {
		if _, err := tx.Exec(`
			INSERT INTO overlap_analysis (concept, hour, overlap_count, overlap_category, normalized_order_count)
			VALUES ($1, $2, $3, $4, $5)
		`, row.Concept, row.Hour, row.OverlapCount, string(row.Category), nullableFloat(row.NormalizedOrderCount)); err != nil {
			return fmt.Errorf("failed to insert overlap row: %w", err)
		}
	}

	for _, row := range segment.HighAgreement(agreement, 2) {
		if _, err := tx.Exec(`
			INSERT INTO peak_hours_summary (concept, hour, agreement_level, agreement_count, normalized_order_count)
			VALUES ($1, $2, $3, $4, $5)
		`, row.Concept, row.Hour, string(row.Category), row.OverlapCount, nullableFloat(row.NormalizedOrderCount)); err != nil {
			return fmt.Errorf("failed to insert summary row: %w", err)
		}
	}

	return tx.Commit()
}

func nullableFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
