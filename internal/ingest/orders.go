package ingest

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shiftsync/venuepulse/internal/segment"
)

// OrderRecord is one transaction row after the bills-venues join. Durations
// are already converted from seconds to minutes.
type OrderRecord struct {
	OrderUUID       string
	VenueID         string
	Concept         string
	OrderType       string
	DurationMinutes float64
	SeatedAt        time.Time
	BusinessDate    string
}

// Order converts the record to the shape the segmentation stage consumes.
func (r OrderRecord) Order() segment.Order {
	return segment.Order{
		Concept:      r.Concept,
		VenueID:      r.VenueID,
		BusinessDate: r.BusinessDate,
		SeatedAt:     r.SeatedAt,
	}
}

// MissingColumnError reports a required column absent from an input file.
type MissingColumnError struct {
	Column string
	Source string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q missing from %s", e.Column, e.Source)
}

// Loader reads transaction CSVs through DuckDB.
type Loader struct {
	db *sql.DB
}

func NewLoader() (*Loader, error) {
	db, err := openDuckDB()
	if err != nil {
		return nil, err
	}
	return &Loader{db: db}, nil
}

func (l *Loader) Close() error {
	return l.db.Close()
}

var billColumns = []string{
	"order_uuid",
	"venue_xref_id",
	"order_take_out_type_label",
	"order_seated_at_local",
	"business_date",
}

var venueColumns = []string{
	"venue_xref_id",
	"concept",
}

// LoadOrders joins bills against venues on venue_xref_id and returns one
// record per order with the duration converted to minutes. durationColumn
// names the bills column holding the order duration in seconds. Orders whose
// venue has no concept come back with an empty Concept; callers decide
// whether to exclude them.
func (l *Loader) LoadOrders(billsPath, venuesPath, durationColumn string) ([]OrderRecord, error) {
	if err := l.requireColumns(billsPath, append(billColumns, durationColumn)); err != nil {
		return nil, err
	}
	if err := l.requireColumns(venuesPath, venueColumns); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			COALESCE(CAST(b.order_uuid AS VARCHAR), '') AS order_uuid,
			COALESCE(CAST(b.venue_xref_id AS VARCHAR), '') AS venue_xref_id,
			COALESCE(CAST(v.concept AS VARCHAR), '') AS concept,
			COALESCE(CAST(b.order_take_out_type_label AS VARCHAR), '') AS order_type,
			CAST(b.%s AS DOUBLE) / 60.0 AS order_duration_minutes,
			CAST(b.order_seated_at_local AS VARCHAR) AS order_seated_at_local,
			COALESCE(CAST(b.business_date AS VARCHAR), '') AS business_date
		FROM read_csv('%s', header = true, union_by_name = true) b
		LEFT JOIN read_csv('%s', header = true, union_by_name = true) v
			ON b.venue_xref_id = v.venue_xref_id
	`, quoteIdent(durationColumn), escapePath(billsPath), escapePath(venuesPath))

	rows, err := l.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var records []OrderRecord
	for rows.Next() {
		var (
			rec    OrderRecord
			seated sql.NullString
		)
		if err := rows.Scan(&rec.OrderUUID, &rec.VenueID, &rec.Concept, &rec.OrderType,
			&rec.DurationMinutes, &seated, &rec.BusinessDate); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		if seated.Valid {
			rec.SeatedAt = parseLocalTimestamp(seated.String)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return records, nil
}

// LoadHourlyPoints reads a pre-aggregated CSV with concept, hour and
// normalized_order_count columns, as produced by an earlier pipeline run.
func (l *Loader) LoadHourlyPoints(path string) ([]segment.HourlyPoint, error) {
	if err := l.requireColumns(path, []string{"concept", "hour", "normalized_order_count"}); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			COALESCE(CAST(concept AS VARCHAR), '') AS concept,
			CAST(hour AS INTEGER) AS hour,
			CAST(normalized_order_count AS DOUBLE) AS normalized_order_count
		FROM read_csv('%s', header = true, union_by_name = true)
		WHERE concept IS NOT NULL
	`, escapePath(path))

	rows, err := l.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly points: %w", err)
	}
	defer rows.Close()

	var points []segment.HourlyPoint
	for rows.Next() {
		var p segment.HourlyPoint
		if err := rows.Scan(&p.Concept, &p.Hour, &p.NormalizedOrderCount); err != nil {
			return nil, fmt.Errorf("failed to scan hourly point: %w", err)
		}
		if p.Hour < 0 || p.Hour > 23 {
			return nil, fmt.Errorf("hour %d out of range in %s", p.Hour, path)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return points, nil
}

// requireColumns inspects the CSV header without materializing any rows.
func (l *Loader) requireColumns(path string, required []string) error {
	query := fmt.Sprintf(`SELECT * FROM read_csv('%s', header = true, union_by_name = true) LIMIT 0`, escapePath(path))
	rows, err := l.db.Query(query)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to inspect columns of %s: %w", path, err)
	}

	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[strings.ToLower(c)] = true
	}
	for _, want := range required {
		if !present[want] {
			return &MissingColumnError{Column: want, Source: path}
		}
	}
	return nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func parseLocalTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func escapePath(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
