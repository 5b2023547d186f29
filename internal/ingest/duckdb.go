// Package ingest loads raw transaction CSVs into memory through an embedded
// DuckDB instance. The heavy lifting (CSV parsing, the bills-venues join,
// unit conversion) happens in SQL; downstream packages only ever see plain
// in-memory records.
package ingest

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
)

func openDuckDB() (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}
