// Command import-regions builds the sqlite region-name database the viewer
// uses for tooltips, from a two-column fips,county_name CSV.
//
// Usage:
//
//	go run ./cmd/import-regions \
//	  -csv data/fips2county.csv \
//	  -db data/regions.db
package main

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "input CSV with fips,county_name rows")
	dbPath := flag.String("db", "regions.db", "output sqlite database path")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		return errors.New("missing required flag: -csv")
	}

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *dbPath, err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS regions (
		fips TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("creating regions table: %w", err)
	}

	count, err := importCSV(db, *csvPath)
	if err != nil {
		return err
	}

	log.Printf("imported %d regions into %s", count, *dbPath)
	return nil
}

func importCSV(db *sql.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO regions (fips, name) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	count := 0
	line := 0
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		if len(row) < 2 {
			continue
		}
		// Skip a header row.
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "fips") {
			continue
		}
		fips := normalizeFIPS(row[0])
		name := strings.TrimSpace(row[1])
		if fips == "" || name == "" {
			continue
		}

		if _, err := stmt.Exec(fips, name); err != nil {
			return 0, fmt.Errorf("inserting %s: %w", fips, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return count, nil
}

// normalizeFIPS left-pads short numeric keys; geometry and feed data both
// use the five-digit form.
func normalizeFIPS(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || len(s) >= 5 {
		return s
	}
	return strings.Repeat("0", 5-len(s)) + s
}
