package regions

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// NameIndex maps five-digit region keys to human-readable county names.
type NameIndex struct {
	names map[string]string
}

// Name looks up the display name for a region key.
func (ix *NameIndex) Name(key string) (string, bool) {
	name, ok := ix.names[key]
	return name, ok
}

// Len reports how many names are indexed.
func (ix *NameIndex) Len() int {
	return len(ix.names)
}

// EmptyNameIndex returns an index with no entries, for running without a
// names source configured.
func EmptyNameIndex() *NameIndex {
	return &NameIndex{names: map[string]string{}}
}

// LoadNamesCSV reads a two-column fips,name file. A header row is detected
// and skipped; rows with a blank key or name are ignored.
func LoadNamesCSV(path string) (*NameIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open names csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	ix := &NameIndex{names: map[string]string{}}
	first := true
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read names csv: %w", err)
		}
		if first {
			first = false
			if looksLikeHeader(row) {
				continue
			}
		}
		if len(row) < 2 {
			continue
		}
		key := keyFromID(row[0])
		name := strings.TrimSpace(row[1])
		if key == "" || name == "" {
			continue
		}
		ix.names[key] = name
	}
	return ix, nil
}

// OpenNamesDB loads the name index from a sqlite database produced by the
// import-regions tool.
func OpenNamesDB(path string) (*NameIndex, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open names db: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT fips, name FROM regions`)
	if err != nil {
		return nil, fmt.Errorf("query regions: %w", err)
	}
	defer rows.Close()

	ix := &NameIndex{names: map[string]string{}}
	for rows.Next() {
		var fips, name string
		if err := rows.Scan(&fips, &name); err != nil {
			return nil, fmt.Errorf("scan region row: %w", err)
		}
		key := keyFromID(fips)
		if key == "" || name == "" {
			continue
		}
		ix.names[key] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read regions: %w", err)
	}
	return ix, nil
}

func looksLikeHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	return first == "fips" || first == "key" || first == "geoid"
}
