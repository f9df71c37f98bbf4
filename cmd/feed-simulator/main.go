// Command feed-simulator serves a wildfire snapshot feed from a merged daily
// CSV, for developing the viewer without the real data service. It speaks the
// same protocol: data_request frames in, data_broadcast frames out, plus the
// /poll fallback endpoint. A request for a date with no rows, or a date that
// fails to parse, answers with an empty snapshot rather than an error.
//
// Usage:
//
//	go run ./cmd/feed-simulator \
//	  -data data/merged_daily.csv \
//	  -addr :5000
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// csv column order expected in the merged daily file.
var columns = []string{"date", "fips", "fire_size", "lat", "lon", "fmc", "tmax", "tmin", "prcp", "wind_speed"}

// feed field names per CSV column, matching what the real service emits. The
// coordinate fields are upper-case on the wire.
var fieldNames = map[string]string{
	"fips":       "fips",
	"fire_size":  "fire_size",
	"lat":        "LATITUDE",
	"lon":        "LONGITUDE",
	"fmc":        "fmc",
	"tmax":       "tmax",
	"tmin":       "tmin",
	"prcp":       "prcp",
	"wind_speed": "wind_speed",
}

type store struct {
	byDate map[string][]map[string]any
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dataPath := flag.String("data", "", "merged daily CSV (date,fips,fire_size,lat,lon,fmc,tmax,tmin,prcp,wind_speed)")
	addr := flag.String("addr", ":5000", "listen address")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		return errors.New("missing required flag: -data")
	}

	st, err := loadCSV(*dataPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", *dataPath, err)
	}
	log.Printf("loaded %d days of data", len(st.byDate))

	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /feed", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		serveSocket(conn, st)
	})
	mux.HandleFunc("GET /poll", func(w http.ResponseWriter, r *http.Request) {
		ts, err := strconv.ParseInt(r.URL.Query().Get("time"), 10, 64)
		if err != nil {
			http.Error(w, "time must be unix seconds", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(st.payloadFor(ts))
	})

	log.Printf("feed simulator listening on %s", *addr)
	return http.ListenAndServe(*addr, mux)
}

func serveSocket(conn *websocket.Conn, st *store) {
	for {
		var f struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		if f.Event != "data_request" {
			continue
		}

		var body struct {
			Time int64 `json:"time"`
		}
		payload := map[string]any{"wildfire": []map[string]any{}}
		if err := json.Unmarshal(f.Data, &body); err == nil {
			payload = st.payloadFor(body.Time)
		}

		if err := conn.WriteJSON(map[string]any{
			"event": "data_broadcast",
			"data":  payload,
		}); err != nil {
			return
		}
	}
}

func (st *store) payloadFor(unixSeconds int64) map[string]any {
	date := time.Unix(unixSeconds, 0).Local().Format("2006-01-02")
	records := st.byDate[date]
	if records == nil {
		records = []map[string]any{}
	}
	log.Printf("request for %s: %d records", date, len(records))
	return map[string]any{"wildfire": records}
}

func loadCSV(path string) (*store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	st := &store{byDate: map[string][]map[string]any{}}
	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		line++

		date := strings.TrimSpace(row[idx["date"]])
		if date == "" {
			continue
		}
		record := make(map[string]any, len(fieldNames))
		for col, field := range fieldNames {
			raw := strings.TrimSpace(row[idx[col]])
			if raw == "" {
				continue
			}
			if col == "fips" {
				record[field] = raw
				continue
			}
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				record[field] = v
			}
		}
		st.byDate[date] = append(st.byDate[date], record)
	}
	return st, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range columns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return idx, nil
}
