// Package triplog parses exported vehicle trip logs into model.Trip records.
//
// The log format is semicolon-delimited CSV, typically exported as UTF-16
// with a byte order mark. Row-level failures are collected and skipped; a
// log producing zero usable trips is the only fatal parse outcome.
package triplog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/Veraticus/miles-to-go/internal/common"
	"github.com/Veraticus/miles-to-go/internal/model"
)

const timeLayout = "2006-01-02 15:04"

// Column headers as exported by the tracker.
const (
	colStarted       = "Started"
	colStopped       = "Stopped"
	colStartAddress  = "Start address"
	colEndAddress    = "End address"
	colDistance      = "Distance (miles)"
	colStartOdometer = "Start odometer (miles)"
	colEndOdometer   = "End odometer (miles)"
	colNotes         = "User Notes"
)

// RowError records one malformed log row that was skipped during parsing.
type RowError struct {
	Err  error
	Line int
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Log is the result of parsing a trip log: the usable trips sorted by start
// time, plus the rows that had to be skipped.
type Log struct {
	Trips   []model.Trip
	Skipped []RowError
}

// ReadFile parses the trip log at path.
func ReadFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trip log: %w", err)
	}
	defer func() { _ = f.Close() }()

	log, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return log, nil
}

// Read parses a trip log from r. Input may be UTF-8 (with or without BOM)
// or UTF-16 in either byte order.
func Read(r io.Reader) (*Log, error) {
	cr := csv.NewReader(decodeReader(r))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, common.ErrEmptyLog
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols[colStarted]; !ok {
		return nil, fmt.Errorf("trip log has no %q column", colStarted)
	}

	log := &Log{}
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Skipped = append(log.Skipped, RowError{Line: line, Err: err})
			continue
		}

		// Blank spacer rows are common in exports; skip silently.
		if field(record, cols, colStarted) == "" {
			continue
		}

		trip, err := parseRow(record, cols)
		if err != nil {
			log.Skipped = append(log.Skipped, RowError{Line: line, Err: err})
			continue
		}
		log.Trips = append(log.Trips, trip)
	}

	if len(log.Trips) == 0 {
		return log, common.ErrEmptyLog
	}

	sort.SliceStable(log.Trips, func(i, j int) bool {
		return log.Trips[i].StartTime.Before(log.Trips[j].StartTime)
	})

	return log, nil
}

// Filter returns the trips starting within [start, end]. A zero start or
// end leaves that side unbounded. The end date is inclusive through the
// whole day.
func Filter(trips []model.Trip, start, end time.Time) []model.Trip {
	if start.IsZero() && end.IsZero() {
		return trips
	}

	var out []model.Trip
	for _, t := range trips {
		if !start.IsZero() && t.StartTime.Before(start) {
			continue
		}
		if !end.IsZero() && t.StartTime.After(end.Add(24*time.Hour-time.Nanosecond)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func parseRow(record []string, cols map[string]int) (model.Trip, error) {
	var trip model.Trip

	started, err := time.Parse(timeLayout, field(record, cols, colStarted))
	if err != nil {
		return trip, fmt.Errorf("bad start time: %w", err)
	}

	stoppedRaw := field(record, cols, colStopped)
	if stoppedRaw == "" {
		return trip, errors.New("missing stop time")
	}
	stopped, err := time.Parse(timeLayout, stoppedRaw)
	if err != nil {
		return trip, fmt.Errorf("bad stop time: %w", err)
	}
	if stopped.Before(started) {
		return trip, fmt.Errorf("stop time %s precedes start time %s", stoppedRaw, started.Format(timeLayout))
	}

	distance, err := parseDistance(field(record, cols, colDistance))
	if err != nil {
		return trip, err
	}

	trip = model.Trip{
		StartTime:     started,
		EndTime:       stopped,
		StartAddress:  field(record, cols, colStartAddress),
		EndAddress:    field(record, cols, colEndAddress),
		DistanceMiles: distance,
		OdometerStart: parseOptionalFloat(field(record, cols, colStartOdometer)),
		OdometerEnd:   parseOptionalFloat(field(record, cols, colEndOdometer)),
		Notes:         field(record, cols, colNotes),
	}
	return trip, nil
}

// parseDistance cleans tracker noise ("12.4 mi", thousands separators) out
// of the distance field before parsing.
func parseDistance(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, errors.New("missing distance")
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, fmt.Errorf("non-numeric distance %q", s)
	}

	d, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric distance %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative distance %q", s)
	}
	return d, nil
}

func parseOptionalFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// decodeReader normalizes the log's encoding to UTF-8. BOM-signalled
// UTF-16 and UTF-8 pass through the BOM override; BOM-less UTF-16LE (seen
// in some exports) is detected by the NUL byte after the first ASCII
// character.
func decodeReader(r io.Reader) io.Reader {
	br := &peekReader{r: r}
	head, _ := br.peek(2)

	if len(head) == 2 && head[0] != 0x00 && head[0] != 0xFF && head[0] != 0xFE && head[1] == 0x00 {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		return transform.NewReader(br, dec)
	}

	return transform.NewReader(br, unicode.BOMOverride(transform.Nop))
}

// peekReader lets decodeReader inspect the first bytes without consuming them.
type peekReader struct {
	r      io.Reader
	buf    []byte
	offset int
}

func (p *peekReader) peek(n int) ([]byte, error) {
	for len(p.buf) < n {
		chunk := make([]byte, n-len(p.buf))
		read, err := p.r.Read(chunk)
		p.buf = append(p.buf, chunk[:read]...)
		if err != nil {
			return p.buf, err
		}
	}
	return p.buf[:n], nil
}

func (p *peekReader) Read(b []byte) (int, error) {
	if p.offset < len(p.buf) {
		n := copy(b, p.buf[p.offset:])
		p.offset += n
		return n, nil
	}
	return p.r.Read(b)
}
