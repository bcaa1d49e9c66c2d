// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package convert

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformed is returned when a CSV export cannot be turned into a result.
var ErrMalformed = errors.New("malformed distribution of preferences")

// table is a CSV export with its header resolved to column indexes.
type table struct {
	columns map[string]int
	width   int
	rows    [][]string
	// line of the first data row, for error messages
	first int
}

// readTable reads a CSV export. Rows before the header (AEC downloads
// sometimes carry a title line) are skipped; the header is the first row
// that names every required column.
func readTable(r io.Reader, required []string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	t := &table{}
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		line++

		if t.columns == nil {
			if cols, ok := header(record, required); ok {
				t.columns = cols
				t.width = len(record)
				t.first = line + 1
			}
			continue
		}
		if len(record) < t.width {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d", ErrMalformed, line, len(record), t.width)
		}
		t.rows = append(t.rows, record)
	}

	if t.columns == nil {
		return nil, fmt.Errorf("%w: header with %s not found", ErrMalformed, strings.Join(required, ", "))
	}
	if len(t.rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformed)
	}
	return t, nil
}

func header(record, required []string) (map[string]int, bool) {
	cols := make(map[string]int, len(record))
	for i, name := range record {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, false
		}
	}
	return cols, true
}

// field returns the trimmed value of a named column.
func (t *table) field(row []string, name string) string {
	return strings.TrimSpace(row[t.columns[name]])
}

func (t *table) intAt(i int, name string) (int, error) {
	v := t.field(t.rows[i], name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: invalid %s %q", ErrMalformed, t.first+i, name, v)
	}
	return n, nil
}

func (t *table) floatAt(i int, name string) (float64, error) {
	v := t.field(t.rows[i], name)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: invalid %s %q", ErrMalformed, t.first+i, name, v)
	}
	return f, nil
}

// DisplayName formats a candidate as "SURNAME, Given (Suffix)", dropping
// whichever parts are blank.
func DisplayName(given, surname, suffix string) string {
	var name string
	switch {
	case given == "":
		name = surname
	case surname == "":
		name = given
	default:
		name = surname + ", " + given
	}
	if suffix == "" {
		return name
	}
	return name + " (" + suffix + ")"
}

func fullName(given, surname string) string {
	return strings.TrimSpace(given + " " + surname)
}
