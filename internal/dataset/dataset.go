// Package dataset reads the tabular inputs of the recommender: scholar
// profiles, agency proposals, publications and the analytical feature
// dataset derived from them.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/scholar-matcher/internal/textnorm"
)

var (
	// ErrNotFound is returned when a proposal identifier has no row.
	ErrNotFound = errors.New("not found")
	// ErrUnknownAgency is returned for agencies without a proposals dataset.
	ErrUnknownAgency = errors.New("unknown agency")
)

// RowError describes a malformed row. Rows with errors are skipped and the
// rest of the file is still loaded.
type RowError struct {
	Path string
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Row is one CSV record keyed by header.
type Row struct {
	Line   int
	values map[string]string
}

// Get distinguishes an absent column (ok == false) from an empty cell.
func (r Row) Get(col string) (string, bool) {
	if v, ok := r.values[col]; ok {
		return v, true
	}
	for k, v := range r.values {
		if strings.EqualFold(k, col) {
			return v, true
		}
	}
	return "", false
}

func (r Row) asMap() map[string]any {
	m := make(map[string]any, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// Table is a header plus its rows.
type Table struct {
	Path   string
	Header []string
	Rows   []Row
}

// HasColumn reports whether the header carries col, ignoring case.
func (t *Table) HasColumn(col string) bool {
	for _, h := range t.Header {
		if strings.EqualFold(h, col) {
			return true
		}
	}
	return false
}

// ReadTable reads a CSV file with a header row.
func ReadTable(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	table, err := readTable(file)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	table.Path = path
	return table, nil
}

func readTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	table := &Table{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		values := make(map[string]string, len(header))
		for i, h := range header {
			if h == "" || i >= len(record) {
				continue
			}
			values[h] = record[i]
		}
		table.Rows = append(table.Rows, Row{Line: line, values: values})
	}
	return table, nil
}

// decodeRow fills out from a row using the csv struct tags. Numeric cells
// tolerate pandas float rendering ("12.0") and blanks.
func decodeRow(row Row, out any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "csv",
		WeaklyTypedInput: true,
		DecodeHook:       cellHook,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(row.asMap())
}

func cellHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))

	switch to.Kind() {
	case reflect.String:
		if textnorm.IsMissing(s) {
			return "", nil
		}
		return data, nil
	case reflect.Int, reflect.Int64, reflect.Int32:
		if textnorm.IsMissing(s) {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		return int(f), nil
	default:
		return data, nil
	}
}
