package rows

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"rankdrift/internal/mapdata"
)

// ErrMalformedRow marks a record that could not be decoded into a Row.
// The source stays usable after returning it.
var ErrMalformedRow = errors.New("malformed row")

// Source yields rows one at a time and returns io.EOF when exhausted
type Source interface {
	Next() (mapdata.Row, error)
}

// headerName uses the `csv` tag on a struct field to determine its column name.
// If a field doesn't have a `csv` tag, the field name is used.
func headerName(field reflect.StructField) string {
	if tag := field.Tag.Get("csv"); tag != "" {
		return tag
	}
	return field.Name
}

// CSVSource decodes rows from a CSV stream with a header line.
// Columns are matched to Row fields by name and unknown columns are ignored.
type CSVSource struct {
	reader *csv.Reader
	// fieldIdx[i] is the column index feeding Row field i, or -1
	fieldIdx []int
	required []bool
	line     int
}

// NewCSVSource reads the header and checks that every required column is present
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range mapdata.RequiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("required column %q not found in CSV header", required)
		}
	}

	t := reflect.TypeOf(mapdata.Row{})
	fieldIdx := make([]int, t.NumField())
	required := make([]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := headerName(t.Field(i))
		idx, ok := columns[name]
		if !ok {
			idx = -1
		}
		fieldIdx[i] = idx
		required[i] = slices.Contains(mapdata.RequiredColumns, name)
	}

	return &CSVSource{reader: reader, fieldIdx: fieldIdx, required: required, line: 1}, nil
}

// Next decodes the next record
func (s *CSVSource) Next() (mapdata.Row, error) {
	record, err := s.reader.Read()
	s.line++
	if err == io.EOF {
		return mapdata.Row{}, io.EOF
	}
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return mapdata.Row{}, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, s.line, err)
		}
		return mapdata.Row{}, err
	}

	var row mapdata.Row
	v := reflect.ValueOf(&row).Elem()
	t := v.Type()
	for i, idx := range s.fieldIdx {
		if idx < 0 {
			continue
		}
		if idx >= len(record) {
			return mapdata.Row{}, fmt.Errorf("%w: line %d: missing column %q", ErrMalformedRow, s.line, headerName(t.Field(i)))
		}
		if s.required[i] && strings.TrimSpace(record[idx]) == "" {
			return mapdata.Row{}, fmt.Errorf("%w: line %d: empty column %q", ErrMalformedRow, s.line, headerName(t.Field(i)))
		}
		if err := setField(v.Field(i), record[idx]); err != nil {
			return mapdata.Row{}, fmt.Errorf("%w: line %d: column %q: %v", ErrMalformedRow, s.line, headerName(t.Field(i)), err)
		}
	}
	return row, nil
}

// setField converts a raw CSV value based on the kind of the target field
func setField(field reflect.Value, raw string) error {
	raw = strings.TrimSpace(raw)
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int64:
		if raw == "" {
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			// integer columns are sometimes exported as "12.0"
			f, ferr := strconv.ParseFloat(raw, 64)
			if ferr != nil || f != float64(int64(f)) {
				return err
			}
			n = int64(f)
		}
		field.SetInt(n)
	case reflect.Float64:
		if raw == "" {
			return nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}
