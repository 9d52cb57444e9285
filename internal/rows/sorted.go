package rows

import (
	"cmp"
	"errors"
	"io"
	"slices"

	"rankdrift/internal/mapdata"
)

// SliceSource serves rows from memory
type SliceSource struct {
	rows []mapdata.Row
	pos  int
}

// NewSliceSource creates a source over rows
func NewSliceSource(rows []mapdata.Row) *SliceSource {
	return &SliceSource{rows: rows}
}

// Next returns the next row
func (s *SliceSource) Next() (mapdata.Row, error) {
	if s.pos >= len(s.rows) {
		return mapdata.Row{}, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

// Sorted drains src and returns a source grouped by hash. Rows of one hash
// keep their original relative order. Malformed rows are dropped and
// counted in the second return value.
func Sorted(src Source) (*SliceSource, int, error) {
	var all []mapdata.Row
	malformed := 0
	for {
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, ErrMalformedRow) {
			malformed++
			continue
		}
		if err != nil {
			return nil, malformed, err
		}
		all = append(all, row)
	}

	slices.SortStableFunc(all, func(a, b mapdata.Row) int {
		return cmp.Compare(a.Hash, b.Hash)
	})
	return NewSliceSource(all), malformed, nil
}
