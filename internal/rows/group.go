package rows

import (
	"errors"
	"io"

	"rankdrift/internal/mapdata"
)

// Run is a maximal sequence of consecutive rows sharing one hash
type Run struct {
	Hash string
	Rows []mapdata.Row
	// Split is set when this hash already had an earlier run, meaning the
	// source was not grouped by song
	Split bool
}

// Grouper partitions a source that is already grouped by hash into runs.
// It only looks at Row.Hash. Malformed rows are skipped and handed to
// OnMalformed; any other source error stops the grouper.
type Grouper struct {
	src         Source
	pending     *mapdata.Row
	seen        map[string]struct{}
	done        bool
	rows        int
	malformed   int
	OnMalformed func(error)
}

// NewGrouper creates a Grouper reading from src
func NewGrouper(src Source) *Grouper {
	return &Grouper{src: src, seen: make(map[string]struct{})}
}

// Next returns the next run, or io.EOF once the source is exhausted
func (g *Grouper) Next() (Run, error) {
	if g.done {
		return Run{}, io.EOF
	}

	var run Run
	if g.pending != nil {
		run.Hash = g.pending.Hash
		run.Rows = append(run.Rows, *g.pending)
		g.pending = nil
	}

	for {
		row, err := g.src.Next()
		if errors.Is(err, io.EOF) {
			g.done = true
			if len(run.Rows) == 0 {
				return Run{}, io.EOF
			}
			return g.flush(run), nil
		}
		if errors.Is(err, ErrMalformedRow) {
			g.malformed++
			if g.OnMalformed != nil {
				g.OnMalformed(err)
			}
			continue
		}
		if err != nil {
			g.done = true
			return Run{}, err
		}

		g.rows++
		if len(run.Rows) == 0 {
			run.Hash = row.Hash
		} else if row.Hash != run.Hash {
			g.pending = &row
			return g.flush(run), nil
		}
		run.Rows = append(run.Rows, row)
	}
}

func (g *Grouper) flush(run Run) Run {
	if _, ok := g.seen[run.Hash]; ok {
		run.Split = true
	}
	g.seen[run.Hash] = struct{}{}
	return run
}

// Rows is the number of well-formed rows read so far
func (g *Grouper) Rows() int {
	return g.rows
}

// Malformed is the number of rows skipped because they could not be decoded
func (g *Grouper) Malformed() int {
	return g.malformed
}
