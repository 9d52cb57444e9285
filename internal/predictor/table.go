package predictor

import (
	"context"
	"fmt"

	"rankdrift/internal/mapdata"
)

// Table caches the predictions of one run (one song). It asks the predictor
// at most once per key: a bulk predictor once for the whole run, a row
// predictor once per distinct (characteristic, difficulty). Failures are
// cached as well. A Table must not outlive its run.
type Table struct {
	p      Predictor
	hash   string
	values map[mapdata.Key]float64
	failed map[mapdata.Key]error

	loaded  bool
	loadErr error
}

// NewTable creates an empty table for the song with the given hash
func NewTable(p Predictor, hash string) *Table {
	return &Table{
		p:      p,
		hash:   hash,
		values: make(map[mapdata.Key]float64),
		failed: make(map[mapdata.Key]error),
	}
}

// Resolve returns the predicted rating for the row's key
func (t *Table) Resolve(ctx context.Context, row mapdata.Row) (float64, error) {
	key, err := row.Key()
	if err != nil {
		return 0, err
	}
	if v, ok := t.values[key]; ok {
		return v, nil
	}
	if err, ok := t.failed[key]; ok {
		return 0, err
	}

	switch p := t.p.(type) {
	case BulkPredictor:
		if !t.loaded {
			t.loaded = true
			values, err := p.LookupAll(ctx, t.hash)
			if err != nil {
				t.loadErr = fmt.Errorf("prediction lookup for %s: %w", t.hash, err)
			}
			for k, v := range values {
				t.values[k] = v
			}
		}
		if t.loadErr != nil {
			return 0, t.loadErr
		}
		if v, ok := t.values[key]; ok {
			return v, nil
		}
		err := fmt.Errorf("%w: %s %s", ErrMissingPrediction, t.hash, key)
		t.failed[key] = err
		return 0, err
	case RowPredictor:
		v, err := p.LookupOne(ctx, row)
		if err != nil {
			err = fmt.Errorf("prediction for %s %s: %w", t.hash, key, err)
			t.failed[key] = err
			return 0, err
		}
		t.values[key] = v
		return v, nil
	default:
		return 0, fmt.Errorf("predictor %s supports neither bulk nor row lookups", t.p.Name())
	}
}

// Len is the number of cached predictions
func (t *Table) Len() int {
	return len(t.values)
}
