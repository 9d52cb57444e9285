package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"rankdrift/internal/mapdata"
	"rankdrift/internal/playlist"
	"rankdrift/internal/predictor"
	"rankdrift/internal/rows"
)

// Summary counts what happened to the rows of one pass
type Summary struct {
	Rows       int
	Runs       int
	SplitRuns  int
	Classified int
	Songs      int

	Malformed         int
	InvalidDifficulty int
	PredictionFailed  int
	OutOfRange        int

	PredictorCalls int
}

// Skipped is the number of rows that did not produce an entry
func (s Summary) Skipped() int {
	return s.Malformed + s.InvalidDifficulty + s.PredictionFailed + s.OutOfRange
}

// Engine classifies a row stream into the playlist collection
type Engine struct {
	predictor predictor.Predictor
	log       *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used to report skipped rows and progress
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an engine that resolves ratings through p
func New(p predictor.Predictor, opts ...Option) *Engine {
	e := &Engine{predictor: p, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Diff is the deviation of the actual rating from the predicted one
func Diff(row mapdata.Row, predicted float64) (float64, error) {
	if _, err := mapdata.ParseDifficulty(row.Difficulty); err != nil {
		return 0, err
	}
	return row.Stars - predicted, nil
}

// Run makes one pass over src, which must be grouped by hash. Row and run
// level failures are logged, counted and skipped. The pass stops with an
// error only when the source fails, the predictor becomes unavailable or
// ctx is done; no collection is returned then.
func (e *Engine) Run(ctx context.Context, src rows.Source) (*playlist.Collection, Summary, error) {
	var summary Summary
	collection := playlist.NewCollection()

	grouper := rows.NewGrouper(src)
	grouper.OnMalformed = func(err error) {
		e.log.Warn("Skipping malformed row", zap.Error(err))
	}

	for {
		run, err := grouper.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, summary, fmt.Errorf("error reading rows: %w", err)
		}

		summary.Runs++
		if run.Split {
			summary.SplitRuns++
			e.log.Warn("Song appears in more than one run; source is not grouped by hash",
				zap.String("hash", run.Hash))
		}
		e.log.Debug("Processing song",
			zap.Int("run", summary.Runs),
			zap.String("hash", run.Hash),
			zap.Int("rows", len(run.Rows)))

		table := predictor.NewTable(e.predictor, run.Hash)
		for _, row := range run.Rows {
			err := e.classify(ctx, table, collection, row)
			if err == nil {
				summary.Classified++
				continue
			}
			if fatal(ctx, err) {
				return nil, summary, err
			}
			e.skip(&summary, row, err)
		}
	}

	collection.Sort()

	summary.Rows = grouper.Rows() + grouper.Malformed()
	summary.Malformed = grouper.Malformed()
	summary.Songs = collection.Songs()
	summary.PredictorCalls = e.predictor.Calls()
	return collection, summary, nil
}

func (e *Engine) classify(ctx context.Context, table *predictor.Table, collection *playlist.Collection, row mapdata.Row) error {
	if _, err := mapdata.ParseDifficulty(row.Difficulty); err != nil {
		return err
	}
	// rejected before the lookup so out of range rows cost no prediction
	if _, err := playlist.Bracket(row.Stars); err != nil {
		return err
	}

	predicted, err := table.Resolve(ctx, row)
	if err != nil {
		return err
	}
	diff, err := Diff(row, predicted)
	if err != nil {
		return err
	}
	id, err := playlist.Classify(row.Stars, diff)
	if err != nil {
		return err
	}

	_, err = collection.Upsert(id,
		playlist.SongKey{Name: row.Name, Hash: row.Hash},
		playlist.Difficulty{Name: row.Difficulty, Characteristic: row.Characteristic, Diff: diff})
	return err
}

func fatal(ctx context.Context, err error) bool {
	return errors.Is(err, predictor.ErrUnavailable) || ctx.Err() != nil
}

func (e *Engine) skip(summary *Summary, row mapdata.Row, err error) {
	reason := "prediction"
	switch {
	case errors.Is(err, mapdata.ErrInvalidDifficulty):
		summary.InvalidDifficulty++
		reason = "difficulty"
	case errors.Is(err, playlist.ErrOutOfRangeRating), errors.Is(err, playlist.ErrInvalidDiff):
		summary.OutOfRange++
		reason = "range"
	default:
		summary.PredictionFailed++
	}
	e.log.Warn("Skipping row",
		zap.String("reason", reason),
		zap.String("hash", row.Hash),
		zap.String("name", row.Name),
		zap.String("characteristic", row.Characteristic),
		zap.String("difficulty", row.Difficulty),
		zap.Error(err))
}
