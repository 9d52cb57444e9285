package predictor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rankdrift/internal/mapdata"
)

var (
	// ErrMissingPrediction means the predictor has no value for a key
	ErrMissingPrediction = errors.New("no prediction for key")
	// ErrUnavailable means the predictor cannot be reached any more; the pass must stop
	ErrUnavailable = errors.New("predictor unavailable")
)

// Predictor is a source of predicted star ratings. A predictor implements
// at least one of BulkPredictor and RowPredictor.
type Predictor interface {
	Name() string
	// Calls is the number of lookups made so far
	Calls() int
}

// BulkPredictor returns the predictions of every difficulty of a song in one call
type BulkPredictor interface {
	Predictor
	LookupAll(ctx context.Context, hash string) (map[mapdata.Key]float64, error)
}

// RowPredictor predicts a single row from its features
type RowPredictor interface {
	Predictor
	LookupOne(ctx context.Context, row mapdata.Row) (float64, error)
}

// Kind represents the supported predictor backends
type Kind string

const (
	RemoteKind Kind = "remote"
	LocalKind  Kind = "local"
)

// Options configures the predictor built by New
type Options struct {
	URL         string
	ModelPath   string
	Timeout     time.Duration
	Delay       time.Duration
	MaxFailures int
	Logger      *zap.Logger
}

// New is a factory function that creates a predictor of the given kind
func New(kind string, opts Options) (Predictor, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	switch Kind(kind) {
	case RemoteKind:
		return NewRemotePredictor(opts.URL, opts.Timeout, opts.Delay, opts.MaxFailures, opts.Logger), nil
	case LocalKind:
		model, err := LoadModel(opts.ModelPath)
		if err != nil {
			return nil, err
		}
		local, err := NewLocalPredictor(model)
		if err != nil {
			return nil, err
		}
		return local, nil
	default:
		return nil, fmt.Errorf("unsupported predictor: %s", kind)
	}
}
