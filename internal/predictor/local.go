package predictor

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"rankdrift/internal/mapdata"
)

// FeatureNames lists the row features a local model can weight, in vector order
var FeatureNames = []string{
	"bpm", "duration", "njs", "offset", "notes", "bombs", "obstacles", "nps",
	"length", "events", "seconds", "errors", "warns", "resets", "sageScore",
}

// Model is a linear star rating model:
// intercept + difficulty_offsets[difficulty] + sum(weights[f] * feature f)
type Model struct {
	Intercept         float64            `yaml:"intercept"`
	Weights           map[string]float64 `yaml:"weights"`
	DifficultyOffsets map[string]float64 `yaml:"difficulty_offsets"`
}

// LoadModel reads a model from a YAML file
func LoadModel(path string) (*Model, error) {
	if path == "" {
		return nil, fmt.Errorf("local predictor needs a model file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading model: %w", err)
	}
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("error parsing model %s: %w", path, err)
	}
	return &m, nil
}

// LocalPredictor evaluates a Model on each row
type LocalPredictor struct {
	basePredictor
	intercept float64
	weights   []float64
	offsets   map[mapdata.Difficulty]float64
}

// NewLocalPredictor validates the model and lays its weights out in FeatureNames order
func NewLocalPredictor(m *Model) (*LocalPredictor, error) {
	weights := make([]float64, len(FeatureNames))
	known := make(map[string]int, len(FeatureNames))
	for i, name := range FeatureNames {
		known[name] = i
	}
	for name, w := range m.Weights {
		i, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("model weights unknown feature %q", name)
		}
		weights[i] = w
	}

	offsets := make(map[mapdata.Difficulty]float64, len(m.DifficultyOffsets))
	for label, off := range m.DifficultyOffsets {
		d, err := mapdata.ParseDifficulty(label)
		if err != nil {
			return nil, fmt.Errorf("model difficulty offset: %w", err)
		}
		offsets[d] = off
	}

	return &LocalPredictor{
		basePredictor: newBasePredictor("local"),
		intercept:     m.Intercept,
		weights:       weights,
		offsets:       offsets,
	}, nil
}

// Features assembles the feature vector of a row in FeatureNames order
func Features(row mapdata.Row) ([]float64, error) {
	sage := 0.0
	if s := strings.TrimSpace(row.SageScore); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("bad sageScore %q: %w", row.SageScore, err)
		}
		sage = v
	}
	return []float64{
		row.BPM,
		row.Duration,
		row.NJS,
		row.Offset,
		float64(row.Notes),
		float64(row.Bombs),
		float64(row.Obstacles),
		row.NPS,
		row.Length,
		row.Events,
		row.Seconds,
		float64(row.Errors),
		float64(row.Warns),
		float64(row.Resets),
		sage,
	}, nil
}

// LookupOne predicts the star rating of a single row
func (p *LocalPredictor) LookupOne(ctx context.Context, row mapdata.Row) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p.countCall()

	d, err := mapdata.ParseDifficulty(row.Difficulty)
	if err != nil {
		return 0, err
	}
	x, err := Features(row)
	if err != nil {
		return 0, err
	}

	v := p.intercept + p.offsets[d] + floats.Dot(p.weights, x)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("model produced %v for %s", v, row.Hash)
	}
	return v, nil
}
