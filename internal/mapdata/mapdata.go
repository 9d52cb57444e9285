package mapdata

import (
	"errors"
	"fmt"
)

// ErrInvalidDifficulty is returned for a difficulty label outside the five known ones.
var ErrInvalidDifficulty = errors.New("invalid difficulty label")

// Row represents one ranked level: a single song/characteristic/difficulty combination
type Row struct {
	Index           int     `csv:"index"`
	ID              string  `csv:"id"`
	Hash            string  `csv:"hash"`
	Name            string  `csv:"name"`
	SongName        string  `csv:"songName"`
	SongAuthorName  string  `csv:"songAuthorName"`
	LevelAuthorName string  `csv:"levelAuthorName"`
	Difficulty      string  `csv:"difficulty"`
	Characteristic  string  `csv:"characteristic"`
	Stars           float64 `csv:"stars"`

	// Features used only by predictors
	BPM       float64 `csv:"bpm"`
	Duration  float64 `csv:"duration"`
	SageScore string  `csv:"sageScore"` // can be empty
	NJS       float64 `csv:"njs"`
	Offset    float64 `csv:"offset"`
	Notes     int     `csv:"notes"`
	Bombs     int     `csv:"bombs"`
	Obstacles int     `csv:"obstacles"`
	NPS       float64 `csv:"nps"`
	Length    float64 `csv:"length"`
	Events    float64 `csv:"events"`
	Seconds   float64 `csv:"seconds"`
	Errors    int     `csv:"errors"`
	Warns     int     `csv:"warns"`
	Resets    int     `csv:"resets"`
}

// RequiredColumns are the columns a source must carry for the classification pass
var RequiredColumns = []string{"hash", "name", "difficulty", "characteristic", "stars"}

// Difficulty is one of the five difficulty labels
type Difficulty string

const (
	Easy       Difficulty = "Easy"
	Normal     Difficulty = "Normal"
	Hard       Difficulty = "Hard"
	Expert     Difficulty = "Expert"
	ExpertPlus Difficulty = "ExpertPlus"
)

// Difficulties lists every difficulty from easiest to hardest
var Difficulties = []Difficulty{Easy, Normal, Hard, Expert, ExpertPlus}

// ParseDifficulty validates a difficulty label
func ParseDifficulty(label string) (Difficulty, error) {
	switch d := Difficulty(label); d {
	case Easy, Normal, Hard, Expert, ExpertPlus:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, label)
	}
}

// Key identifies a predicted rating within one song
type Key struct {
	Characteristic string
	Difficulty     Difficulty
}

// String renders the key the way the prediction service names it, e.g. "Standard-ExpertPlus"
func (k Key) String() string {
	return k.Characteristic + "-" + string(k.Difficulty)
}

// ParseKey is the inverse of Key.String
func ParseKey(s string) (Key, error) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != '-' {
			continue
		}
		d, err := ParseDifficulty(s[i+1:])
		if err != nil {
			return Key{}, err
		}
		if i == 0 {
			break
		}
		return Key{Characteristic: s[:i], Difficulty: d}, nil
	}
	return Key{}, fmt.Errorf("malformed prediction key %q", s)
}

// Key returns the prediction key of the row
func (r Row) Key() (Key, error) {
	d, err := ParseDifficulty(r.Difficulty)
	if err != nil {
		return Key{}, err
	}
	return Key{Characteristic: r.Characteristic, Difficulty: d}, nil
}
