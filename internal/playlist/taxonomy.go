package playlist

import (
	"errors"
	"fmt"
	"math"
)

const (
	// Brackets is the number of star brackets, 0★ through 14★
	Brackets = 15
	// BucketCount is the size of the full bucket grid
	BucketCount = Brackets * 2 * 3
)

var (
	// ErrOutOfRangeRating is returned when floor(stars) falls outside [0, 14]
	ErrOutOfRangeRating = errors.New("star rating out of bracket range")
	// ErrInvalidDiff is returned for a NaN deviation
	ErrInvalidDiff = errors.New("invalid diff")
)

// Direction tells whether a level is rated above or below its prediction
type Direction int

const (
	Overrated Direction = iota
	Underrated
)

func (d Direction) String() string {
	if d == Underrated {
		return "Underrated"
	}
	return "Overrated"
}

// Magnitude is how far a level deviates from its prediction
type Magnitude int

const (
	ALittle Magnitude = iota
	Fairly
	Very
)

func (m Magnitude) String() string {
	switch m {
	case Fairly:
		return "Fairly"
	case Very:
		return "Very"
	default:
		return "A Little"
	}
}

// BucketID identifies one of the 90 playlists
type BucketID struct {
	Bracket   int
	Direction Direction
	Magnitude Magnitude
}

// Index maps the id onto [0, BucketCount)
func (id BucketID) Index() int {
	return (id.Bracket*2+int(id.Direction))*3 + int(id.Magnitude)
}

// Valid reports whether the id lies inside the grid
func (id BucketID) Valid() bool {
	return id.Bracket >= 0 && id.Bracket < Brackets &&
		(id.Direction == Overrated || id.Direction == Underrated) &&
		id.Magnitude >= ALittle && id.Magnitude <= Very
}

// Title is the human readable playlist title, e.g. "Fairly Underrated Playlist 7★"
func (id BucketID) Title() string {
	return fmt.Sprintf("%s %s Playlist %d★", id.Magnitude, id.Direction, id.Bracket)
}

// FileName is the document name the bucket is written under
func (id BucketID) FileName() string {
	prefix := "a_little"
	switch id.Magnitude {
	case Fairly:
		prefix = "fairly"
	case Very:
		prefix = "very"
	}
	dir := "overrated"
	if id.Direction == Underrated {
		dir = "underrated"
	}
	return fmt.Sprintf("%s_%s_playlist_%d.json", prefix, dir, id.Bracket)
}

func (id BucketID) String() string {
	return id.Title()
}

// AllBucketIDs returns every bucket id in index order
func AllBucketIDs() []BucketID {
	ids := make([]BucketID, 0, BucketCount)
	for b := 0; b < Brackets; b++ {
		for _, d := range []Direction{Overrated, Underrated} {
			for _, m := range []Magnitude{ALittle, Fairly, Very} {
				ids = append(ids, BucketID{Bracket: b, Direction: d, Magnitude: m})
			}
		}
	}
	return ids
}

// Bracket returns floor(stars) when it lies in [0, 14]
func Bracket(stars float64) (int, error) {
	if math.IsNaN(stars) || stars < 0 || stars >= Brackets {
		return 0, fmt.Errorf("%w: %v", ErrOutOfRangeRating, stars)
	}
	return int(math.Floor(stars)), nil
}

// Classify maps an actual rating and its deviation onto a bucket.
//
//	[0, 0.5)     a little overrated
//	[0.5, 1.0)   fairly overrated
//	[1.0, +inf)  very overrated
//	(-0.5, 0)    a little underrated
//	(-1.0, -0.5] fairly underrated
//	(-inf, -1.0] very underrated
func Classify(stars, diff float64) (BucketID, error) {
	bracket, err := Bracket(stars)
	if err != nil {
		return BucketID{}, err
	}
	if math.IsNaN(diff) {
		return BucketID{}, ErrInvalidDiff
	}

	id := BucketID{Bracket: bracket}
	switch {
	case diff >= 1.0:
		id.Direction, id.Magnitude = Overrated, Very
	case diff >= 0.5:
		id.Direction, id.Magnitude = Overrated, Fairly
	case diff >= 0:
		id.Direction, id.Magnitude = Overrated, ALittle
	case diff > -0.5:
		id.Direction, id.Magnitude = Underrated, ALittle
	case diff > -1.0:
		id.Direction, id.Magnitude = Underrated, Fairly
	default:
		id.Direction, id.Magnitude = Underrated, Very
	}
	return id, nil
}
