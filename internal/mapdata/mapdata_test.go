package mapdata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDifficulty(t *testing.T) {
	for _, d := range Difficulties {
		got, err := ParseDifficulty(string(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	for _, bad := range []string{"", "expert", "Expert+", "Insane"} {
		_, err := ParseDifficulty(bad)
		assert.True(t, errors.Is(err, ErrInvalidDifficulty), "label %q", bad)
	}
}

func TestKeyRoundTrip(t *testing.T) {
	k := Key{Characteristic: "Standard", Difficulty: ExpertPlus}
	assert.Equal(t, "Standard-ExpertPlus", k.String())

	got, err := ParseKey("Standard-ExpertPlus")
	require.NoError(t, err)
	assert.Equal(t, k, got)

	got, err = ParseKey("No-Arrows-Hard")
	require.NoError(t, err)
	assert.Equal(t, Key{Characteristic: "No-Arrows", Difficulty: Hard}, got)
}

func TestParseKeyErrors(t *testing.T) {
	for _, s := range []string{"", "Standard", "-Hard", "Standard-Insane"} {
		_, err := ParseKey(s)
		assert.Error(t, err, s)
	}
}

func TestRowKey(t *testing.T) {
	k, err := Row{Characteristic: "Lawless", Difficulty: "Normal"}.Key()
	require.NoError(t, err)
	assert.Equal(t, Key{Characteristic: "Lawless", Difficulty: Normal}, k)

	_, err = Row{Characteristic: "Standard", Difficulty: "Impossible"}.Key()
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
}
