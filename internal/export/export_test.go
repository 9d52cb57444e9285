package export

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rankdrift/internal/playlist"
)

func sampleCollection(t *testing.T) *playlist.Collection {
	t.Helper()
	c := playlist.NewCollection()
	id := playlist.BucketID{Bracket: 5, Direction: playlist.Overrated, Magnitude: playlist.ALittle}
	key := playlist.SongKey{Name: "Song1", Hash: "A"}
	_, err := c.Upsert(id, key, playlist.Difficulty{Name: "Hard", Characteristic: "Standard", Diff: 0.25})
	require.NoError(t, err)
	_, err = c.Upsert(id, key, playlist.Difficulty{Name: "Expert", Characteristic: "Standard", Diff: 0.375})
	require.NoError(t, err)
	c.Sort()
	return c
}

func TestDocumentsShape(t *testing.T) {
	docs, err := Documents(sampleCollection(t))
	require.NoError(t, err)
	require.Len(t, docs, playlist.BucketCount)

	var doc Document
	for _, d := range docs {
		if d.Name == "a_little_overrated_playlist_5.json" {
			doc = d
		}
	}
	require.NotEmpty(t, doc.Data)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(doc.Data, &decoded))
	assert.Equal(t, "A Little Overrated Playlist 5★", decoded["playlistTitle"])

	songs := decoded["songs"].([]any)
	require.Len(t, songs, 1)
	song := songs[0].(map[string]any)
	assert.Equal(t, "Song1", song["songName"])
	assert.Equal(t, "A", song["hash"])

	diffs := song["difficulties"].([]any)
	require.Len(t, diffs, 2)
	first := diffs[0].(map[string]any)
	assert.Equal(t, "Expert", first["name"])
	assert.Equal(t, "Standard", first["characteristic"])
	assert.Equal(t, 0.375, first["diff"])
}

func TestEmptyBucketHasEmptySongList(t *testing.T) {
	docs, err := Documents(playlist.NewCollection())
	require.NoError(t, err)
	assert.JSONEq(t, `{"playlistTitle":"A Little Overrated Playlist 0★","songs":[]}`, string(docs[0].Data))
}

func TestWriteJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "playlists")
	require.NoError(t, WriteJSON(context.Background(), dir, sampleCollection(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, playlist.BucketCount)

	data, err := os.ReadFile(filepath.Join(dir, "very_underrated_playlist_14.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Very Underrated Playlist 14★")
}

func TestWriteJSONCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WriteJSON(ctx, t.TempDir(), sampleCollection(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "playlists.zip")
	require.NoError(t, WriteArchive(path, sampleCollection(t)))

	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()
	require.Len(t, r.File, playlist.BucketCount)

	var found bool
	for _, f := range r.File {
		if f.Name != "a_little_overrated_playlist_5.json" {
			continue
		}
		found = true
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Contains(t, string(data), `"songName": "Song1"`)
	}
	assert.True(t, found)
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	collection := sampleCollection(t)
	require.NoError(t, store.Save(ctx, collection))
	// saving again replaces rather than appends
	require.NoError(t, store.Save(ctx, collection))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var name string
	var diff float64
	err = store.db.QueryRowContext(ctx,
		`SELECT difficulty, diff FROM playlist_entries WHERE hash = ? AND diff_position = 0`, "A").Scan(&name, &diff)
	require.NoError(t, err)
	assert.Equal(t, "Expert", name)
	assert.Equal(t, 0.375, diff)
}
