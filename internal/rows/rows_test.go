package rows

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rankdrift/internal/mapdata"
)

const table = `index,hash,name,difficulty,characteristic,stars,bpm,notes,sageScore,unused
0,A,Song1,Hard,Standard,5.2,128,512,,x
1,A,Song1,Expert,Standard,6.1,128,700,42,x
2,B,Song2,Easy,Standard,notanumber,90,100,,x
3,B,Song2,Normal,Standard,1.5,90,200.0,,x
4,C,Song3,Hard,Lawless,3.3,170,300,,x
`

func readAll(t *testing.T, src Source) ([]mapdata.Row, int) {
	t.Helper()
	var out []mapdata.Row
	malformed := 0
	for {
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			return out, malformed
		}
		if errors.Is(err, ErrMalformedRow) {
			malformed++
			continue
		}
		require.NoError(t, err)
		out = append(out, row)
	}
}

func TestCSVSourceDecodesByHeader(t *testing.T) {
	src, err := NewCSVSource(strings.NewReader(table))
	require.NoError(t, err)

	got, malformed := readAll(t, src)
	assert.Equal(t, 1, malformed)
	require.Len(t, got, 4)

	assert.Equal(t, mapdata.Row{
		Index:          0,
		Hash:           "A",
		Name:           "Song1",
		Difficulty:     "Hard",
		Characteristic: "Standard",
		Stars:          5.2,
		BPM:            128,
		Notes:          512,
	}, got[0])
	assert.Equal(t, "42", got[1].SageScore)
	assert.Equal(t, 200, got[2].Notes)
	assert.Equal(t, "Lawless", got[3].Characteristic)
}

func TestCSVSourceRequiresColumns(t *testing.T) {
	_, err := NewCSVSource(strings.NewReader("hash,name,difficulty,characteristic\nA,x,Hard,Standard\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"stars"`)

	_, err = NewCSVSource(strings.NewReader(""))
	assert.Error(t, err)
}

func TestCSVSourceShortAndEmptyRecords(t *testing.T) {
	src, err := NewCSVSource(strings.NewReader("hash,name,difficulty,characteristic,stars\nA,x,Hard\n,y,Hard,Standard,2\nB,z,Hard,Standard,2\n"))
	require.NoError(t, err)

	_, err = src.Next()
	assert.ErrorIs(t, err, ErrMalformedRow)
	_, err = src.Next()
	assert.ErrorIs(t, err, ErrMalformedRow)

	row, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, "B", row.Hash)
}

func TestGrouperRuns(t *testing.T) {
	src, err := NewCSVSource(strings.NewReader(table))
	require.NoError(t, err)

	var reported []error
	g := NewGrouper(src)
	g.OnMalformed = func(err error) { reported = append(reported, err) }

	var hashes []string
	var sizes []int
	for {
		run, err := g.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		assert.False(t, run.Split)
		hashes = append(hashes, run.Hash)
		sizes = append(sizes, len(run.Rows))
	}

	assert.Equal(t, []string{"A", "B", "C"}, hashes)
	assert.Equal(t, []int{2, 1, 1}, sizes)
	assert.Equal(t, 4, g.Rows())
	assert.Equal(t, 1, g.Malformed())
	assert.Len(t, reported, 1)

	_, err = g.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestGrouperSingleRowAndEmpty(t *testing.T) {
	g := NewGrouper(NewSliceSource([]mapdata.Row{{Hash: "A"}}))
	run, err := g.Next()
	require.NoError(t, err)
	assert.Equal(t, "A", run.Hash)
	assert.Len(t, run.Rows, 1)

	_, err = g.Next()
	assert.ErrorIs(t, err, io.EOF)

	_, err = NewGrouper(NewSliceSource(nil)).Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestGrouperFlagsSplitRuns(t *testing.T) {
	g := NewGrouper(NewSliceSource([]mapdata.Row{{Hash: "A"}, {Hash: "B"}, {Hash: "A"}}))

	var split []bool
	for {
		run, err := g.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		split = append(split, run.Split)
	}
	assert.Equal(t, []bool{false, false, true}, split)
}

type failingSource struct{ err error }

func (f failingSource) Next() (mapdata.Row, error) { return mapdata.Row{}, f.err }

func TestGrouperStopsOnSourceError(t *testing.T) {
	boom := errors.New("connection reset")
	g := NewGrouper(failingSource{err: boom})
	_, err := g.Next()
	assert.ErrorIs(t, err, boom)
	_, err = g.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSortedGroupsByHash(t *testing.T) {
	in := []mapdata.Row{
		{Hash: "B", Difficulty: "Easy"},
		{Hash: "A", Difficulty: "Hard"},
		{Hash: "B", Difficulty: "Expert"},
		{Hash: "A", Difficulty: "Normal"},
	}
	src, malformed, err := Sorted(NewSliceSource(in))
	require.NoError(t, err)
	assert.Zero(t, malformed)

	got, _ := readAll(t, src)
	var order []string
	for _, r := range got {
		order = append(order, r.Hash+"/"+r.Difficulty)
	}
	assert.Equal(t, []string{"A/Hard", "A/Normal", "B/Easy", "B/Expert"}, order)
}

func TestFetchSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		io.WriteString(w, table)
	}))
	defer srv.Close()

	body, err := Open(context.Background(), srv.URL+"/outcome.csv", "secret")
	require.NoError(t, err)
	defer body.Close()

	src, err := NewCSVSource(body)
	require.NoError(t, err)
	got, _ := readAll(t, src)
	assert.Len(t, got, 4)

	_, err = Fetch(context.Background(), srv.URL, "wrong")
	assert.Error(t, err)
}

func TestOpenLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outcome.csv")
	require.NoError(t, os.WriteFile(path, []byte(table), 0o644))

	f, err := Open(context.Background(), path, "")
	require.NoError(t, err)
	defer f.Close()

	_, err = Open(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), "")
	assert.Error(t, err)
}
