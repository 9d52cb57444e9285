package export

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"rankdrift/internal/playlist"
)

const schema = `
CREATE TABLE IF NOT EXISTS playlist_entries (
	bucket_title   TEXT    NOT NULL,
	bracket        INTEGER NOT NULL,
	direction      TEXT    NOT NULL,
	magnitude      TEXT    NOT NULL,
	song_position  INTEGER NOT NULL,
	song_name      TEXT    NOT NULL,
	hash           TEXT    NOT NULL,
	diff_position  INTEGER NOT NULL,
	difficulty     TEXT    NOT NULL,
	characteristic TEXT    NOT NULL,
	diff           REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_playlist_entries_hash ON playlist_entries(hash);
`

// SQLiteStore keeps the classified entries of a pass in a sqlite database
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save replaces the stored entries with those of the collection, one row per
// difficulty, keeping the sorted positions
func (s *SQLiteStore) Save(ctx context.Context, collection *playlist.Collection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_entries`); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO playlist_entries
		(bucket_title, bracket, direction, magnitude, song_position, song_name, hash, diff_position, difficulty, characteristic, diff)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range collection.Buckets() {
		for si, song := range b.Songs {
			for di, d := range song.Difficulties {
				if _, err := stmt.ExecContext(ctx,
					b.Title, b.ID.Bracket, b.ID.Direction.String(), b.ID.Magnitude.String(),
					si, song.SongName, song.Hash, di, d.Name, d.Characteristic, d.Diff,
				); err != nil {
					return fmt.Errorf("inserting %s/%s: %w", song.Hash, d.Name, err)
				}
			}
		}
	}
	return tx.Commit()
}

// Count returns the number of stored entries
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM playlist_entries`).Scan(&n)
	return n, err
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
