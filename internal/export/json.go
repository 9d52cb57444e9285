package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"rankdrift/internal/playlist"
)

// maxParallelWrites bounds concurrent file writes
const maxParallelWrites = 8

// Document is one serialized bucket
type Document struct {
	Name string
	Data []byte
}

// Documents serializes every bucket of the collection, in bucket order
func Documents(collection *playlist.Collection) ([]Document, error) {
	buckets := collection.Buckets()
	docs := make([]Document, 0, len(buckets))
	for _, b := range buckets {
		data, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("error encoding %s: %w", b.Title, err)
		}
		docs = append(docs, Document{Name: b.ID.FileName(), Data: data})
	}
	return docs, nil
}

// WriteJSON writes one JSON document per bucket into dir
func WriteJSON(ctx context.Context, dir string, collection *playlist.Collection) error {
	docs, err := Documents(collection)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelWrites)
	for _, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, doc.Name)
			if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
				return fmt.Errorf("error writing %s: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}
