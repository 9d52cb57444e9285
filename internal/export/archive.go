package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"rankdrift/internal/playlist"
)

// WriteArchive packs every bucket document into a single zip file
func WriteArchive(path string, collection *playlist.Collection) error {
	docs, err := Documents(collection)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating archive directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating archive: %w", err)
	}
	defer file.Close()

	zw := zip.NewWriter(file)
	modified := time.Now()
	for _, doc := range docs {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     doc.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("error adding %s to archive: %w", doc.Name, err)
		}
		if _, err := w.Write(doc.Data); err != nil {
			return fmt.Errorf("error writing %s to archive: %w", doc.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("error finishing archive: %w", err)
	}
	return file.Close()
}
