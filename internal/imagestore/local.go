package imagestore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// Local stores images as files in a single directory.
type Local struct {
	dir string
}

var _ Store = (*Local)(nil)

// NewLocal creates dir if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("imagestore: creating %s: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

// Dir is the directory images are written to.
func (l *Local) Dir() string {
	return l.dir
}

// Save writes to a temp file first and renames it into place, so a reader
// never sees a half-written image.
func (l *Local) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := NewFilename(originalName)
	dst := filepath.Join(l.dir, name)

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("imagestore: creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("imagestore: writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("imagestore: closing %s: %w", name, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("imagestore: renaming %s: %w", name, err)
	}

	return name, nil
}

// Handler serves files from the directory. Directory listings, nested paths
// and dotfiles (including in-flight temp files) are 404.
func (l *Local) Handler() http.Handler {
	fs := http.FileServer(http.Dir(l.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cleanName(r.URL.Path) == "" {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
