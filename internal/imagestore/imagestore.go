// Package imagestore persists uploaded profile images and serves them back.
//
// Two backends exist: Local writes into a directory that is served under
// /uploads, S3 puts objects in a bucket and redirects /uploads requests to a
// short-lived presigned URL. Either way clients only ever see the generated
// filename, never a filesystem path or bucket key.
package imagestore

import (
	"context"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/xid"
)

// Store saves image bytes under a new unique name.
type Store interface {
	// Save consumes r and returns the generated filename.
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	// Handler serves a stored image at "/<filename>".
	Handler() http.Handler
}

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// NewFilename returns an xid (time-ordered, unique per process and machine)
// followed by the lowercased extension of originalName. Extensions that are
// not short and alphanumeric are dropped.
func NewFilename(originalName string) string {
	name := xid.New().String()
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if extPattern.MatchString(ext) {
		name += ext
	}
	return name
}

// cleanName extracts a bare filename from a request path. It returns ""
// for anything that is not a single, non-hidden path element.
func cleanName(p string) string {
	p = strings.TrimPrefix(p, "/")
	if p == "" || strings.Contains(p, "/") || strings.Contains(p, `\`) {
		return ""
	}
	name := path.Base(p)
	if name != p || strings.HasPrefix(name, ".") {
		return ""
	}
	return name
}
