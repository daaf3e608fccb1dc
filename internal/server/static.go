package server

import (
	"net/http"
	"os"
	"path"
)

// staticHandler serves dir like http.FileServer but never lists a
// directory: one without an index.html is a 404.
func staticHandler(dir string) http.Handler {
	return http.FileServer(noListingFS{fs: http.Dir(dir)})
}

type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.IsDir() {
		return f, nil
	}

	index, err := n.fs.Open(path.Join(name, "index.html"))
	if err != nil {
		f.Close()
		return nil, os.ErrNotExist
	}
	index.Close()
	return f, nil
}
