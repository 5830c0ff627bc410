// ABOUTME: Static front-end file system for the HTTP server
// ABOUTME: Hides dotfiles and refuses directory listings without an index.html
package server

import (
	"net/http"
	"os"
	"path"
	"strings"
)

// staticFS wraps a directory so only plain front-end assets are reachable.
// Dotfiles such as .env are reported missing, and a directory is only served
// when it has an index.html.
type staticFS struct {
	root http.FileSystem
}

func newStaticFS(dir string) staticFS {
	return staticFS{root: http.Dir(dir)}
}

func (s staticFS) Open(name string) (http.File, error) {
	if hasDotSegment(name) {
		return nil, os.ErrNotExist
	}

	f, err := s.root.Open(name)
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

	index, err := s.root.Open(path.Join(name, "index.html"))
	if err != nil {
		f.Close()
		return nil, os.ErrNotExist
	}
	index.Close()
	return f, nil
}

func hasDotSegment(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
