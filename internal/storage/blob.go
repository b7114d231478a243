package storage

import (
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}

// ImportKey returns a fresh key under imports/ for an uploaded rubric file.
// Only the base name of filename is kept.
func ImportKey(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		name = "upload"
	}
	return path.Join("imports", uuid.NewString(), name)
}
