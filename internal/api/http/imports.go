package http

import (
	"io"
	"log"
	nethttp "net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/evalboard/internal/storage"
)

// GET /imports/{key...}  download an archived rubric upload by the key
// returned in X-Import-Key.
func GetImportHandler(bs storage.BlobStore, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		key := path.Join("imports", chi.URLParam(r, "*"))
		rc, err := bs.Get(key)
		if err != nil {
			writeMessage(w, nethttp.StatusNotFound, "Import not found", nil)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(path.Base(key)))
		if _, err := io.Copy(w, rc); err != nil {
			logger.Printf("api: stream import %s: %v", key, err)
		}
	}
}
