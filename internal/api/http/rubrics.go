package http

import (
	"bytes"
	"errors"
	"io"
	"log"
	nethttp "net/http"
	"strings"

	"github.com/mind-engage/evalboard/internal/assessment"
	"github.com/mind-engage/evalboard/internal/storage"
)

func ListRubricsHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		out, err := svc.ListRubrics(r.Context())
		if err != nil {
			writeServiceError(w, logger, err, "rubric", "fetch rubrics")
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func GetRubricHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "rubric")
		if !ok {
			return
		}
		out, err := svc.GetRubric(r.Context(), id)
		if err != nil {
			writeServiceError(w, logger, err, "rubric", "fetch rubric")
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func CreateRubricHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var in assessment.RubricInput
		if err := decode(r, &in); err != nil {
			writeMessage(w, nethttp.StatusBadRequest, "Invalid rubric data", err)
			return
		}
		out, err := svc.CreateRubric(r.Context(), in)
		if err != nil {
			writeServiceError(w, logger, err, "rubric", "create rubric")
			return
		}
		writeJSON(w, nethttp.StatusCreated, out)
	}
}

func UpdateRubricHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "rubric")
		if !ok {
			return
		}
		var p assessment.RubricPatch
		if err := decode(r, &p); err != nil {
			writeMessage(w, nethttp.StatusBadRequest, "Invalid rubric data", err)
			return
		}
		out, err := svc.UpdateRubric(r.Context(), id, p)
		if err != nil {
			writeServiceError(w, logger, err, "rubric", "update rubric")
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func DeleteRubricHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "rubric")
		if !ok {
			return
		}
		if err := svc.DeleteRubric(r.Context(), id); err != nil {
			writeServiceError(w, logger, err, "rubric", "delete rubric")
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}

// POST /rubrics/{id}/preview  { "scores": { "<criterionId>": 7 } }
func PreviewRubricHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "rubric")
		if !ok {
			return
		}
		var req struct {
			Scores map[string]float64 `json:"scores"`
		}
		if err := decode(r, &req); err != nil {
			writeMessage(w, nethttp.StatusBadRequest, "Invalid scores", err)
			return
		}
		out, err := svc.PreviewScore(r.Context(), id, req.Scores)
		if err != nil {
			writeServiceError(w, logger, err, "rubric", "preview score")
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

// POST /rubrics/import  multipart form, field "file" (JSON, CSV or YAML).
// The upload is archived in the blob store before it is parsed.
func ImportRubricHandler(svc *assessment.Service, bs storage.BlobStore, maxBytes int64, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		r.Body = nethttp.MaxBytesReader(w, r.Body, maxBytes+4096)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *nethttp.MaxBytesError
			if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
				writeMessage(w, nethttp.StatusRequestEntityTooLarge, "File too large", err)
				return
			}
			writeMessage(w, nethttp.StatusBadRequest, "No file uploaded", err)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeMessage(w, nethttp.StatusBadRequest, "No file uploaded", err)
			return
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
		if err != nil {
			writeMessage(w, nethttp.StatusBadRequest, "Failed to read upload", err)
			return
		}
		if int64(len(data)) > maxBytes {
			writeMessage(w, nethttp.StatusRequestEntityTooLarge, "File too large", nil)
			return
		}

		format, err := assessment.DetectFormat(hdr.Header.Get("Content-Type"), hdr.Filename, data)
		if err != nil {
			writeMessage(w, nethttp.StatusBadRequest, "Unsupported file type. Please upload JSON, CSV or YAML", err)
			return
		}

		if bs != nil {
			key := storage.ImportKey(hdr.Filename)
			if stored, err := bs.Put(key, bytes.NewReader(data)); err != nil {
				logger.Printf("api: archive import %s: %v", key, err)
			} else {
				w.Header().Set("X-Import-Key", stored)
			}
		}

		in, err := assessment.ParseRubric(format, bytes.NewReader(data))
		if err != nil {
			writeMessage(w, nethttp.StatusBadRequest, "Failed to import rubric", err)
			return
		}
		out, err := svc.CreateRubric(r.Context(), in)
		if err != nil {
			writeServiceError(w, logger, err, "rubric", "import rubric")
			return
		}
		writeJSON(w, nethttp.StatusCreated, out)
	}
}
