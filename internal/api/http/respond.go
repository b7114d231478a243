package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	nethttp "net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/evalboard/internal/assessment"
)

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w nethttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w nethttp.ResponseWriter, status int, msg string, err error) {
	body := errorBody{Message: msg}
	if err != nil {
		body.Error = err.Error()
	}
	writeJSON(w, status, body)
}

// writeServiceError maps service errors onto status codes. res names the
// resource ("rubric", "candidate", ...) and action completes "Failed to ...".
func writeServiceError(w nethttp.ResponseWriter, logger *log.Logger, err error, res, action string) {
	var ve *assessment.ValidationError
	switch {
	case errors.As(err, &ve):
		writeMessage(w, nethttp.StatusBadRequest, "Invalid "+res+" data", err)
	case errors.Is(err, assessment.ErrNotFound):
		writeMessage(w, nethttp.StatusNotFound, title(res)+" not found", err)
	case errors.Is(err, assessment.ErrConflict):
		writeMessage(w, nethttp.StatusConflict, title(res)+" is still referenced by evaluations", err)
	default:
		logger.Printf("api: %s: %v", action, err)
		writeMessage(w, nethttp.StatusInternalServerError, "Failed to "+action, nil)
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// decode reads a JSON body into v. An empty body is an error.
func decode(r *nethttp.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	return nil
}

// idParam parses the {id} URL parameter. Malformed ids cannot exist, so they
// are reported as not found.
func idParam(w nethttp.ResponseWriter, r *nethttp.Request, res string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, nethttp.StatusNotFound, title(res)+" not found", nil)
		return 0, false
	}
	return id, true
}
