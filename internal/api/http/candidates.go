package http

import (
	"log"
	nethttp "net/http"
	"strings"

	"github.com/mind-engage/evalboard/internal/assessment"
)

// GET /candidates?q=  candidates with their evaluations and average score.
func ListCandidatesHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		out, err := svc.ListCandidates(r.Context(), assessment.CandidateListOpts{Q: q})
		if err != nil {
			writeServiceError(w, logger, err, "candidate", "fetch candidates")
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func GetCandidateHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "candidate")
		if !ok {
			return
		}
		out, err := svc.GetCandidate(r.Context(), id)
		if err != nil {
			writeServiceError(w, logger, err, "candidate", "fetch candidate")
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func CreateCandidateHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var in assessment.CandidateInput
		if err := decode(r, &in); err != nil {
			writeMessage(w, nethttp.StatusBadRequest, "Invalid candidate data", err)
			return
		}
		out, err := svc.CreateCandidate(r.Context(), in)
		if err != nil {
			writeServiceError(w, logger, err, "candidate", "create candidate")
			return
		}
		writeJSON(w, nethttp.StatusCreated, out)
	}
}

func UpdateCandidateHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "candidate")
		if !ok {
			return
		}
		var p assessment.CandidatePatch
		if err := decode(r, &p); err != nil {
			writeMessage(w, nethttp.StatusBadRequest, "Invalid candidate data", err)
			return
		}
		out, err := svc.UpdateCandidate(r.Context(), id, p)
		if err != nil {
			writeServiceError(w, logger, err, "candidate", "update candidate")
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func DeleteCandidateHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "candidate")
		if !ok {
			return
		}
		if err := svc.DeleteCandidate(r.Context(), id); err != nil {
			writeServiceError(w, logger, err, "candidate", "delete candidate")
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}
