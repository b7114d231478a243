package http

import (
	"errors"
	"log"
	nethttp "net/http"
	"strconv"

	"github.com/mind-engage/evalboard/internal/assessment"
	authmw "github.com/mind-engage/evalboard/internal/auth/middleware"
)

// GET /evaluations?candidateId=
func ListEvaluationsHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var opts assessment.EvaluationListOpts
		if v := r.URL.Query().Get("candidateId"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				writeMessage(w, nethttp.StatusBadRequest, "Invalid candidateId", err)
				return
			}
			opts.CandidateID = id
		}
		out, err := svc.ListEvaluations(r.Context(), opts)
		if err != nil {
			writeServiceError(w, logger, err, "evaluation", "fetch evaluations")
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func GetEvaluationHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "evaluation")
		if !ok {
			return
		}
		out, err := svc.GetEvaluation(r.Context(), id)
		if err != nil {
			writeServiceError(w, logger, err, "evaluation", "fetch evaluation")
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

// POST /evaluations. evaluatorName falls back to the token subject.
func CreateEvaluationHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var in assessment.EvaluationInput
		if err := decode(r, &in); err != nil {
			writeMessage(w, nethttp.StatusBadRequest, "Invalid evaluation data", err)
			return
		}
		if in.EvaluatorName == "" {
			in.EvaluatorName = authmw.SubjectFromContext(r.Context())
		}
		out, err := svc.CreateEvaluation(r.Context(), in)
		if errors.Is(err, assessment.ErrNotFound) {
			// the candidate or rubric it points at is missing
			writeMessage(w, nethttp.StatusBadRequest, "Invalid evaluation data", err)
			return
		}
		if err != nil {
			writeServiceError(w, logger, err, "evaluation", "create evaluation")
			return
		}
		writeJSON(w, nethttp.StatusCreated, out)
	}
}

func UpdateEvaluationHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "evaluation")
		if !ok {
			return
		}
		var p assessment.EvaluationPatch
		if err := decode(r, &p); err != nil {
			writeMessage(w, nethttp.StatusBadRequest, "Invalid evaluation data", err)
			return
		}
		out, err := svc.UpdateEvaluation(r.Context(), id, p)
		if err != nil {
			writeServiceError(w, logger, err, "evaluation", "update evaluation")
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func DeleteEvaluationHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, ok := idParam(w, r, "evaluation")
		if !ok {
			return
		}
		if err := svc.DeleteEvaluation(r.Context(), id); err != nil {
			writeServiceError(w, logger, err, "evaluation", "delete evaluation")
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}
