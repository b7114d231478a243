package http

import (
	"bytes"
	"log"
	nethttp "net/http"
	"strconv"
	"strings"

	"github.com/mind-engage/evalboard/internal/assessment"
)

func DashboardStatsHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		out, err := svc.DashboardStats(r.Context())
		if err != nil {
			writeServiceError(w, logger, err, "dashboard", "fetch dashboard stats")
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func ReportSummaryHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		out, err := svc.ReportSummary(r.Context())
		if err != nil {
			writeServiceError(w, logger, err, "report", "build report")
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

var exportHeader = []string{
	"Evaluation ID",
	"Candidate Name",
	"Candidate Email",
	"Position",
	"Rubric Name",
	"Overall Score",
	"Status",
	"Evaluator",
	"Created At",
}

// GET /export/evaluations  every evaluation as CSV, all fields quoted.
func ExportEvaluationsHandler(svc *assessment.Service, logger *log.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		evals, err := svc.ListEvaluations(r.Context(), assessment.EvaluationListOpts{})
		if err != nil {
			writeServiceError(w, logger, err, "evaluation", "export evaluations")
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="evaluations.csv"`)
		_, _ = w.Write(evaluationsCSV(evals))
	}
}

func evaluationsCSV(evals []assessment.EvaluationWithDetails) []byte {
	var buf bytes.Buffer
	writeQuotedRow(&buf, exportHeader)
	for _, e := range evals {
		buf.WriteByte('\n')
		writeQuotedRow(&buf, []string{
			strconv.FormatInt(e.ID, 10),
			e.Candidate.Name,
			e.Candidate.Email,
			e.Candidate.Position,
			e.Rubric.Name,
			e.OverallScore,
			string(e.Status),
			e.EvaluatorName,
			e.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		})
	}
	return buf.Bytes()
}

// writeQuotedRow quotes every field, doubling embedded quotes.
func writeQuotedRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
}
