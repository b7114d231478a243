package http

import (
	"io"
	"log"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/evalboard/internal/assessment"
	"github.com/mind-engage/evalboard/internal/rbac"
	"github.com/mind-engage/evalboard/internal/storage"
)

type Deps struct {
	Service        *assessment.Service
	Blobs          storage.BlobStore // optional; import uploads are archived here
	Events         EventLister       // optional
	ImportMaxBytes int64
	Logger         *log.Logger
}

// Mount registers the API routes on r. The caller attaches the identity
// middleware; every route here checks a permission for the request role.
func Mount(r chi.Router, d Deps) {
	svc := d.Service
	lg := d.Logger
	if lg == nil {
		lg = log.New(io.Discard, "", 0)
	}
	maxBytes := d.ImportMaxBytes
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}

	r.With(rbac.Require("report:view")).Get("/dashboard/stats", DashboardStatsHandler(svc, lg))
	r.With(rbac.RequireAny("report:view", "report:export")).Get("/reports/summary", ReportSummaryHandler(svc, lg))
	r.With(rbac.Require("report:export")).Get("/export/evaluations", ExportEvaluationsHandler(svc, lg))

	r.Route("/rubrics", func(r chi.Router) {
		r.With(rbac.Require("rubric:view")).Get("/", ListRubricsHandler(svc, lg))
		r.With(rbac.Require("rubric:create")).Post("/", CreateRubricHandler(svc, lg))
		r.With(rbac.Require("rubric:create")).Post("/import", ImportRubricHandler(svc, d.Blobs, maxBytes, lg))
		r.With(rbac.Require("rubric:view")).Get("/{id}", GetRubricHandler(svc, lg))
		r.With(rbac.Require("rubric:update")).Put("/{id}", UpdateRubricHandler(svc, lg))
		r.With(rbac.Require("rubric:delete")).Delete("/{id}", DeleteRubricHandler(svc, lg))
		r.With(rbac.Require("rubric:view")).Post("/{id}/preview", PreviewRubricHandler(svc, lg))
	})

	r.Route("/candidates", func(r chi.Router) {
		r.With(rbac.Require("candidate:view")).Get("/", ListCandidatesHandler(svc, lg))
		r.With(rbac.Require("candidate:create")).Post("/", CreateCandidateHandler(svc, lg))
		r.With(rbac.Require("candidate:view")).Get("/{id}", GetCandidateHandler(svc, lg))
		r.With(rbac.Require("candidate:update")).Put("/{id}", UpdateCandidateHandler(svc, lg))
		r.With(rbac.Require("candidate:delete")).Delete("/{id}", DeleteCandidateHandler(svc, lg))
	})

	r.Route("/evaluations", func(r chi.Router) {
		r.With(rbac.Require("evaluation:view")).Get("/", ListEvaluationsHandler(svc, lg))
		r.With(rbac.Require("evaluation:create")).Post("/", CreateEvaluationHandler(svc, lg))
		r.With(rbac.Require("evaluation:view")).Get("/{id}", GetEvaluationHandler(svc, lg))
		r.With(rbac.Require("evaluation:update")).Put("/{id}", UpdateEvaluationHandler(svc, lg))
		r.With(rbac.Require("evaluation:delete")).Delete("/{id}", DeleteEvaluationHandler(svc, lg))
	})

	if d.Blobs != nil {
		r.With(rbac.Require("imports:view")).Get("/imports/*", GetImportHandler(d.Blobs, lg))
	}
	if d.Events != nil {
		r.With(rbac.Require("events:view")).Get("/events", ListEventsHandler(d.Events, lg))
	}
}
