package assessment

import (
	"context"
	"fmt"
	"io"
	"log"
	"errors"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/mind-engage/evalboard/internal/grading"
	syncx "github.com/mind-engage/evalboard/internal/sync"
)

// StatsCache is the subset of the cache client the service needs.
type StatsCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const statsCacheKey = "dashboard:stats"

// TopCandidatesLimit caps the comparison table in the report summary.
const TopCandidatesLimit = 10

type Service struct {
	store    Store
	events   syncx.Recorder
	cache    StatsCache
	cacheTTL time.Duration
	logger   *log.Logger

	// statsGen counts evaluation writes; stats computed across a write are
	// returned but not cached.
	statsGen atomic.Uint64
}

type Option func(*Service)

func WithEvents(r syncx.Recorder) Option { return func(s *Service) { s.events = r } }
func WithLogger(l *log.Logger) Option    { return func(s *Service) { s.logger = l } }
func WithStatsCache(c StatsCache, ttl time.Duration) Option {
	return func(s *Service) { s.cache, s.cacheTTL = c, ttl }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: log.New(io.Discard, "", 0)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ---- rubrics ----

func (s *Service) ListRubrics(ctx context.Context) ([]Rubric, error) {
	return s.store.ListRubrics(ctx)
}

func (s *Service) GetRubric(ctx context.Context, id int64) (Rubric, error) {
	return s.store.GetRubric(ctx, id)
}

func (s *Service) CreateRubric(ctx context.Context, in RubricInput) (Rubric, error) {
	if err := Validate(&in); err != nil {
		return Rubric{}, err
	}
	r := Rubric{
		Name:        in.Name,
		Description: in.Description,
		Categories:  in.Categories,
		MaxScore:    in.MaxScore,
	}
	if r.MaxScore == 0 {
		r.MaxScore = r.CriteriaMax()
	}
	return s.store.CreateRubric(ctx, r)
}

func (s *Service) UpdateRubric(ctx context.Context, id int64, p RubricPatch) (Rubric, error) {
	if err := Validate(&p); err != nil {
		return Rubric{}, err
	}
	r, err := s.store.GetRubric(ctx, id)
	if err != nil {
		return Rubric{}, err
	}
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Description != nil {
		r.Description = p.Description
	}
	if p.Categories != nil {
		r.Categories = p.Categories
	}
	if p.MaxScore != nil {
		r.MaxScore = *p.MaxScore
	}
	return s.store.UpdateRubric(ctx, r)
}

// DeleteRubric refuses to remove a rubric that evaluations still reference.
func (s *Service) DeleteRubric(ctx context.Context, id int64) error {
	if _, err := s.store.GetRubric(ctx, id); err != nil {
		return err
	}
	n, err := s.store.CountEvaluationsFor(ctx, 0, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("rubric %d is used by %d evaluation(s): %w", id, n, ErrConflict)
	}
	return s.store.DeleteRubric(ctx, id)
}

// ScorePreview is the live feedback shown while scoring.
type ScorePreview struct {
	OverallScore string  `json:"overallScore"`
	Progress     float64 `json:"progress"`
}

func (s *Service) PreviewScore(ctx context.Context, rubricID int64, scores map[string]float64) (ScorePreview, error) {
	if bad := checkScores(scores); len(bad) > 0 {
		return ScorePreview{}, &ValidationError{Fields: bad}
	}
	r, err := s.store.GetRubric(ctx, rubricID)
	if err != nil {
		return ScorePreview{}, err
	}
	g := r.Grading()
	return ScorePreview{
		OverallScore: grading.FormatScore(grading.OverallScore(g, scores)),
		Progress:     grading.RoundTo(grading.Progress(g, scores), 0),
	}, nil
}

// ---- candidates ----

func (s *Service) GetCandidate(ctx context.Context, id int64) (Candidate, error) {
	return s.store.GetCandidate(ctx, id)
}

// ListCandidates joins every candidate with its evaluations and completed average.
func (s *Service) ListCandidates(ctx context.Context, opts CandidateListOpts) ([]CandidateWithEvaluations, error) {
	cands, err := s.store.ListCandidates(ctx, opts)
	if err != nil {
		return nil, err
	}
	evals, err := s.ListEvaluations(ctx, EvaluationListOpts{})
	if err != nil {
		return nil, err
	}
	byCand := map[int64][]EvaluationWithDetails{}
	for _, e := range evals {
		byCand[e.CandidateID] = append(byCand[e.CandidateID], e)
	}
	out := make([]CandidateWithEvaluations, 0, len(cands))
	for _, c := range cands {
		ce := byCand[c.ID]
		if ce == nil {
			ce = []EvaluationWithDetails{}
		}
		cw := CandidateWithEvaluations{Candidate: c, Evaluations: ce}
		if avg, ok := grading.CandidateAverage(outcomes(ce)); ok {
			cw.AverageScore = &avg
		}
		out = append(out, cw)
	}
	return out, nil
}

func (s *Service) CreateCandidate(ctx context.Context, in CandidateInput) (Candidate, error) {
	if err := Validate(&in); err != nil {
		return Candidate{}, err
	}
	return s.store.CreateCandidate(ctx, Candidate{Name: in.Name, Email: in.Email, Position: in.Position})
}

func (s *Service) UpdateCandidate(ctx context.Context, id int64, p CandidatePatch) (Candidate, error) {
	if err := Validate(&p); err != nil {
		return Candidate{}, err
	}
	c, err := s.store.GetCandidate(ctx, id)
	if err != nil {
		return Candidate{}, err
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Position != nil {
		c.Position = *p.Position
	}
	return s.store.UpdateCandidate(ctx, c)
}

// DeleteCandidate refuses to remove a candidate that evaluations still reference.
func (s *Service) DeleteCandidate(ctx context.Context, id int64) error {
	if _, err := s.store.GetCandidate(ctx, id); err != nil {
		return err
	}
	n, err := s.store.CountEvaluationsFor(ctx, id, 0)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("candidate %d has %d evaluation(s): %w", id, n, ErrConflict)
	}
	return s.store.DeleteCandidate(ctx, id)
}

// ---- evaluations ----

func (s *Service) ListEvaluations(ctx context.Context, opts EvaluationListOpts) ([]EvaluationWithDetails, error) {
	evals, err := s.store.ListEvaluations(ctx, opts)
	if err != nil {
		return nil, err
	}
	cands, err := s.store.ListCandidates(ctx, CandidateListOpts{})
	if err != nil {
		return nil, err
	}
	rubrics, err := s.store.ListRubrics(ctx)
	if err != nil {
		return nil, err
	}
	cm := make(map[int64]Candidate, len(cands))
	for _, c := range cands {
		cm[c.ID] = c
	}
	rm := make(map[int64]Rubric, len(rubrics))
	for _, r := range rubrics {
		rm[r.ID] = r
	}
	out := make([]EvaluationWithDetails, 0, len(evals))
	for _, e := range evals {
		out = append(out, EvaluationWithDetails{Evaluation: e, Candidate: cm[e.CandidateID], Rubric: rm[e.RubricID]})
	}
	return out, nil
}

func (s *Service) GetEvaluation(ctx context.Context, id int64) (EvaluationWithDetails, error) {
	e, err := s.store.GetEvaluation(ctx, id)
	if err != nil {
		return EvaluationWithDetails{}, err
	}
	return s.details(ctx, e)
}

func (s *Service) details(ctx context.Context, e Evaluation) (EvaluationWithDetails, error) {
	c, err := s.store.GetCandidate(ctx, e.CandidateID)
	if err != nil {
		return EvaluationWithDetails{}, err
	}
	r, err := s.store.GetRubric(ctx, e.RubricID)
	if err != nil {
		return EvaluationWithDetails{}, err
	}
	return EvaluationWithDetails{Evaluation: e, Candidate: c, Rubric: r}, nil
}

func (s *Service) CreateEvaluation(ctx context.Context, in EvaluationInput) (Evaluation, error) {
	if err := Validate(&in); err != nil {
		return Evaluation{}, err
	}
	if in.EvaluatorName == "" {
		return Evaluation{}, &ValidationError{Fields: []string{"EvaluationInput.EvaluatorName failed required"}}
	}
	if _, err := s.store.GetCandidate(ctx, in.CandidateID); err != nil {
		return Evaluation{}, err
	}
	r, err := s.store.GetRubric(ctx, in.RubricID)
	if err != nil {
		return Evaluation{}, err
	}
	if in.Status == "" {
		in.Status = StatusDraft
	}
	if in.Scores == nil {
		in.Scores = map[string]float64{}
	}
	e := Evaluation{
		CandidateID:   in.CandidateID,
		RubricID:      in.RubricID,
		Scores:        in.Scores,
		OverallScore:  s.deriveOverall(r, in.Scores, in.OverallScore),
		Notes:         in.Notes,
		EvaluatorName: in.EvaluatorName,
		Status:        in.Status,
	}
	e, err = s.store.CreateEvaluation(ctx, e)
	if err != nil {
		return Evaluation{}, err
	}
	s.afterEvaluationWrite(ctx, "EvaluationCreated", e.ID, e)
	return e, nil
}

// UpdateEvaluation applies a partial update. Status changes are plain
// overwrites; completed evaluations stay editable.
func (s *Service) UpdateEvaluation(ctx context.Context, id int64, p EvaluationPatch) (Evaluation, error) {
	if err := Validate(&p); err != nil {
		return Evaluation{}, err
	}
	e, err := s.store.GetEvaluation(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	rescore := false
	if p.CandidateID != nil {
		if _, err := s.store.GetCandidate(ctx, *p.CandidateID); err != nil {
			return Evaluation{}, missingReference(err, "candidateId", *p.CandidateID)
		}
		e.CandidateID = *p.CandidateID
	}
	if p.RubricID != nil {
		e.RubricID = *p.RubricID
		rescore = true
	}
	if p.Scores != nil {
		e.Scores = p.Scores
		rescore = true
	}
	if p.Notes != nil {
		e.Notes = p.Notes
	}
	if p.EvaluatorName != nil {
		e.EvaluatorName = *p.EvaluatorName
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if rescore {
		r, err := s.store.GetRubric(ctx, e.RubricID)
		if err != nil {
			return Evaluation{}, missingReference(err, "rubricId", e.RubricID)
		}
		e.OverallScore = s.deriveOverall(r, e.Scores, p.OverallScore)
	} else if p.OverallScore != nil {
		s.logger.Printf("evaluation %d: ignoring overallScore %q without score changes", id, *p.OverallScore)
	}
	e, err = s.store.UpdateEvaluation(ctx, e)
	if err != nil {
		return Evaluation{}, err
	}
	s.afterEvaluationWrite(ctx, "EvaluationUpdated", e.ID, e)
	return e, nil
}

// missingReference turns a failed lookup of a referenced record into a
// validation error so it is not mistaken for the evaluation itself missing.
func missingReference(err error, field string, id int64) error {
	if errors.Is(err, ErrNotFound) {
		return &ValidationError{Fields: []string{fmt.Sprintf("%s %d does not exist", field, id)}}
	}
	return err
}

func (s *Service) DeleteEvaluation(ctx context.Context, id int64) error {
	if err := s.store.DeleteEvaluation(ctx, id); err != nil {
		return err
	}
	s.afterEvaluationWrite(ctx, "EvaluationDeleted", id, map[string]int64{"id": id})
	return nil
}

// deriveOverall computes the stored overall score. A client-supplied value
// that disagrees with the computed one is logged and replaced.
func (s *Service) deriveOverall(r Rubric, scores map[string]float64, claimed *string) string {
	computed := grading.FormatScore(grading.OverallScore(r.Grading(), scores))
	if claimed != nil && *claimed != "" {
		if v, err := strconv.ParseFloat(*claimed, 64); err != nil || math.Abs(v-grading.ParseScore(computed)) >= 0.005 {
			s.logger.Printf("rubric %d: client overallScore %q replaced by %s", r.ID, *claimed, computed)
		}
	}
	return computed
}

func (s *Service) afterEvaluationWrite(ctx context.Context, typ string, id int64, payload any) {
	s.statsGen.Add(1)
	if s.cache != nil {
		if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
			s.logger.Printf("stats cache invalidate: %v", err)
		}
	}
	if s.events != nil {
		if err := s.events.Record(ctx, typ, strconv.FormatInt(id, 10), payload); err != nil {
			s.logger.Printf("event log %s %d: %v", typ, id, err)
		}
	}
}

// ---- statistics ----

func (s *Service) DashboardStats(ctx context.Context) (grading.DashboardStats, error) {
	var st grading.DashboardStats
	if s.cache != nil {
		if ok, err := s.cache.GetJSON(ctx, statsCacheKey, &st); err == nil && ok {
			return st, nil
		}
	}
	gen := s.statsGen.Load()
	evals, err := s.store.ListEvaluations(ctx, EvaluationListOpts{})
	if err != nil {
		return grading.DashboardStats{}, err
	}
	st = grading.Dashboard(outcomes(evals))
	if s.cache != nil && s.statsGen.Load() == gen {
		if err := s.cache.SetJSON(ctx, statsCacheKey, st, s.cacheTTL); err != nil {
			s.logger.Printf("stats cache set: %v", err)
		}
	}
	return st, nil
}

type RankedCandidate struct {
	Candidate
	AverageScore   float64         `json:"averageScore"`
	CompletedCount int             `json:"completedCount"`
	Verdict        grading.Verdict `json:"verdict"`
}

type EvaluationRow struct {
	EvaluationWithDetails
	Verdict grading.Verdict `json:"verdict"`
}

type ReportSummary struct {
	Stats         grading.DashboardStats `json:"stats"`
	Distribution  grading.Distribution   `json:"distribution"`
	TopCandidates []RankedCandidate      `json:"topCandidates"`
	Evaluations   []EvaluationRow        `json:"evaluations"`
}

func (s *Service) ReportSummary(ctx context.Context) (ReportSummary, error) {
	cands, err := s.ListCandidates(ctx, CandidateListOpts{})
	if err != nil {
		return ReportSummary{}, err
	}
	evals, err := s.ListEvaluations(ctx, EvaluationListOpts{})
	if err != nil {
		return ReportSummary{}, err
	}
	all := outcomes(evals)
	sum := ReportSummary{
		Stats:         grading.Dashboard(all),
		Distribution:  grading.ScoreDistribution(all),
		TopCandidates: []RankedCandidate{},
		Evaluations:   make([]EvaluationRow, 0, len(evals)),
	}
	for _, e := range evals {
		sum.Evaluations = append(sum.Evaluations, EvaluationRow{
			EvaluationWithDetails: e,
			Verdict:               grading.Classify(grading.ParseScore(e.OverallScore)),
		})
	}

	byID := map[int64]CandidateWithEvaluations{}
	var ranked []grading.Ranked
	for _, c := range cands {
		if c.AverageScore == nil {
			continue
		}
		byID[c.ID] = c
		ranked = append(ranked, grading.Ranked{CandidateID: c.ID, Average: *c.AverageScore})
	}
	for _, rk := range grading.TopCandidates(ranked, TopCandidatesLimit) {
		c := byID[rk.CandidateID]
		completed := 0
		for _, e := range c.Evaluations {
			if e.Status == StatusCompleted {
				completed++
			}
		}
		sum.TopCandidates = append(sum.TopCandidates, RankedCandidate{
			Candidate:      c.Candidate,
			AverageScore:   rk.Average,
			CompletedCount: completed,
			Verdict:        grading.Classify(rk.Average),
		})
	}
	return sum, nil
}
