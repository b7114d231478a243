package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/evalboard/internal/grading"
	syncx "github.com/mind-engage/evalboard/internal/sync"
)

type fakeCache struct {
	data    map[string][]byte
	gets    int
	deletes int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.gets++
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.deletes++
	delete(c.data, key)
	return nil
}

type fixture struct {
	svc    *Service
	log    *syncx.MemoryLog
	cache  *fakeCache
	rubric Rubric
	cand   Candidate
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{log: syncx.NewMemoryLog(), cache: newFakeCache()}
	f.svc = NewService(NewInMemoryStore(), WithEvents(f.log), WithStatsCache(f.cache, time.Minute))

	var err error
	f.rubric, err = f.svc.CreateRubric(ctx, RubricInput{
		Name: "Pair",
		Categories: []Category{{ID: "c", Name: "Core", Criteria: []Criterion{
			{ID: "a", Name: "A", MaxScore: 10, Weight: 1},
			{ID: "b", Name: "B", MaxScore: 10, Weight: 1},
		}}},
	})
	require.NoError(t, err)
	f.cand, err = f.svc.CreateCandidate(ctx, CandidateInput{Name: "Ana", Email: "ana@example.com", Position: "SRE"})
	require.NoError(t, err)
	return f
}

func TestCreateRubricDerivesMaxScore(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 20, f.rubric.MaxScore)

	r, err := f.svc.CreateRubric(context.Background(), RubricInput{Name: "Fixed", Categories: []Category{}, MaxScore: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, r.MaxScore, "caller-supplied total is kept")
}

func TestCreateEvaluationDerivesOverallScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claimed := "9.99"
	e, err := f.svc.CreateEvaluation(ctx, EvaluationInput{
		CandidateID: f.cand.ID, RubricID: f.rubric.ID,
		Scores:        map[string]float64{"a": 8, "b": 7},
		OverallScore:  &claimed,
		EvaluatorName: "John",
	})
	require.NoError(t, err)
	assert.Equal(t, "7.50", e.OverallScore)
	assert.Equal(t, StatusDraft, e.Status, "status defaults to draft")

	events, err := f.log.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "EvaluationCreated", events[0].Type)
}

func TestCreateEvaluationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateEvaluation(ctx, EvaluationInput{CandidateID: 99, RubricID: f.rubric.ID, EvaluatorName: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = f.svc.CreateEvaluation(ctx, EvaluationInput{CandidateID: f.cand.ID, RubricID: 99, EvaluatorName: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))

	var ve *ValidationError
	_, err = f.svc.CreateEvaluation(ctx, EvaluationInput{CandidateID: f.cand.ID, RubricID: f.rubric.ID})
	assert.True(t, errors.As(err, &ve), "evaluator name is required")

	_, err = f.svc.CreateEvaluation(ctx, EvaluationInput{CandidateID: f.cand.ID, RubricID: f.rubric.ID, EvaluatorName: "x", Status: "archived"})
	assert.True(t, errors.As(err, &ve))

	_, err = f.svc.CreateEvaluation(ctx, EvaluationInput{CandidateID: f.cand.ID, RubricID: f.rubric.ID, EvaluatorName: "x", Scores: map[string]float64{"a": -1}})
	assert.True(t, errors.As(err, &ve))
}

func TestUpdateEvaluation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, err := f.svc.CreateEvaluation(ctx, EvaluationInput{
		CandidateID: f.cand.ID, RubricID: f.rubric.ID,
		Scores: map[string]float64{"a": 4}, EvaluatorName: "John",
	})
	require.NoError(t, err)
	assert.Equal(t, "2.00", e.OverallScore)

	completed := StatusCompleted
	upd, err := f.svc.UpdateEvaluation(ctx, e.ID, EvaluationPatch{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, upd.Status)
	assert.Equal(t, "2.00", upd.OverallScore)
	assert.Equal(t, map[string]float64{"a": 4}, upd.Scores)

	upd, err = f.svc.UpdateEvaluation(ctx, e.ID, EvaluationPatch{Scores: map[string]float64{"a": 10, "b": 9}})
	require.NoError(t, err)
	assert.Equal(t, "9.50", upd.OverallScore)
	assert.Equal(t, StatusCompleted, upd.Status, "completed evaluations stay editable")

	draft := StatusDraft
	upd, err = f.svc.UpdateEvaluation(ctx, e.ID, EvaluationPatch{Status: &draft})
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, upd.Status)

	_, err = f.svc.UpdateEvaluation(ctx, 404, EvaluationPatch{Status: &draft})
	assert.True(t, errors.Is(err, ErrNotFound))

	bad := int64(77)
	var ve *ValidationError
	_, err = f.svc.UpdateEvaluation(ctx, e.ID, EvaluationPatch{RubricID: &bad})
	require.True(t, errors.As(err, &ve), "missing rubric is bad input, not a missing evaluation")
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, ve.Error(), "rubricId 77")

	_, err = f.svc.UpdateEvaluation(ctx, e.ID, EvaluationPatch{CandidateID: &bad})
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Error(), "candidateId 77")

	kept, err := f.svc.GetEvaluation(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, f.rubric.ID, kept.RubricID)
	assert.Equal(t, f.cand.ID, kept.CandidateID)
}

func TestDeletePolicies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, err := f.svc.CreateEvaluation(ctx, EvaluationInput{CandidateID: f.cand.ID, RubricID: f.rubric.ID, EvaluatorName: "x"})
	require.NoError(t, err)

	assert.True(t, errors.Is(f.svc.DeleteCandidate(ctx, f.cand.ID), ErrConflict))
	assert.True(t, errors.Is(f.svc.DeleteRubric(ctx, f.rubric.ID), ErrConflict))
	assert.True(t, errors.Is(f.svc.DeleteCandidate(ctx, 999), ErrNotFound))

	require.NoError(t, f.svc.DeleteEvaluation(ctx, e.ID))
	require.NoError(t, f.svc.DeleteCandidate(ctx, f.cand.ID))
	require.NoError(t, f.svc.DeleteRubric(ctx, f.rubric.ID))

	events, err := f.log.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "EvaluationDeleted", events[1].Type)
}

func TestListCandidatesAverage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other, err := f.svc.CreateCandidate(ctx, CandidateInput{Name: "Bo", Email: "bo@example.com", Position: "QA"})
	require.NoError(t, err)
	zero, err := f.svc.CreateCandidate(ctx, CandidateInput{Name: "Cy", Email: "cy@example.com", Position: "QA"})
	require.NoError(t, err)

	for _, in := range []EvaluationInput{
		{CandidateID: f.cand.ID, RubricID: f.rubric.ID, Scores: map[string]float64{"a": 8, "b": 8}, Status: StatusCompleted},
		{CandidateID: f.cand.ID, RubricID: f.rubric.ID, Scores: map[string]float64{"a": 9, "b": 8}, Status: StatusCompleted},
		{CandidateID: other.ID, RubricID: f.rubric.ID, Scores: map[string]float64{"a": 10, "b": 10}, Status: StatusDraft},
		{CandidateID: zero.ID, RubricID: f.rubric.ID, Status: StatusCompleted},
	} {
		in.EvaluatorName = "John"
		_, err := f.svc.CreateEvaluation(ctx, in)
		require.NoError(t, err)
	}

	list, err := f.svc.ListCandidates(ctx, CandidateListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 3)

	require.NotNil(t, list[0].AverageScore)
	assert.Equal(t, 8.3, *list[0].AverageScore)
	assert.Len(t, list[0].Evaluations, 2)
	assert.Equal(t, "Ana", list[0].Evaluations[0].Candidate.Name)
	assert.Equal(t, "Pair", list[0].Evaluations[0].Rubric.Name)

	assert.Nil(t, list[1].AverageScore, "drafts only: not evaluated")
	require.NotNil(t, list[2].AverageScore, "scored zero is still evaluated")
	assert.Equal(t, 0.0, *list[2].AverageScore)

	filtered, err := f.svc.ListCandidates(ctx, CandidateListOpts{Q: "bo@"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.NotNil(t, filtered[0].Evaluations)
}

func TestDashboardStatsCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, grading.DashboardStats{}, st)
	assert.Contains(t, f.cache.data, statsCacheKey)

	_, err = f.svc.CreateEvaluation(ctx, EvaluationInput{
		CandidateID: f.cand.ID, RubricID: f.rubric.ID,
		Scores: map[string]float64{"a": 8, "b": 8}, EvaluatorName: "x", Status: StatusCompleted,
	})
	require.NoError(t, err)
	assert.NotContains(t, f.cache.data, statsCacheKey, "writes invalidate the cached stats")

	st, err = f.svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, grading.DashboardStats{CandidatesEvaluated: 1, AverageScore: 8, PassRate: 100}, st)

	st2, err := f.svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, st, st2)
}

// writeDuringList runs hook once, in the middle of the stats computation.
type writeDuringList struct {
	Store
	hook func()
}

func (w *writeDuringList) ListEvaluations(ctx context.Context, opts EvaluationListOpts) ([]Evaluation, error) {
	out, err := w.Store.ListEvaluations(ctx, opts)
	if w.hook != nil {
		h := w.hook
		w.hook = nil
		h()
	}
	return out, err
}

func TestDashboardStatsSkipsCacheAfterConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	store := &writeDuringList{Store: NewInMemoryStore()}
	svc := NewService(store, WithStatsCache(cache, time.Minute))

	r, err := svc.CreateRubric(ctx, RubricInput{Name: "R", Categories: []Category{{ID: "c", Name: "C", Criteria: []Criterion{
		{ID: "a", Name: "A", MaxScore: 10, Weight: 1},
	}}}})
	require.NoError(t, err)
	c, err := svc.CreateCandidate(ctx, CandidateInput{Name: "Ana", Email: "ana@example.com", Position: "SRE"})
	require.NoError(t, err)

	store.hook = func() {
		_, err := svc.CreateEvaluation(ctx, EvaluationInput{
			CandidateID: c.ID, RubricID: r.ID,
			Scores: map[string]float64{"a": 9}, EvaluatorName: "x", Status: StatusCompleted,
		})
		require.NoError(t, err)
	}
	st, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, grading.DashboardStats{}, st, "computed from the snapshot taken before the write")
	assert.NotContains(t, cache.data, statsCacheKey, "stale stats must not be cached")

	st, err = svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.CandidatesEvaluated)
	assert.Contains(t, cache.data, statsCacheKey)
}

func TestSeedDemoStats(t *testing.T) {
	svc := NewService(NewInMemoryStore())
	ctx := context.Background()
	require.NoError(t, SeedDemo(ctx, svc))
	require.NoError(t, SeedDemo(ctx, svc), "seeding twice is a no-op")

	rubrics, err := svc.ListRubrics(ctx)
	require.NoError(t, err)
	assert.Len(t, rubrics, 2)

	evals, err := svc.ListEvaluations(ctx, EvaluationListOpts{})
	require.NoError(t, err)
	require.Len(t, evals, 2)
	assert.Equal(t, "8.00", evals[0].OverallScore)
	assert.Equal(t, "8.50", evals[1].OverallScore)

	st, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, grading.DashboardStats{CandidatesEvaluated: 2, AverageScore: 8.3, PassRate: 100}, st)
}

func TestReportSummary(t *testing.T) {
	svc := NewService(NewInMemoryStore())
	ctx := context.Background()
	require.NoError(t, SeedDemo(ctx, svc))

	sum, err := svc.ReportSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, grading.Distribution{Good: 2}, sum.Distribution)
	require.Len(t, sum.TopCandidates, 2)
	assert.Equal(t, "Michael Chen", sum.TopCandidates[0].Name)
	assert.Equal(t, 8.5, sum.TopCandidates[0].AverageScore)
	assert.Equal(t, 1, sum.TopCandidates[0].CompletedCount)
	assert.Equal(t, grading.VerdictPassed, sum.TopCandidates[0].Verdict)
	require.Len(t, sum.Evaluations, 2)
	assert.Equal(t, grading.VerdictPassed, sum.Evaluations[0].Verdict)
}

func TestPreviewScore(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.PreviewScore(context.Background(), f.rubric.ID, map[string]float64{"a": 8, "ghost": 3})
	require.NoError(t, err)
	assert.Equal(t, ScorePreview{OverallScore: "4.00", Progress: 50}, p)

	_, err = f.svc.PreviewScore(context.Background(), 42, nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}
