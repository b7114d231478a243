package assessment

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryStore struct {
	mu          sync.RWMutex
	rubrics     map[int64]Rubric
	candidates  map[int64]Candidate
	evaluations map[int64]Evaluation
	nextRubric  int64
	nextCand    int64
	nextEval    int64
	now         func() time.Time
}

func NewInMemoryStore() Store {
	return &memoryStore{
		rubrics:     map[int64]Rubric{},
		candidates:  map[int64]Candidate{},
		evaluations: map[int64]Evaluation{},
		now:         time.Now,
	}
}

func sortedKeys[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *memoryStore) ListRubrics(_ context.Context) ([]Rubric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Rubric, 0, len(m.rubrics))
	for _, id := range sortedKeys(m.rubrics) {
		out = append(out, m.rubrics[id])
	}
	return out, nil
}

func (m *memoryStore) GetRubric(_ context.Context, id int64) (Rubric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rubrics[id]
	if !ok {
		return Rubric{}, fmt.Errorf("rubric %d: %w", id, ErrNotFound)
	}
	return r, nil
}

func (m *memoryStore) CreateRubric(_ context.Context, r Rubric) (Rubric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRubric++
	r.ID = m.nextRubric
	r.CreatedAt = m.now().UTC()
	m.rubrics[r.ID] = r
	return r, nil
}

func (m *memoryStore) UpdateRubric(_ context.Context, r Rubric) (Rubric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.rubrics[r.ID]
	if !ok {
		return Rubric{}, fmt.Errorf("rubric %d: %w", r.ID, ErrNotFound)
	}
	r.CreatedAt = old.CreatedAt
	m.rubrics[r.ID] = r
	return r, nil
}

func (m *memoryStore) DeleteRubric(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rubrics[id]; !ok {
		return fmt.Errorf("rubric %d: %w", id, ErrNotFound)
	}
	delete(m.rubrics, id)
	return nil
}

func (m *memoryStore) ListCandidates(_ context.Context, opts CandidateListOpts) ([]Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(opts.Q))
	out := make([]Candidate, 0, len(m.candidates))
	for _, id := range sortedKeys(m.candidates) {
		c := m.candidates[id]
		if q != "" && !matchesCandidate(c, q) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func matchesCandidate(c Candidate, q string) bool {
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Email), q) ||
		strings.Contains(strings.ToLower(c.Position), q)
}

func (m *memoryStore) GetCandidate(_ context.Context, id int64) (Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.candidates[id]
	if !ok {
		return Candidate{}, fmt.Errorf("candidate %d: %w", id, ErrNotFound)
	}
	return c, nil
}

func (m *memoryStore) CreateCandidate(_ context.Context, c Candidate) (Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextCand++
	c.ID = m.nextCand
	c.CreatedAt = m.now().UTC()
	m.candidates[c.ID] = c
	return c, nil
}

func (m *memoryStore) UpdateCandidate(_ context.Context, c Candidate) (Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.candidates[c.ID]
	if !ok {
		return Candidate{}, fmt.Errorf("candidate %d: %w", c.ID, ErrNotFound)
	}
	c.CreatedAt = old.CreatedAt
	m.candidates[c.ID] = c
	return c, nil
}

func (m *memoryStore) DeleteCandidate(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.candidates[id]; !ok {
		return fmt.Errorf("candidate %d: %w", id, ErrNotFound)
	}
	delete(m.candidates, id)
	return nil
}

func (m *memoryStore) ListEvaluations(_ context.Context, opts EvaluationListOpts) ([]Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Evaluation, 0, len(m.evaluations))
	for _, id := range sortedKeys(m.evaluations) {
		e := m.evaluations[id]
		if opts.CandidateID != 0 && e.CandidateID != opts.CandidateID {
			continue
		}
		out = append(out, cloneEvaluation(e))
	}
	return out, nil
}

func (m *memoryStore) GetEvaluation(_ context.Context, id int64) (Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.evaluations[id]
	if !ok {
		return Evaluation{}, fmt.Errorf("evaluation %d: %w", id, ErrNotFound)
	}
	return cloneEvaluation(e), nil
}

func (m *memoryStore) CreateEvaluation(_ context.Context, e Evaluation) (Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEval++
	now := m.now().UTC()
	e.ID = m.nextEval
	e.CreatedAt, e.UpdatedAt = now, now
	e = cloneEvaluation(e)
	m.evaluations[e.ID] = e
	return cloneEvaluation(e), nil
}

func (m *memoryStore) UpdateEvaluation(_ context.Context, e Evaluation) (Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.evaluations[e.ID]
	if !ok {
		return Evaluation{}, fmt.Errorf("evaluation %d: %w", e.ID, ErrNotFound)
	}
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = m.now().UTC()
	e = cloneEvaluation(e)
	m.evaluations[e.ID] = e
	return cloneEvaluation(e), nil
}

func (m *memoryStore) DeleteEvaluation(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.evaluations[id]; !ok {
		return fmt.Errorf("evaluation %d: %w", id, ErrNotFound)
	}
	delete(m.evaluations, id)
	return nil
}

func (m *memoryStore) CountEvaluationsFor(_ context.Context, candidateID, rubricID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.evaluations {
		if candidateID != 0 && e.CandidateID != candidateID {
			continue
		}
		if rubricID != 0 && e.RubricID != rubricID {
			continue
		}
		n++
	}
	return n, nil
}

// scores maps are shared by reference; copy them at the store boundary.
func cloneEvaluation(e Evaluation) Evaluation {
	if e.Scores != nil {
		s := make(map[string]float64, len(e.Scores))
		for k, v := range e.Scores {
			s[k] = v
		}
		e.Scores = s
	}
	return e
}
