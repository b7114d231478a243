package assessment

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type CandidateListOpts struct {
	Q string // substring match on name, email or position, case-insensitive
}

type EvaluationListOpts struct {
	CandidateID int64 // 0 means all
}

// Store persists rubrics, candidates and evaluations. Ids are assigned by the
// store on create. Update methods receive the fully merged record.
type Store interface {
	ListRubrics(ctx context.Context) ([]Rubric, error)
	GetRubric(ctx context.Context, id int64) (Rubric, error)
	CreateRubric(ctx context.Context, r Rubric) (Rubric, error)
	UpdateRubric(ctx context.Context, r Rubric) (Rubric, error)
	DeleteRubric(ctx context.Context, id int64) error

	ListCandidates(ctx context.Context, opts CandidateListOpts) ([]Candidate, error)
	GetCandidate(ctx context.Context, id int64) (Candidate, error)
	CreateCandidate(ctx context.Context, c Candidate) (Candidate, error)
	UpdateCandidate(ctx context.Context, c Candidate) (Candidate, error)
	DeleteCandidate(ctx context.Context, id int64) error

	ListEvaluations(ctx context.Context, opts EvaluationListOpts) ([]Evaluation, error)
	GetEvaluation(ctx context.Context, id int64) (Evaluation, error)
	CreateEvaluation(ctx context.Context, e Evaluation) (Evaluation, error)
	UpdateEvaluation(ctx context.Context, e Evaluation) (Evaluation, error)
	DeleteEvaluation(ctx context.Context, id int64) error

	// CountEvaluationsFor counts evaluations referencing a candidate or rubric.
	// Pass 0 for the side that should not be filtered.
	CountEvaluationsFor(ctx context.Context, candidateID, rubricID int64) (int, error)
}
