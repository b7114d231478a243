package assessment

import (
	"time"

	"github.com/mind-engage/evalboard/internal/grading"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusCompleted Status = "completed"
)

type Criterion struct {
	ID       string  `json:"id" yaml:"id" validate:"required"`
	Name     string  `json:"name" yaml:"name" validate:"required"`
	MaxScore int     `json:"maxScore" yaml:"maxScore" validate:"gt=0"`
	Weight   float64 `json:"weight" yaml:"weight" validate:"gt=0"` // stored, not applied to the overall score
}

type Category struct {
	ID       string      `json:"id" yaml:"id" validate:"required"`
	Name     string      `json:"name" yaml:"name" validate:"required"`
	Icon     string      `json:"icon" yaml:"icon"`
	Color    string      `json:"color" yaml:"color"`
	Criteria []Criterion `json:"criteria" yaml:"criteria" validate:"dive"`
}

type Rubric struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Categories  []Category `json:"categories"`
	MaxScore    int        `json:"maxScore"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Candidate struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Position  string    `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

type Evaluation struct {
	ID            int64              `json:"id"`
	CandidateID   int64              `json:"candidateId"`
	RubricID      int64              `json:"rubricId"`
	Scores        map[string]float64 `json:"scores"` // criterion id -> score; absent means not scored
	OverallScore  string             `json:"overallScore"`
	Notes         *string            `json:"notes"`
	EvaluatorName string             `json:"evaluatorName"`
	Status        Status             `json:"status"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type EvaluationWithDetails struct {
	Evaluation
	Candidate Candidate `json:"candidate"`
	Rubric    Rubric    `json:"rubric"`
}

type CandidateWithEvaluations struct {
	Candidate
	Evaluations  []EvaluationWithDetails `json:"evaluations"`
	AverageScore *float64                `json:"averageScore,omitempty"`
}

// Grading returns the aggregation view of the rubric.
func (r Rubric) Grading() grading.Rubric {
	out := grading.Rubric{Categories: make([]grading.Category, len(r.Categories))}
	for i, cat := range r.Categories {
		crit := make([]grading.Criterion, len(cat.Criteria))
		for j, c := range cat.Criteria {
			crit[j] = grading.Criterion{ID: c.ID, MaxScore: float64(c.MaxScore), Weight: c.Weight}
		}
		out.Categories[i].Criteria = crit
	}
	return out
}

// CriteriaMax is the sum of every criterion's maximum.
func (r Rubric) CriteriaMax() int {
	return criteriaMax(r.Categories)
}

func criteriaMax(cats []Category) int {
	sum := 0
	for _, cat := range cats {
		for _, c := range cat.Criteria {
			sum += c.MaxScore
		}
	}
	return sum
}

func (e Evaluation) Outcome() grading.Outcome {
	return grading.Outcome{
		CandidateID: e.CandidateID,
		Completed:   e.Status == StatusCompleted,
		Score:       grading.ParseScore(e.OverallScore),
	}
}

func outcomes[T interface{ Outcome() grading.Outcome }](in []T) []grading.Outcome {
	out := make([]grading.Outcome, len(in))
	for i, e := range in {
		out[i] = e.Outcome()
	}
	return out
}
