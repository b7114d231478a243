package assessment

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Command types decoded from request bodies. They are validated before the
// service turns them into model values.

type RubricInput struct {
	Name        string     `json:"name" yaml:"name" validate:"required"`
	Description *string    `json:"description" yaml:"description"`
	Categories  []Category `json:"categories" yaml:"categories" validate:"required,dive"`
	MaxScore    int        `json:"maxScore" yaml:"maxScore" validate:"gte=0"` // 0 derives the sum of criteria
}

type RubricPatch struct {
	Name        *string    `json:"name" validate:"omitnil,min=1"`
	Description *string    `json:"description"`
	Categories  []Category `json:"categories" validate:"omitempty,dive"`
	MaxScore    *int       `json:"maxScore" validate:"omitnil,gte=0"`
}

type CandidateInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Position string `json:"position" validate:"required"`
}

type CandidatePatch struct {
	Name     *string `json:"name" validate:"omitnil,min=1"`
	Email    *string `json:"email" validate:"omitnil,email"`
	Position *string `json:"position" validate:"omitnil,min=1"`
}

type EvaluationInput struct {
	CandidateID   int64              `json:"candidateId" validate:"required,gt=0"`
	RubricID      int64              `json:"rubricId" validate:"required,gt=0"`
	Scores        map[string]float64 `json:"scores" validate:"dive,gte=0"`
	OverallScore  *string            `json:"overallScore"`
	Notes         *string            `json:"notes"`
	EvaluatorName string             `json:"evaluatorName"`
	Status        Status             `json:"status" validate:"omitempty,oneof=draft completed"`
}

type EvaluationPatch struct {
	CandidateID   *int64             `json:"candidateId" validate:"omitnil,gt=0"`
	RubricID      *int64             `json:"rubricId" validate:"omitnil,gt=0"`
	Scores        map[string]float64 `json:"scores" validate:"omitempty,dive,gte=0"`
	OverallScore  *string            `json:"overallScore"`
	Notes         *string            `json:"notes"`
	EvaluatorName *string            `json:"evaluatorName" validate:"omitnil,min=1"`
	Status        *Status            `json:"status" validate:"omitnil,oneof=draft completed"`
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Fields, "; ")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags plus the cross-field rules tags cannot express.
func Validate(v any) error {
	var fields []string
	if err := validate.Struct(v); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			return err
		}
		for _, fe := range ves {
			fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	switch in := v.(type) {
	case *RubricInput:
		fields = append(fields, checkCategories(in.Categories)...)
	case *RubricPatch:
		fields = append(fields, checkCategories(in.Categories)...)
	case *EvaluationInput:
		fields = append(fields, checkScores(in.Scores)...)
	case *EvaluationPatch:
		fields = append(fields, checkScores(in.Scores)...)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// category ids and criterion ids must each be unique within a rubric.
func checkCategories(cats []Category) []string {
	var bad []string
	catSeen := map[string]bool{}
	critSeen := map[string]bool{}
	for _, cat := range cats {
		if cat.ID != "" && catSeen[cat.ID] {
			bad = append(bad, "duplicate category id "+cat.ID)
		}
		catSeen[cat.ID] = true
		for _, c := range cat.Criteria {
			if c.ID != "" && critSeen[c.ID] {
				bad = append(bad, "duplicate criterion id "+c.ID)
			}
			critSeen[c.ID] = true
		}
	}
	return bad
}

func checkScores(scores map[string]float64) []string {
	var bad []string
	for k, v := range scores {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad = append(bad, "score "+k+" is not finite")
		}
	}
	return bad
}
