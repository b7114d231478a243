package assessment

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	empty := ""
	bad := Status("archived")
	neg := -1
	cases := []struct {
		name string
		in   any
		ok   bool
	}{
		{"candidate ok", &CandidateInput{Name: "A", Email: "a@example.com", Position: "Dev"}, true},
		{"candidate bad email", &CandidateInput{Name: "A", Email: "nope", Position: "Dev"}, false},
		{"candidate missing name", &CandidateInput{Email: "a@example.com", Position: "Dev"}, false},
		{"candidate patch empty", &CandidatePatch{}, true},
		{"candidate patch blank name", &CandidatePatch{Name: &empty}, false},
		{"rubric missing categories", &RubricInput{Name: "R"}, false},
		{"rubric zero max criterion", &RubricInput{Name: "R", Categories: []Category{{ID: "c", Name: "C", Criteria: []Criterion{{ID: "a", Name: "A", MaxScore: 0, Weight: 1}}}}}, false},
		{"rubric zero weight", &RubricInput{Name: "R", Categories: []Category{{ID: "c", Name: "C", Criteria: []Criterion{{ID: "a", Name: "A", MaxScore: 1}}}}}, false},
		{"rubric duplicate category", &RubricInput{Name: "R", Categories: []Category{{ID: "c", Name: "C"}, {ID: "c", Name: "D"}}}, false},
		{"rubric patch negative max", &RubricPatch{MaxScore: &neg}, false},
		{"evaluation ok", &EvaluationInput{CandidateID: 1, RubricID: 1, Scores: map[string]float64{"a": 3}}, true},
		{"evaluation missing ids", &EvaluationInput{}, false},
		{"evaluation NaN", &EvaluationInput{CandidateID: 1, RubricID: 1, Scores: map[string]float64{"a": math.NaN()}}, false},
		{"evaluation patch bad status", &EvaluationPatch{Status: &bad}, false},
		{"evaluation patch empty", &EvaluationPatch{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			assert.True(t, errors.As(err, &ve), "got %v", err)
		})
	}
}
