package assessment

import "context"

func strPtr(s string) *string { return &s }

func demoRubrics() []RubricInput {
	return []RubricInput{
		{
			Name:        "Technical Interview",
			Description: strPtr("Comprehensive technical assessment for software engineers"),
			Categories: []Category{
				{ID: "coding", Name: "Coding Skills", Icon: "code", Color: "#2E86AB", Criteria: []Criterion{
					{ID: "problem-solving", Name: "Problem Solving", MaxScore: 10, Weight: 1},
					{ID: "code-quality", Name: "Code Quality", MaxScore: 10, Weight: 1},
				}},
				{ID: "logic", Name: "Logical Reasoning", Icon: "brain", Color: "#A23B72", Criteria: []Criterion{
					{ID: "analytical-thinking", Name: "Analytical Thinking", MaxScore: 10, Weight: 1},
				}},
				{ID: "communication", Name: "Communication", Icon: "comments", Color: "#28A745", Criteria: []Criterion{
					{ID: "clarity", Name: "Clarity & Articulation", MaxScore: 10, Weight: 1},
				}},
			},
			MaxScore: 40,
		},
		{
			Name:        "Behavior Assessment",
			Description: strPtr("Evaluates soft skills and team fit"),
			Categories: []Category{
				{ID: "teamwork", Name: "Teamwork", Icon: "users", Color: "#2E86AB", Criteria: []Criterion{
					{ID: "collaboration", Name: "Collaboration", MaxScore: 10, Weight: 1},
					{ID: "leadership", Name: "Leadership", MaxScore: 10, Weight: 1},
				}},
				{ID: "adaptability", Name: "Adaptability", Icon: "refresh", Color: "#A23B72", Criteria: []Criterion{
					{ID: "flexibility", Name: "Flexibility", MaxScore: 10, Weight: 1},
				}},
			},
			MaxScore: 30,
		},
	}
}

var demoCandidates = []CandidateInput{
	{Name: "Sarah Johnson", Email: "sarah.johnson@email.com", Position: "Frontend Developer"},
	{Name: "Michael Chen", Email: "michael.chen@email.com", Position: "Backend Developer"},
	{Name: "Emily Rodriguez", Email: "emily.rodriguez@email.com", Position: "Full Stack Developer"},
	{Name: "David Kim", Email: "david.kim@email.com", Position: "DevOps Engineer"},
}

// SeedDemo loads the demo rubrics, candidates and two completed evaluations.
// It does nothing when the store already holds rubrics.
func SeedDemo(ctx context.Context, svc *Service) error {
	existing, err := svc.ListRubrics(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	var rubrics []Rubric
	for _, in := range demoRubrics() {
		r, err := svc.CreateRubric(ctx, in)
		if err != nil {
			return err
		}
		rubrics = append(rubrics, r)
	}
	var cands []Candidate
	for _, in := range demoCandidates {
		c, err := svc.CreateCandidate(ctx, in)
		if err != nil {
			return err
		}
		cands = append(cands, c)
	}
	evals := []EvaluationInput{
		{
			CandidateID: cands[0].ID, RubricID: rubrics[0].ID,
			Scores:        map[string]float64{"problem-solving": 8, "code-quality": 7, "analytical-thinking": 8, "clarity": 9},
			EvaluatorName: "John Doe", Status: StatusCompleted,
		},
		{
			CandidateID: cands[1].ID, RubricID: rubrics[0].ID,
			Scores:        map[string]float64{"problem-solving": 9, "code-quality": 9, "analytical-thinking": 9, "clarity": 7},
			EvaluatorName: "John Doe", Status: StatusCompleted,
		},
	}
	for _, in := range evals {
		if _, err := svc.CreateEvaluation(ctx, in); err != nil {
			return err
		}
	}
	return nil
}
