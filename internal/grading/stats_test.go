package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDashboardEmpty(t *testing.T) {
	assert.Equal(t, DashboardStats{}, Dashboard(nil))
	assert.Equal(t, DashboardStats{}, Dashboard([]Outcome{}))
}

func TestDashboard(t *testing.T) {
	cases := []struct {
		name string
		in   []Outcome
		want DashboardStats
	}{
		{
			name: "two completed one draft",
			in: []Outcome{
				{CandidateID: 1, Completed: true, Score: 8.0},
				{CandidateID: 2, Completed: true, Score: 8.5},
				{CandidateID: 3, Score: 4},
			},
			want: DashboardStats{ActiveAssessments: 1, CandidatesEvaluated: 2, AverageScore: 8.3, PassRate: 100},
		},
		{
			name: "same candidate twice",
			in: []Outcome{
				{CandidateID: 1, Completed: true, Score: 9},
				{CandidateID: 1, Completed: true, Score: 5},
			},
			want: DashboardStats{CandidatesEvaluated: 1, AverageScore: 7, PassRate: 50},
		},
		{
			name: "pass threshold inclusive",
			in: []Outcome{
				{CandidateID: 1, Completed: true, Score: 7},
				{CandidateID: 2, Completed: true, Score: 6.99},
				{CandidateID: 3, Completed: true, Score: 2},
			},
			want: DashboardStats{CandidatesEvaluated: 3, AverageScore: 5.3, PassRate: 33},
		},
		{
			name: "drafts only",
			in:   []Outcome{{CandidateID: 1, Score: 9}, {CandidateID: 2}},
			want: DashboardStats{ActiveAssessments: 2},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Dashboard(tc.in))
		})
	}
}

func TestCandidateAverage(t *testing.T) {
	_, ok := CandidateAverage(nil)
	assert.False(t, ok)

	_, ok = CandidateAverage([]Outcome{{Score: 9}})
	assert.False(t, ok, "drafts do not produce an average")

	avg, ok := CandidateAverage([]Outcome{{Completed: true, Score: 0}})
	assert.True(t, ok, "a zero score is still a score")
	assert.Equal(t, 0.0, avg)

	avg, ok = CandidateAverage([]Outcome{{Completed: true, Score: 8}, {Completed: true, Score: 8.5}, {Score: 1}})
	assert.True(t, ok)
	assert.Equal(t, 8.3, avg)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		score float64
		want  Verdict
		band  Band
	}{
		{10, VerdictPassed, BandExcellent},
		{9, VerdictPassed, BandExcellent},
		{8.99, VerdictPassed, BandGood},
		{7, VerdictPassed, BandGood},
		{6.99, VerdictReview, BandAverage},
		{5, VerdictReview, BandAverage},
		{4.99, VerdictRejected, BandPoor},
		{0, VerdictRejected, BandPoor},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.score), "Classify(%v)", tc.score)
		assert.Equal(t, tc.band, BandOf(tc.score), "BandOf(%v)", tc.score)
	}
}

func TestScoreDistribution(t *testing.T) {
	d := ScoreDistribution([]Outcome{
		{Completed: true, Score: 9.5},
		{Completed: true, Score: 7.5},
		{Completed: true, Score: 8},
		{Completed: true, Score: 5},
		{Completed: true, Score: 1},
		{Score: 10},
	})
	assert.Equal(t, Distribution{Excellent: 1, Good: 2, Average: 1, Poor: 1}, d)
}

func TestTopCandidates(t *testing.T) {
	in := []Ranked{{1, 6}, {2, 9}, {3, 7.5}, {4, 9}}
	got := TopCandidates(in, 3)
	assert.Equal(t, []Ranked{{2, 9}, {4, 9}, {3, 7.5}}, got)
	assert.Equal(t, []Ranked{{1, 6}, {2, 9}, {3, 7.5}, {4, 9}}, in, "input untouched")
	assert.Len(t, TopCandidates(in, 0), 4)
}
