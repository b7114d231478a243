package grading

import "sort"

// Band thresholds. These are business constants.
const (
	PassThreshold      = 7.0
	ReviewThreshold    = 5.0
	ExcellentThreshold = 9.0
)

// Outcome is the minimal view of an evaluation needed for statistics.
type Outcome struct {
	CandidateID int64
	Completed   bool
	Score       float64
}

type DashboardStats struct {
	ActiveAssessments   int     `json:"activeAssessments"`
	CandidatesEvaluated int     `json:"candidatesEvaluated"`
	AverageScore        float64 `json:"averageScore"`
	PassRate            int     `json:"passRate"`
}

// Dashboard folds the full evaluation set into the dashboard figures. Drafts
// count as active assessments; everything else looks at completed outcomes only.
func Dashboard(all []Outcome) DashboardStats {
	var (
		st        DashboardStats
		completed int
		passed    int
		total     float64
		seen      = map[int64]struct{}{}
	)
	for _, o := range all {
		if !o.Completed {
			st.ActiveAssessments++
			continue
		}
		completed++
		total += o.Score
		if o.Score >= PassThreshold {
			passed++
		}
		seen[o.CandidateID] = struct{}{}
	}
	st.CandidatesEvaluated = len(seen)
	if completed > 0 {
		st.AverageScore = RoundTo(total/float64(completed), 1)
		st.PassRate = int(RoundTo(float64(passed)/float64(completed)*100, 0))
	}
	return st
}

// CandidateAverage is the mean completed score rounded to one decimal. ok is
// false when the candidate has no completed evaluation, which is distinct from
// an average of zero.
func CandidateAverage(outcomes []Outcome) (avg float64, ok bool) {
	n, total := 0, 0.0
	for _, o := range outcomes {
		if !o.Completed {
			continue
		}
		n++
		total += o.Score
	}
	if n == 0 {
		return 0, false
	}
	return RoundTo(total/float64(n), 1), true
}

type Verdict string

const (
	VerdictPassed   Verdict = "passed"
	VerdictReview   Verdict = "review"
	VerdictRejected Verdict = "rejected"
)

func Classify(score float64) Verdict {
	switch {
	case score >= PassThreshold:
		return VerdictPassed
	case score >= ReviewThreshold:
		return VerdictReview
	default:
		return VerdictRejected
	}
}

type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandAverage   Band = "average"
	BandPoor      Band = "poor"
)

func BandOf(score float64) Band {
	switch {
	case score >= ExcellentThreshold:
		return BandExcellent
	case score >= PassThreshold:
		return BandGood
	case score >= ReviewThreshold:
		return BandAverage
	default:
		return BandPoor
	}
}

type Distribution struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Average   int `json:"average"`
	Poor      int `json:"poor"`
}

// ScoreDistribution buckets completed outcomes into reporting bands.
func ScoreDistribution(all []Outcome) Distribution {
	var d Distribution
	for _, o := range all {
		if !o.Completed {
			continue
		}
		switch BandOf(o.Score) {
		case BandExcellent:
			d.Excellent++
		case BandGood:
			d.Good++
		case BandAverage:
			d.Average++
		default:
			d.Poor++
		}
	}
	return d
}

// Ranked pairs a candidate with its completed average.
type Ranked struct {
	CandidateID int64
	Average     float64
}

// TopCandidates orders candidates by descending average and keeps at most
// limit. Ties keep input order.
func TopCandidates(in []Ranked, limit int) []Ranked {
	out := append([]Ranked(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Average > out[j].Average })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
