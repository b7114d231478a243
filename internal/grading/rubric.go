package grading

import (
	"math"
	"strconv"
)

// Rubric is the minimal view of a scoring template needed for aggregation.
type Rubric struct {
	Categories []Category
}

type Category struct {
	Criteria []Criterion
}

// Criterion is a leaf scoring unit. Weight is carried for completeness but is
// not applied by OverallScore.
type Criterion struct {
	ID       string
	MaxScore float64
	Weight   float64
}

// ScaleMax is the upper bound of an overall score.
const ScaleMax = 10.0

// Flatten returns every criterion in category order, then criterion order.
// OverallScore and Progress both enumerate criteria through it.
func Flatten(r Rubric) []Criterion {
	n := 0
	for _, c := range r.Categories {
		n += len(c.Criteria)
	}
	out := make([]Criterion, 0, n)
	for _, c := range r.Categories {
		out = append(out, c.Criteria...)
	}
	return out
}

// OverallScore scales the raw score total against the sum of criterion maxima
// onto [0,10]. Unscored criteria count as zero; keys that match no criterion
// are ignored.
func OverallScore(r Rubric, scores map[string]float64) float64 {
	totalPossible, totalActual := 0.0, 0.0
	for _, c := range Flatten(r) {
		totalPossible += c.MaxScore
		totalActual += scores[c.ID]
	}
	if totalPossible <= 0 {
		return 0
	}
	return totalActual / totalPossible * ScaleMax
}

// Progress is the percentage of criteria that have an entry in scores.
func Progress(r Rubric, scores map[string]float64) float64 {
	all := Flatten(r)
	if len(all) == 0 {
		return 0
	}
	done := 0
	for _, c := range all {
		if _, ok := scores[c.ID]; ok {
			done++
		}
	}
	return float64(done) / float64(len(all)) * 100
}

// RoundTo rounds half away from zero to the given number of fraction digits.
func RoundTo(v float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}

// FormatScore renders a score with exactly two fraction digits ("8.50").
func FormatScore(v float64) string {
	return strconv.FormatFloat(RoundTo(v, 2), 'f', 2, 64)
}

// ParseScore reads a stored overall score. Unparseable values read as zero.
func ParseScore(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
