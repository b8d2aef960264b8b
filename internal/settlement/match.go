package settlement

import (
	"math"
	"strconv"
	"strings"

	"github.com/naarimani/platform/internal/domain"
)

// ScorePrediction compares a stored prediction against the declared truth and
// returns the points earned.
//
// up-down, multiple-choice and exact-value award ExactMatchPoints on a match
// (case-insensitive trimmed string equality, numeric values compared
// numerically) and 0 otherwise. range awards ExactMatchPoints when the
// predicted value equals the truth exactly, NearRangePoints when the truth
// falls inside the prediction's declared [RangeMin, RangeMax] band without
// being an exact hit, and 0 otherwise.
func ScorePrediction(q *domain.Question, truth string, p *domain.Prediction) int64 {
	switch q.PredictionType {
	case domain.PredictionRange:
		return scoreRange(q, truth, p)
	case domain.PredictionMultipleChoice:
		if canonicalOption(q.Options, p.Value) == canonicalOption(q.Options, truth) {
			return q.ExactMatchPoints
		}
		return 0
	default: // up-down, exact-value
		if valuesMatch(p.Value, truth) {
			return q.ExactMatchPoints
		}
		return 0
	}
}

func scoreRange(q *domain.Question, truth string, p *domain.Prediction) int64 {
	truthVal, err := strconv.ParseFloat(strings.TrimSpace(truth), 64)
	if err != nil {
		// Non-numeric truth for a range question: fall back to string match.
		if valuesMatch(p.Value, truth) {
			return q.ExactMatchPoints
		}
		return 0
	}

	if predVal, err := strconv.ParseFloat(strings.TrimSpace(p.Value), 64); err == nil {
		if floatEqual(predVal, truthVal) {
			return q.ExactMatchPoints
		}
	}

	if p.RangeMin != nil && p.RangeMax != nil &&
		truthVal >= *p.RangeMin && truthVal <= *p.RangeMax {
		if q.NearRangePoints != nil {
			return *q.NearRangePoints
		}
	}

	return 0
}

// valuesMatch applies case-insensitive trimmed equality, comparing
// numerically when both sides parse as numbers.
func valuesMatch(a, b string) bool {
	na := normalize(a)
	nb := normalize(b)

	fa, errA := strconv.ParseFloat(na, 64)
	fb, errB := strconv.ParseFloat(nb, 64)
	if errA == nil && errB == nil {
		return floatEqual(fa, fb)
	}

	return na == nb
}

// canonicalOption resolves a multiple-choice answer to its option text when
// the answer was submitted as an option index.
func canonicalOption(options []string, value string) string {
	v := normalize(value)
	if idx, err := strconv.Atoi(v); err == nil && idx >= 0 && idx < len(options) {
		return normalize(options[idx])
	}
	return v
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
