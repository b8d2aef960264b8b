package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidatePositiveAmount rejects zero and negative coin amounts.
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return ErrValidation("amount must be positive")
	}
	return nil
}

// ValidatePredictionValue checks a submitted answer against the question's
// prediction type constraints.
func ValidatePredictionValue(q *Question, input SubmitPredictionInput) error {
	value := strings.TrimSpace(input.Value)
	if value == "" {
		return ErrInvalidPrediction("prediction value is required")
	}

	switch q.PredictionType {
	case PredictionUpDown:
		v := strings.ToLower(value)
		if v != "up" && v != "down" {
			return ErrInvalidPrediction(`up-down prediction must be "up" or "down"`)
		}

	case PredictionMultipleChoice:
		idx, err := strconv.Atoi(value)
		if err != nil {
			// Answers may also be submitted as the option text itself.
			if !containsOption(q.Options, value) {
				return ErrInvalidPrediction("prediction does not match any option")
			}
			return nil
		}
		if idx < 0 || idx >= len(q.Options) {
			return ErrInvalidPrediction(fmt.Sprintf("option index %d out of bounds (0-%d)", idx, len(q.Options)-1))
		}

	case PredictionExactValue:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return ErrInvalidPrediction("exact-value prediction must be numeric")
		}

	case PredictionRange:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return ErrInvalidPrediction("range prediction must be numeric")
		}
		if q.MinValue != nil && v < *q.MinValue {
			return ErrInvalidPrediction(fmt.Sprintf("value %v below minimum %v", v, *q.MinValue))
		}
		if q.MaxValue != nil && v > *q.MaxValue {
			return ErrInvalidPrediction(fmt.Sprintf("value %v above maximum %v", v, *q.MaxValue))
		}
		if input.RangeMin != nil && input.RangeMax != nil && *input.RangeMin > *input.RangeMax {
			return ErrInvalidPrediction("range_min must not exceed range_max")
		}

	default:
		return ErrInvalidPrediction(fmt.Sprintf("unknown prediction type %q", q.PredictionType))
	}

	return nil
}

// ValidateQuestion checks a question definition at creation time.
func ValidateQuestion(q *Question) error {
	if strings.TrimSpace(q.QuestionText) == "" {
		return ErrValidation("question text is required")
	}
	if q.ExactMatchPoints <= 0 {
		return ErrValidation("exact match points must be positive")
	}
	if q.NearRangePoints != nil && *q.NearRangePoints >= q.ExactMatchPoints {
		return ErrValidation("near range points must be below exact match points")
	}

	switch q.PredictionType {
	case PredictionMultipleChoice:
		if len(q.Options) < 2 {
			return ErrValidation("multiple-choice question needs at least 2 options")
		}
	case PredictionRange:
		if q.MinValue != nil && q.MaxValue != nil && *q.MinValue > *q.MaxValue {
			return ErrValidation("min value must not exceed max value")
		}
	case PredictionUpDown, PredictionExactValue:
	default:
		return ErrValidation(fmt.Sprintf("unknown prediction type %q", q.PredictionType))
	}

	return nil
}

func containsOption(options []string, value string) bool {
	needle := strings.ToLower(strings.TrimSpace(value))
	for _, opt := range options {
		if strings.ToLower(strings.TrimSpace(opt)) == needle {
			return true
		}
	}
	return false
}
