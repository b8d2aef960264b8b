package settlement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/naarimani/platform/internal/domain"
)

func floatPtr(f float64) *float64 { return &f }
func int64Ptr(n int64) *int64     { return &n }

func TestScorePrediction_UpDown(t *testing.T) {
	q := &domain.Question{PredictionType: domain.PredictionUpDown, ExactMatchPoints: 10}

	assert.Equal(t, int64(10), ScorePrediction(q, "up", &domain.Prediction{Value: "up"}))
	assert.Equal(t, int64(10), ScorePrediction(q, "Up", &domain.Prediction{Value: " UP "}))
	assert.Equal(t, int64(0), ScorePrediction(q, "up", &domain.Prediction{Value: "down"}))
}

func TestScorePrediction_MultipleChoice(t *testing.T) {
	q := &domain.Question{
		PredictionType:   domain.PredictionMultipleChoice,
		Options:          []string{"Mumbai Indians", "Chennai Super Kings"},
		ExactMatchPoints: 20,
	}

	// Text vs text
	assert.Equal(t, int64(20), ScorePrediction(q, "Chennai Super Kings",
		&domain.Prediction{Value: "chennai super kings"}))

	// Index vs text: a stored index resolves to the option it names
	assert.Equal(t, int64(20), ScorePrediction(q, "Chennai Super Kings",
		&domain.Prediction{Value: "1"}))

	// Index vs index
	assert.Equal(t, int64(20), ScorePrediction(q, "0",
		&domain.Prediction{Value: "Mumbai Indians"}))

	assert.Equal(t, int64(0), ScorePrediction(q, "Chennai Super Kings",
		&domain.Prediction{Value: "Mumbai Indians"}))
}

func TestScorePrediction_ExactValue(t *testing.T) {
	q := &domain.Question{PredictionType: domain.PredictionExactValue, ExactMatchPoints: 50}

	assert.Equal(t, int64(50), ScorePrediction(q, "184", &domain.Prediction{Value: "184"}))

	// Numeric comparison, not string comparison
	assert.Equal(t, int64(50), ScorePrediction(q, "184.0", &domain.Prediction{Value: "184"}))
	assert.Equal(t, int64(0), ScorePrediction(q, "184", &domain.Prediction{Value: "183"}))
}

func TestScorePrediction_Range(t *testing.T) {
	q := &domain.Question{
		PredictionType:   domain.PredictionRange,
		ExactMatchPoints: 50,
		NearRangePoints:  int64Ptr(20),
	}

	// Exact numeric hit earns full points
	exact := &domain.Prediction{Value: "175", RangeMin: floatPtr(170), RangeMax: floatPtr(180)}
	assert.Equal(t, int64(50), ScorePrediction(q, "175", exact))

	// Truth inside the submitted band earns near points
	near := &domain.Prediction{Value: "172", RangeMin: floatPtr(170), RangeMax: floatPtr(180)}
	assert.Equal(t, int64(20), ScorePrediction(q, "178", near))

	// Truth outside the band earns nothing
	miss := &domain.Prediction{Value: "150", RangeMin: floatPtr(145), RangeMax: floatPtr(155)}
	assert.Equal(t, int64(0), ScorePrediction(q, "178", miss))

	// Boundary values are inside the band
	edge := &domain.Prediction{Value: "165", RangeMin: floatPtr(170), RangeMax: floatPtr(180)}
	assert.Equal(t, int64(20), ScorePrediction(q, "180", edge))
	assert.Equal(t, int64(20), ScorePrediction(q, "170", edge))
}

func TestScorePrediction_RangeWithoutNearPoints(t *testing.T) {
	q := &domain.Question{PredictionType: domain.PredictionRange, ExactMatchPoints: 50}

	p := &domain.Prediction{Value: "172", RangeMin: floatPtr(170), RangeMax: floatPtr(180)}
	assert.Equal(t, int64(0), ScorePrediction(q, "178", p), "no near points configured")
	assert.Equal(t, int64(50), ScorePrediction(q, "172", p))
}

func TestScorePrediction_RangeWithoutBand(t *testing.T) {
	q := &domain.Question{
		PredictionType:   domain.PredictionRange,
		ExactMatchPoints: 50,
		NearRangePoints:  int64Ptr(20),
	}

	// A bare point prediction can only score an exact hit
	p := &domain.Prediction{Value: "175"}
	assert.Equal(t, int64(50), ScorePrediction(q, "175", p))
	assert.Equal(t, int64(0), ScorePrediction(q, "176", p))
}

func TestSortedScores_Deterministic(t *testing.T) {
	u1 := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	u2 := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	u3 := uuid.MustParse("00000000-0000-0000-0000-000000000003")

	byUser := map[uuid.UUID]int64{u2: 30, u1: 30, u3: 10}

	scores := sortedScores(byUser)
	assert.Len(t, scores, 3)
	assert.Equal(t, u1, scores[0].UserID)
	assert.Equal(t, u2, scores[1].UserID)
	assert.Equal(t, u3, scores[2].UserID)
}
