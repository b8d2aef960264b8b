package domain

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus enumerates the game lifecycle states.
type GameStatus string

const (
	GameDraft           GameStatus = "draft"
	GameActive          GameStatus = "active"
	GameResultsDeclared GameStatus = "results-declared"
	GameClosed          GameStatus = "closed"
)

// PredictionType enumerates the supported question answer formats.
type PredictionType string

const (
	PredictionMultipleChoice PredictionType = "multiple-choice"
	PredictionUpDown         PredictionType = "up-down"
	PredictionRange          PredictionType = "range"
	PredictionExactValue     PredictionType = "exact-value"
)

// Game is a fantasy prediction game. Predictions are accepted while the game
// is active and now falls within [StartTime, EndTime).
type Game struct {
	ID                uuid.UUID  `json:"id"`
	CampaignID        *uuid.UUID `json:"campaign_id,omitempty"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Category          string     `json:"category"`
	GameType          string     `json:"game_type"`
	EntryCoins        int64      `json:"entry_coins"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           time.Time  `json:"end_time"`
	TotalParticipants int64      `json:"total_participants"`
	Status            GameStatus `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// AcceptsPredictions reports whether the game accepts predictions at now.
func (g *Game) AcceptsPredictions(now time.Time) bool {
	return g.Status == GameActive && !now.Before(g.StartTime) && now.Before(g.EndTime)
}

// Campaign groups games under a shared sponsor and prize pool.
type Campaign struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Sponsor        string    `json:"sponsor,omitempty"`
	PrizePoolCoins int64     `json:"prize_pool_coins"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Question is owned by a Game and immutable after creation.
type Question struct {
	ID               uuid.UUID      `json:"id"`
	GameID           uuid.UUID      `json:"game_id"`
	Position         int            `json:"position"`
	QuestionText     string         `json:"question_text"`
	PredictionType   PredictionType `json:"prediction_type"`
	Options          []string       `json:"options,omitempty"`
	MinValue         *float64       `json:"min_value,omitempty"`
	MaxValue         *float64       `json:"max_value,omitempty"`
	Unit             string         `json:"unit,omitempty"`
	ExactMatchPoints int64          `json:"exact_match_points"`
	NearRangePoints  *int64         `json:"near_range_points,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Prediction is one user's stored answer to one question within one game.
// At most one row exists per (user, game, question); re-submission before the
// game's lock time overwrites the stored value in place.
type Prediction struct {
	ID           uuid.UUID `json:"id"`
	GameID       uuid.UUID `json:"game_id"`
	QuestionID   uuid.UUID `json:"question_id"`
	UserID       uuid.UUID `json:"user_id"`
	Value        string    `json:"value"`
	RangeMin     *float64  `json:"range_min,omitempty"`
	RangeMax     *float64  `json:"range_max,omitempty"`
	PointsEarned int64     `json:"points_earned"`
	IsCorrect    bool      `json:"is_correct"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SubmitPredictionInput carries one answer through the entry gate.
type SubmitPredictionInput struct {
	GameID     uuid.UUID `json:"game_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Value      string    `json:"value"`
	RangeMin   *float64  `json:"range_min,omitempty"`
	RangeMax   *float64  `json:"range_max,omitempty"`
}

// Result is the admin-declared ground truth for a question. Immutable once
// written.
type Result struct {
	ID         uuid.UUID `json:"id"`
	GameID     uuid.UUID `json:"game_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Value      string    `json:"value"`
	Source     string    `json:"source,omitempty"`
	DeclaredBy string    `json:"declared_by"`
	DeclaredAt time.Time `json:"declared_at"`
}

// ScoringSummary is returned to admins from CalculateGameScores.
type ScoringSummary struct {
	GameID             uuid.UUID `json:"game_id"`
	ScoredPredictions  int       `json:"scored_predictions"`
	TotalPointsAwarded int64     `json:"total_points_awarded"`
	UsersCredited      int       `json:"users_credited"`
	CoinsCredited      int64     `json:"coins_credited"`
}
