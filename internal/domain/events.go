package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventTransactionPosted       EventType = "naarimani.wallet.transaction.posted"
	EventGameEntered             EventType = "naarimani.game.entered"
	EventResultsDeclared         EventType = "naarimani.game.results.declared"
	EventPredictionScored        EventType = "naarimani.game.prediction.scored"
	EventRedemptionRequested     EventType = "naarimani.redemption.requested"
	EventRedemptionStatusChanged EventType = "naarimani.redemption.status.changed"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateWallet     AggregateType = "wallet"
	AggregateGame       AggregateType = "game"
	AggregateRedemption AggregateType = "redemption"
)

// OutboxDraft is the payload written to the event_outbox table. Events are
// published to Kafka by the outbox poller; the external notifier subscribes
// to them, never the other way around.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// NewTransactionPostedEvent creates the standard wallet event for a ledger
// entry.
func NewTransactionPostedEvent(tx *CoinTransaction) OutboxDraft {
	payload, _ := json.Marshal(tx)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateWallet,
		AggregateID:   tx.UserID.String(),
		EventType:     EventTransactionPosted,
		PartitionKey:  tx.UserID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewGameEnteredEvent records a user's first prediction for a game.
func NewGameEnteredEvent(gameID, userID uuid.UUID, entryCoins int64) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"game_id":     gameID.String(),
		"user_id":     userID.String(),
		"entry_coins": entryCoins,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateGame,
		AggregateID:   gameID.String(),
		EventType:     EventGameEntered,
		PartitionKey:  gameID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewResultsDeclaredEvent records result declaration for a game.
func NewResultsDeclaredEvent(gameID uuid.UUID, declaredBy string, questions int) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"game_id":     gameID.String(),
		"declared_by": declaredBy,
		"questions":   questions,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateGame,
		AggregateID:   gameID.String(),
		EventType:     EventResultsDeclared,
		PartitionKey:  gameID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewPredictionScoredEvent records per-user scoring completion for a game.
func NewPredictionScoredEvent(gameID, userID uuid.UUID, points, coins int64) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"game_id": gameID.String(),
		"user_id": userID.String(),
		"points":  points,
		"coins":   coins,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateGame,
		AggregateID:   gameID.String(),
		EventType:     EventPredictionScored,
		PartitionKey:  userID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewRedemptionEvent records a redemption request or status change.
func NewRedemptionEvent(evtType EventType, redemption *UserRedemption) OutboxDraft {
	payload, _ := json.Marshal(redemption)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateRedemption,
		AggregateID:   redemption.ID.String(),
		EventType:     evtType,
		PartitionKey:  redemption.UserID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
