package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naarimani/platform/internal/domain"
	"github.com/naarimani/platform/internal/repository"
)

// CatalogService is the read-mostly game registry: game definitions,
// question sets and campaign groupings. Writes happen only through the
// admin operations.
type CatalogService struct {
	pool   *pgxpool.Pool
	games  repository.GameRepository
	logger *slog.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(pool *pgxpool.Pool, games repository.GameRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{pool: pool, games: games, logger: logger}
}

// GetGame returns a game by ID.
func (s *CatalogService) GetGame(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	game, err := s.games.FindByID(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find game", err)
	}
	if game == nil {
		return nil, domain.ErrNotFound("game", id.String())
	}
	return game, nil
}

// IsActive reports whether the game accepts predictions at now.
func (s *CatalogService) IsActive(game *domain.Game, now time.Time) bool {
	return game.AcceptsPredictions(now)
}

// ListGames returns games filtered by optional status and category.
func (s *CatalogService) ListGames(ctx context.Context, status, category string, limit int) ([]domain.Game, error) {
	games, err := s.games.List(ctx, s.pool, status, category, limit)
	if err != nil {
		return nil, domain.ErrInternal("list games", err)
	}
	return games, nil
}

// ListQuestions returns the game's questions in position order.
func (s *CatalogService) ListQuestions(ctx context.Context, gameID uuid.UUID) ([]domain.Question, error) {
	game, err := s.games.FindByID(ctx, s.pool, gameID)
	if err != nil {
		return nil, domain.ErrInternal("find game", err)
	}
	if game == nil {
		return nil, domain.ErrNotFound("game", gameID.String())
	}

	questions, err := s.games.ListQuestions(ctx, s.pool, gameID)
	if err != nil {
		return nil, domain.ErrInternal("list questions", err)
	}
	return questions, nil
}

// ListCampaigns returns active campaigns.
func (s *CatalogService) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	campaigns, err := s.games.ListCampaigns(ctx, s.pool, true)
	if err != nil {
		return nil, domain.ErrInternal("list campaigns", err)
	}
	return campaigns, nil
}

// CreateGameInput is the admin game definition.
type CreateGameInput struct {
	CampaignID  *uuid.UUID `json:"campaign_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	GameType    string     `json:"game_type"`
	EntryCoins  int64      `json:"entry_coins"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Activate    bool       `json:"activate"`
}

// CreateGame creates a game in draft or active status.
func (s *CatalogService) CreateGame(ctx context.Context, input CreateGameInput) (*domain.Game, error) {
	if input.Title == "" {
		return nil, domain.ErrValidation("title is required")
	}
	if input.EntryCoins < 0 {
		return nil, domain.ErrValidation("entry cost must not be negative")
	}
	if !input.EndTime.After(input.StartTime) {
		return nil, domain.ErrValidation("end time must be after start time")
	}

	status := domain.GameDraft
	if input.Activate {
		status = domain.GameActive
	}
	game := &domain.Game{
		ID:          uuid.New(),
		CampaignID:  input.CampaignID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		GameType:    input.GameType,
		EntryCoins:  input.EntryCoins,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Status:      status,
	}
	if err := s.games.Create(ctx, s.pool, game); err != nil {
		return nil, domain.ErrInternal("create game", err)
	}

	s.logger.Info("game created", "game_id", game.ID, "title", game.Title, "status", status)
	return game, nil
}

// AddQuestion attaches a question to a game. Questions are immutable after
// creation and may only be added before results are declared.
func (s *CatalogService) AddQuestion(ctx context.Context, q *domain.Question) (*domain.Question, error) {
	game, err := s.games.FindByID(ctx, s.pool, q.GameID)
	if err != nil {
		return nil, domain.ErrInternal("find game", err)
	}
	if game == nil {
		return nil, domain.ErrNotFound("game", q.GameID.String())
	}
	if game.Status == domain.GameResultsDeclared || game.Status == domain.GameClosed {
		return nil, domain.ErrConflict("cannot add questions after results are declared")
	}

	if err := domain.ValidateQuestion(q); err != nil {
		return nil, err
	}

	q.ID = uuid.New()
	if err := s.games.CreateQuestion(ctx, s.pool, q); err != nil {
		return nil, domain.ErrInternal("create question", err)
	}
	return q, nil
}

// UpdateGameStatus applies the admin status transitions consumed from
// outside the core (draft → active, active → closed).
func (s *CatalogService) UpdateGameStatus(ctx context.Context, gameID uuid.UUID, status domain.GameStatus) error {
	switch status {
	case domain.GameActive, domain.GameClosed:
	default:
		return domain.ErrValidation("status must be active or closed")
	}

	game, err := s.games.FindByID(ctx, s.pool, gameID)
	if err != nil {
		return domain.ErrInternal("find game", err)
	}
	if game == nil {
		return domain.ErrNotFound("game", gameID.String())
	}

	if err := s.games.UpdateStatus(ctx, s.pool, gameID, status); err != nil {
		return domain.ErrInternal("update game status", err)
	}
	return nil
}

// CreateCampaign creates a campaign grouping.
func (s *CatalogService) CreateCampaign(ctx context.Context, c *domain.Campaign) (*domain.Campaign, error) {
	if c.Name == "" {
		return nil, domain.ErrValidation("campaign name is required")
	}
	c.ID = uuid.New()
	if err := s.games.CreateCampaign(ctx, s.pool, c); err != nil {
		return nil, domain.ErrInternal("create campaign", err)
	}
	return c, nil
}
