package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/naarimani/platform/internal/auth"
	"github.com/naarimani/platform/internal/guard"
	"github.com/naarimani/platform/internal/handler"
	adminhandler "github.com/naarimani/platform/internal/handler/admin"
	"github.com/naarimani/platform/internal/ledger"
	"github.com/naarimani/platform/internal/repository"
	"github.com/naarimani/platform/internal/service"
	"github.com/naarimani/platform/internal/settlement"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	JWTMgr *auth.JWTManager
	Logger *slog.Logger

	// Coin economy knobs
	PointsToCoinsRatio int64
	RefundOnReject     bool
	QuizRewardCoins    int64
	DailyLoginCoins    int64
	ReferralCoins      int64

	// Comma-separated CORS allow-list; "*" allows any origin.
	CORSAllowedOrigins string
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Repositories
	walletRepo := repository.NewWalletRepository()
	txRepo := repository.NewTransactionRepository()
	gameRepo := repository.NewGameRepository()
	predictionRepo := repository.NewPredictionRepository()
	resultRepo := repository.NewResultRepository()
	redemptionRepo := repository.NewRedemptionRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Ledger engine
	ledgerEngine := ledger.NewEngine(walletRepo, txRepo, outboxRepo)

	// Settlement engine
	settlementEngine := settlement.NewEngine(pool, gameRepo, predictionRepo, resultRepo, outboxRepo, ledgerEngine, deps.PointsToCoinsRatio, logger)

	// Services
	catalogSvc := service.NewCatalogService(pool, gameRepo, logger)
	entrySvc := service.NewEntryService(pool, gameRepo, predictionRepo, outboxRepo, ledgerEngine, logger)
	redemptionSvc := service.NewRedemptionService(pool, redemptionRepo, outboxRepo, ledgerEngine, deps.RefundOnReject, logger)
	rewardsSvc := service.NewRewardsService(pool, ledgerEngine, deps.QuizRewardCoins, deps.DailyLoginCoins, deps.ReferralCoins, logger)

	// Handlers
	gameHandler := handler.NewGameHandler(catalogSvc)
	predictionHandler := handler.NewPredictionHandler(entrySvc)
	walletHandler := handler.NewWalletHandler(walletRepo, txRepo, pool)
	redemptionHandler := handler.NewRedemptionHandler(redemptionSvc)
	rewardsHandler := handler.NewRewardsHandler(rewardsSvc)

	// Admin handlers
	gameAdmin := adminhandler.NewGameAdminHandler(catalogSvc, settlementEngine, resultRepo, predictionRepo, pool)
	redemptionAdmin := adminhandler.NewRedemptionAdminHandler(redemptionSvc, redemptionRepo, pool)
	walletAdmin := adminhandler.NewWalletAdminHandler(pool, ledgerEngine, rewardsSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(deps.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Public catalog (no auth)
	r.Get("/games", gameHandler.ListGames)
	r.Get("/games/{id}", gameHandler.GetGame)
	r.Get("/games/{id}/questions", gameHandler.ListQuestions)
	r.Get("/campaigns", gameHandler.ListCampaigns)

	// Per-user limiter on everything that moves coins
	coinLimiter := guard.NewRateLimiter(30, time.Minute)

	// User-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateUser(jwtMgr))

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/balance", walletHandler.GetBalance)
			r.Get("/transactions", walletHandler.GetTransactions)
			r.Get("/audit", walletHandler.AuditBalance)
		})

		r.With(coinLimiter.Middleware).Post("/games/{id}/predictions", predictionHandler.SubmitPrediction)
		r.Get("/games/{id}/predictions/me", predictionHandler.MyPredictions)

		r.Route("/redemptions", func(r chi.Router) {
			r.Get("/catalog", redemptionHandler.ListCatalog)
			r.With(coinLimiter.Middleware).Post("/items/{id}", redemptionHandler.RedeemItem)
			r.Get("/me", redemptionHandler.MyRedemptions)
		})

		r.Route("/rewards", func(r chi.Router) {
			r.With(coinLimiter.Middleware).Post("/quiz", rewardsHandler.CompleteQuiz)
			r.With(coinLimiter.Middleware).Post("/daily-login", rewardsHandler.ClaimDailyLogin)
		})
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))

		r.Route("/games", func(r chi.Router) {
			r.Post("/", gameAdmin.CreateGame)
			r.Post("/{id}/questions", gameAdmin.AddQuestion)
			r.Patch("/{id}/status", gameAdmin.UpdateGameStatus)
			r.Get("/{id}/predictions", gameAdmin.ListPredictions)
			r.Get("/{id}/results", gameAdmin.ListResults)

			// Mutating money flows require the admin role.
			r.With(auth.RequireRole("admin", "superadmin")).Post("/{id}/results", gameAdmin.DeclareResults)
			r.With(auth.RequireRole("admin", "superadmin")).Post("/{id}/scores", gameAdmin.CalculateScores)
		})

		r.Post("/campaigns", gameAdmin.CreateCampaign)

		r.Route("/redemptions", func(r chi.Router) {
			r.Get("/items", redemptionAdmin.ListItems)
			r.Post("/items", redemptionAdmin.CreateItem)
			r.With(auth.RequireRole("admin", "superadmin")).Patch("/{id}/status", redemptionAdmin.UpdateStatus)
		})

		r.Route("/wallets", func(r chi.Router) {
			r.With(auth.RequireRole("superadmin")).Post("/{userID}/adjust", walletAdmin.Adjust)
			r.With(auth.RequireRole("admin", "superadmin")).Post("/{userID}/referral", walletAdmin.CreditReferral)
		})
	})

	return r
}
