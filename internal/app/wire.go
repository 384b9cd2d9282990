package app

import (
	"log/slog"

	"github.com/gachabox/platform/internal/auth"
	"github.com/gachabox/platform/internal/cabinet"
	"github.com/gachabox/platform/internal/escrow"
	"github.com/gachabox/platform/internal/game"
	"github.com/gachabox/platform/internal/guard"
	"github.com/gachabox/platform/internal/handler"
	"github.com/gachabox/platform/internal/infra"
	"github.com/gachabox/platform/internal/provider"
	"github.com/gachabox/platform/internal/repository"
	"github.com/gachabox/platform/internal/revenue"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	Config *infra.Config
	JWTMgr *auth.JWTManager
	Logger *slog.Logger
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	cfg := deps.Config
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Repositories
	cabinetRepo := repository.NewCabinetRepository()
	itemRepo := repository.NewItemRepository()
	revenueRepo := repository.NewRevenueRepository()
	outboxRepo := repository.NewOutboxRepository()

	// External providers
	assetBridge := provider.NewAssetBridgeClient(cfg.AssetBridgeURL, logger)
	tokenLedger := provider.NewTokenLedgerClient(cfg.TokenLedgerURL, logger)
	paymentClient := provider.NewPaymentClient(cfg.PayoutURL, logger)
	randomClient := provider.NewRandomOrgClient(cfg.RandomOrgAPIKey, logger)

	// Engines
	escrowLedger := escrow.NewLedger(pool, cabinetRepo, itemRepo, outboxRepo, assetBridge, cfg.ItemLockWindow)
	revenueLedger := revenue.NewLedger(pool, cabinetRepo, revenueRepo, outboxRepo, paymentClient)
	orchestrator := game.NewOrchestrator(pool, cabinetRepo, outboxRepo, escrowLedger, revenueLedger,
		tokenLedger, randomClient, paymentClient, logger)
	cabinetSvc := cabinet.NewService(pool, cabinetRepo, outboxRepo, logger,
		cfg.MaxCabinetsPerOwner, cfg.PlatformFeeCeilingBp, cfg.DefaultPlatformFeeBp, cfg.PlatformFeeRecipient)

	// Guards
	playLimiter := guard.NewRateLimiter(cfg.PlayRateLimit, cfg.PlayRateWindow)

	// Handlers
	cabinetHandler := handler.NewCabinetHandler(cabinetSvc)
	itemHandler := handler.NewItemHandler(escrowLedger)
	playHandler := handler.NewPlayHandler(orchestrator, playLimiter)
	revenueHandler := handler.NewRevenueHandler(revenueLedger)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Player-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticatePlayer(jwtMgr))

		r.Route("/cabinets", func(r chi.Router) {
			r.Post("/", cabinetHandler.Mint)
			r.Get("/", cabinetHandler.List)

			r.Route("/{cabinetID}", func(r chi.Router) {
				r.Get("/", cabinetHandler.Get)
				r.Put("/config", cabinetHandler.SetConfig)
				r.Put("/name", cabinetHandler.SetName)
				r.Put("/price", cabinetHandler.SetPrice)
				r.Post("/activate", cabinetHandler.Activate)
				r.Post("/deactivate", cabinetHandler.Deactivate)
				r.Post("/maintenance", cabinetHandler.SetMaintenance)

				r.Route("/items", func(r chi.Router) {
					r.Get("/", itemHandler.List)
					r.Post("/", itemHandler.Deposit)
					r.Post("/withdraw", itemHandler.Withdraw)
					r.Post("/toggle", itemHandler.Toggle)
				})

				r.Post("/play", playHandler.Play)

				r.Route("/revenue", func(r chi.Router) {
					r.Get("/", revenueHandler.OwnerBalance)
					r.Post("/withdraw", revenueHandler.WithdrawOwner)
				})
			})
		})

		r.Post("/revenue/batch-withdraw", revenueHandler.BatchWithdraw)
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))

		r.Route("/revenue", func(r chi.Router) {
			r.Get("/", revenueHandler.PlatformBalance)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.WriteRoles()...))
				r.Post("/withdraw", revenueHandler.WithdrawPlatform)
			})
		})
	})

	return r
}
