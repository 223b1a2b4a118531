package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gram-seva/gram_seva/internal/auth"
	"github.com/gram-seva/gram_seva/internal/booking"
	"github.com/gram-seva/gram_seva/internal/config"
	"github.com/gram-seva/gram_seva/internal/emergency"
	"github.com/gram-seva/gram_seva/internal/identity"
	"github.com/gram-seva/gram_seva/internal/ledger"
	"github.com/gram-seva/gram_seva/internal/market"
	"github.com/gram-seva/gram_seva/internal/middleware"
	"github.com/gram-seva/gram_seva/internal/notification"
	"github.com/gram-seva/gram_seva/internal/prices"
	"github.com/gram-seva/gram_seva/internal/snapshot"
	"github.com/gram-seva/gram_seva/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Runtime holds the long-lived pieces Setup builds so the caller can drive
// background maintenance and stop them on shutdown.
type Runtime struct {
	marketHandler *market.Handler
	marketSvc     *market.Service
	logger        *slog.Logger
}

// RunMaintenance flips expired auctions on a fixed cadence until ctx is done.
func (r *Runtime) RunMaintenance(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := r.marketSvc.ExpireDue(ctx, now.UTC())
			if err != nil {
				r.logger.Warn("auction expiry sweep failed", "error", err)
				continue
			}
			if n > 0 {
				r.logger.Info("auctions expired", "count", n)
			}
		}
	}
}

// Shutdown stops every rival bid watch still running.
func (r *Runtime) Shutdown() {
	r.marketHandler.StopAll()
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) (*Runtime, error) {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return nil, fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return nil, fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	// Backends: Postgres when configured, in-memory otherwise.
	var ledgerBackend ledger.Ledger
	if d.DB != nil {
		ledgerBackend = ledger.NewPostgresLedger(d.DB)
	} else {
		ledgerBackend = ledger.NewInMemory()
	}

	var marketRepo market.Repository
	var bookingRepo booking.Repository
	var identityRepo identity.Repository
	if d.DB != nil {
		marketRepo = market.NewPostgresRepository(d.DB)
		bookingRepo = booking.NewPostgresRepository(d.DB)
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		marketRepo = market.NewMemoryRepository()
		bookingRepo = booking.NewMemoryRepository()
		identityRepo = identity.NewMemoryRepository()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)

	walletSvc := wallet.NewService(ledgerBackend, wallet.StaticConnector{})
	marketSvc := market.NewService(marketRepo, ledgerBackend, notifier)
	simulator := market.NewSimulator(marketSvc, d.Cfg.RivalBidInterval, d.Cfg.RivalBidChance, d.Logger)
	bookingSvc := booking.NewService(bookingRepo, ledgerBackend, notifier)
	identitySvc := identity.NewService(identityRepo, d.Cfg.OTPTTL)
	authSvc := auth.NewService(d.Cfg, identityRepo)
	emergencySvc := emergency.NewService(notifier)
	pricesSvc := prices.NewService()

	authHandler := auth.NewHandler(identitySvc, authSvc, walletSvc, notifier, d.Cfg.IsDev())
	walletHandler := wallet.NewHandler(walletSvc)
	marketHandler := market.NewHandler(marketSvc, simulator)
	bookingHandler := booking.NewHandler(bookingSvc)
	emergencyHandler := emergency.NewHandler(emergencySvc)
	pricesHandler := prices.NewHandler(pricesSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	tokenAuth := middleware.TokenAuth(d.Cfg, identityRepo)

	// Public routes
	otpLimiter := middleware.OTPRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, otpLimiter, tokenAuth)
	RegisterPriceRoutes(api, pricesHandler)

	// Protected routes
	protected := api.Group("", tokenAuth)
	RegisterProfileRoutes(protected, identitySvc, identityRepo)
	RegisterWalletRoutes(protected, walletHandler)
	RegisterMarketRoutes(protected, marketHandler)
	RegisterBookingRoutes(protected, bookingHandler)
	RegisterEmergencyRoutes(protected, emergencyHandler)
	if d.Cache != nil {
		RegisterStateRoutes(protected, snapshot.NewStore(d.Cache), walletSvc, marketSvc, bookingSvc)
	}

	return &Runtime{
		marketHandler: marketHandler,
		marketSvc:     marketSvc,
		logger:        d.Logger,
	}, nil
}
