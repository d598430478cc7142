package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/evenoddpro/walletadmin/internal/admin"
	"github.com/evenoddpro/walletadmin/internal/balance"
	"github.com/evenoddpro/walletadmin/internal/config"
	"github.com/evenoddpro/walletadmin/internal/middleware"
	"github.com/evenoddpro/walletadmin/internal/notification"
	"github.com/evenoddpro/walletadmin/internal/subscription"
	"github.com/evenoddpro/walletadmin/internal/topup"
	"github.com/evenoddpro/walletadmin/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
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

	// Health
	RegisterHealthRoutes(app, d)

	// Stores: Postgres in deployed environments, in-memory in dev mode.
	var (
		store     balance.Store
		users     user.Repository
		topupRepo topup.Repository
		subRepo   subscription.Repository
		adminRepo admin.Repository
	)
	if d.DB != nil {
		store = balance.NewPostgresStore(d.DB)
		users = user.NewPostgresRepository(d.DB)
		topupRepo = topup.NewPostgresRepository(d.DB)
		subRepo = subscription.NewPostgresRepository(d.DB)
		adminRepo = admin.NewPostgresRepository(d.DB)
	} else {
		store = balance.NewMemoryStore()
		users = user.NewMemoryRepository()
		topupRepo = topup.NewMemoryRepository()
		subRepo = subscription.NewMemoryRepository()
		adminRepo = admin.NewMemoryRepository()
	}

	// The adjustment path is a startup decision, never a per-call fallback.
	var adjuster balance.Adjuster
	switch {
	case d.Cfg.BalanceMode == config.BalanceModeManual:
		adjuster = balance.NewManualAdjuster(store, d.Logger)
	case d.DB != nil:
		adjuster = balance.NewPostgresAdjuster(d.DB)
	default:
		adjuster = balance.NewLockingAdjuster(store, d.Logger)
	}

	var notifier notification.Notifier
	if d.Cfg.SMTPHost != "" {
		notifier = notification.NewSMTPNotifier(d.Cfg.SMTPHost, d.Cfg.SMTPPort, d.Cfg.SMTPUser, d.Cfg.SMTPPass, d.Cfg.SMTPFrom)
	} else {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	topupSvc := topup.NewService(topupRepo, adjuster, store, users, notifier, d.Logger)
	topupHandler := topup.NewHandler(topupSvc, users)
	balanceHandler := balance.NewHandler(store, adjuster, users)
	subHandler := subscription.NewHandler(subRepo)
	adminSvc := admin.NewService(adminRepo, d.Logger)
	adminHandler := admin.NewHandler(adminSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public: admin login (rate limited)
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, adminHandler, rateLimiter)

	// Everything else sits behind the shared admin secret, with a structured
	// audit trail of every admin action.
	secured := api.Group("", middleware.AdminSecret(d.Cfg.AdminSecret), middleware.Audit(d.Logger))
	RegisterAdminRoutes(secured, topupHandler, subHandler)
	RegisterBalanceRoutes(secured, balanceHandler)

	return nil
}
