package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/souqna/marketplace/internal/api/http/handlers"
	"github.com/souqna/marketplace/internal/auth"
	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/observability"
	"github.com/souqna/marketplace/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Products       *handlers.ProductsHandler
	Reports        *handlers.ReportsHandler
	Blocks         *handlers.BlocksHandler
	Settings       *handlers.SettingsHandler
	AdminUsers     *handlers.AdminUsersHandler
	AuthMiddleware *auth.AuthMiddleware

	// Limiters are optional; a nil limiter leaves its routes unthrottled.
	GlobalLimiter *ratelimit.Limiter
	AuthLimiter   *ratelimit.Limiter
	ReportLimiter *ratelimit.Limiter

	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := func(l *ratelimit.Limiter) []fiber.Handler {
		if l == nil {
			return nil
		}
		return []fiber.Handler{RateLimit(l, cfg.Metrics, logger)}
	}
	authMW := cfg.AuthMiddleware
	liveAdmin := authMW.RequireLiveRole(domain.RoleAdmin)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api", append(limit(cfg.GlobalLimiter), authMW.Authenticate)...)
	api.Get("/settings/public", cfg.Settings.Public)

	authGroup := api.Group("/auth", limit(cfg.AuthLimiter)...)
	authGroup.Post("/register", NoStore, cfg.Auth.Register)
	authGroup.Post("/login", NoStore, cfg.Auth.Login)
	authGroup.Post("/password/reset/request", NoStore, cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", NoStore, cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", authMW.Handle, cfg.Auth.ChangePassword)

	users := api.Group("/users", authMW.Handle, NoStore)
	users.Get("/me", cfg.Auth.Me)
	users.Patch("/me", cfg.Auth.UpdateMe)

	products := api.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/mine", authMW.Handle, cfg.Products.ListMine)
	products.Get("/:id", cfg.Products.Get)
	products.Post("/", authMW.Handle, cfg.Products.Create)
	products.Patch("/:id", authMW.Handle, cfg.Products.Update)
	products.Delete("/:id", authMW.Handle, cfg.Products.Delete)

	reports := api.Group("/reports", authMW.Handle)
	reports.Post("/", append(limit(cfg.ReportLimiter), cfg.Reports.Create)...)
	reports.Get("/", cfg.Reports.List)
	reports.Get("/:id", cfg.Reports.Get)

	blocks := api.Group("/blocks", authMW.Handle)
	blocks.Get("/", cfg.Blocks.List)
	blocks.Post("/", cfg.Blocks.Block)
	blocks.Delete("/:userId", cfg.Blocks.Unblock)

	admin := api.Group("/admin", authMW.Handle)
	admin.Get("/settings", liveAdmin, cfg.Settings.Get)
	admin.Patch("/settings", liveAdmin, cfg.Settings.Update)
	admin.Post("/products/:id/approve", liveAdmin, cfg.Products.Approve)
	admin.Delete("/products/:id/purge", liveAdmin, cfg.Products.Purge)
	admin.Patch("/reports/:id", liveAdmin, cfg.Reports.ApplyAction)
	admin.Get("/reports/:id/actions", liveAdmin, cfg.Reports.ListActions)
	admin.Get("/users", cfg.AdminUsers.List)
	admin.Patch("/users/:id", cfg.AdminUsers.UpdateAccess)
}
