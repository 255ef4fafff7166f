package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/godi-api/internal/config"
	domainRepo "github.com/sangkips/godi-api/internal/domain/repository"
	"github.com/sangkips/godi-api/internal/infrastructure/metrics"
	"github.com/sangkips/godi-api/internal/presentation/http/handler"
	"github.com/sangkips/godi-api/internal/presentation/http/middleware"
	"github.com/sangkips/godi-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Product   *handler.ProductHandler
	Sale      *handler.SaleHandler
	Dashboard *handler.DashboardHandler
	Events    *handler.EventsHandler
	Health    *handler.HealthHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Verifier        *utils.TokenVerifier
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Metrics         *metrics.Metrics
	RateLimiter     *middleware.AccountRateLimiter
	// Location is the calendar used when the caller names none
	Location *time.Location
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.MetricsMiddleware(deps.Metrics))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))

	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = middleware.NewAccountRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: deps.Cfg.RateLimit.RequestsPerSecond,
			BurstSize:         deps.Cfg.RateLimit.Burst,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
	}

	// The same handlers answer under /api/v1 and at the root paths the UI calls.
	registerAPIRoutes(router.Group("/api/v1"), h, deps, rateLimiter)
	registerAPIRoutes(router.Group(""), h, deps, rateLimiter)

	return router
}

func registerAPIRoutes(group *gin.RouterGroup, h *Handlers, deps *Deps, rateLimiter *middleware.AccountRateLimiter) {
	protected := group.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Verifier))
	protected.Use(rateLimiter.Middleware())

	// Long-lived stream; no request deadline
	protected.GET("/events", h.Events.Stream)

	bounded := protected.Group("")
	bounded.Use(middleware.TimeoutMiddleware(deps.Cfg.App.RequestTimeout))

	registerProductRoutes(bounded, h)
	registerSaleRoutes(bounded, h, deps)

	bounded.GET("/dashboard-stats", middleware.TimezoneMiddleware(deps.Location), h.Dashboard.GetStats)
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers) {
	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.PATCH("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
		products.POST("/:id/stock", h.Product.AdjustStock)
	}
}

func registerSaleRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	sales := protected.Group("/sales")
	{
		sales.POST("", middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}), h.Sale.Create)
		sales.GET("", middleware.TimezoneMiddleware(deps.Location), h.Sale.List)
		sales.GET("/transactions/:id", h.Sale.GetTransaction)
	}
}
