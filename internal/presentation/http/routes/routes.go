package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/dealflow-api/internal/config"
	domainRepo "github.com/sangkips/dealflow-api/internal/domain/repository"
	"github.com/sangkips/dealflow-api/internal/presentation/http/handler"
	"github.com/sangkips/dealflow-api/internal/presentation/http/middleware"
	"github.com/sangkips/dealflow-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Deal    *handler.DealHandler
	Quote   *handler.QuoteHandler
	Order   *handler.OrderHandler
	Invoice *handler.InvoiceHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.RateLimiter
	Log             *zap.Logger
}

// NewRateLimiter builds the per-user limiter from the rate limit config
func NewRateLimiter(cfg config.RateLimitConfig) *middleware.RateLimiter {
	limits := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		limits.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		limits.BurstSize = cfg.Requests
	}
	limits.CleanupInterval = 5 * time.Minute
	limits.EntryTTL = 10 * time.Minute
	return middleware.NewRateLimiter(limits)
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
			"store":   deps.Cfg.Store.Driver,
		})
	})

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}
		protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			Log:  deps.Log,
		}))

		registerDealRoutes(protected, h)
		registerQuoteRoutes(protected, h)
		registerOrderRoutes(protected, h)
		registerInvoiceRoutes(protected, h)
	}

	return router
}

func registerDealRoutes(rg *gin.RouterGroup, h *Handlers) {
	deals := rg.Group("/deals")
	{
		deals.POST("/:id/quote", h.Deal.CreateQuote)
		deals.POST("/:id/automation", h.Deal.Automate)
		deals.GET("/:id/activities", h.Deal.Activities)
	}
	rg.POST("/automation/batch", h.Deal.Batch)
}

func registerQuoteRoutes(rg *gin.RouterGroup, h *Handlers) {
	quotes := rg.Group("/quotes")
	{
		quotes.POST("", h.Quote.Create)
		quotes.GET("/:id", h.Quote.Get)
		quotes.PUT("/:id/status", h.Quote.UpdateStatus)
		quotes.POST("/:id/convert", h.Quote.Convert)
		quotes.DELETE("/:id", h.Quote.Delete)
	}
}

func registerOrderRoutes(rg *gin.RouterGroup, h *Handlers) {
	orders := rg.Group("/orders")
	{
		orders.GET("/:id", h.Order.Get)
		orders.PUT("/:id/status", h.Order.UpdateStatus)
		orders.POST("/:id/convert", h.Order.Convert)
	}
}

func registerInvoiceRoutes(rg *gin.RouterGroup, h *Handlers) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("/:id", h.Invoice.Get)
		invoices.POST("/:id/payments", h.Invoice.RecordPayment)
	}
}
