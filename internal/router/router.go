package router // package router defines how HTTP routes are registered for the API

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/middleware"
)

// Handlers bundles everything the route tables point at.
type Handlers struct {
	Catalog   *handler.CatalogHandler
	Purchases *handler.PurchaseHandler
	Tickets   *handler.TicketHandler
	Reviews   *handler.ReviewHandler
	Inquiries *handler.InquiryHandler
	Events    *handler.AdminEventHandler
	Reports   *handler.ReportHandler
	DB        handler.Pinger
}

// Options carries the middleware settings shared by the route groups.
type Options struct {
	JWTSecret string
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
}

// Invalidator returns the hook admin handlers call after a catalog write.
func Invalidator(opts Options) handler.CacheInvalidator {
	return func(ctx context.Context) error {
		return middleware.InvalidateCache(ctx, opts.Redis, opts.Cache.Prefix)
	}
}

// Register wires every route group onto e.
func Register(e *echo.Echo, h Handlers, opts Options) {
	RegisterRoutes(e, h.DB)
	RegisterPublic(e, h, opts)
	RegisterMember(e, h, opts)
	RegisterAdmin(e, h, opts.JWTSecret)
}

// RegisterRoutes registers the operational endpoints: liveness, readiness
// and the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterPublic registers unauthenticated endpoints.  Catalog reads go
// through the Redis response cache; ticket verification is open to anyone
// holding a code and never cached because an ADMIN token widens the
// response.
func RegisterPublic(e *echo.Echo, h Handlers, opts Options) {
	cache := middleware.NewRedisCache(opts.Cache, opts.Redis)

	catalog := e.Group("/v1/events", cache)
	catalog.GET("", h.Catalog.ListEvents)
	catalog.GET("/categories", h.Catalog.ListCategories)
	catalog.GET("/:id", h.Catalog.GetEvent)
	catalog.GET("/:id/reviews", h.Catalog.ListReviews)

	e.POST("/v1/inquiries", h.Inquiries.Create)
	e.GET("/v1/tickets/verify/:code", h.Tickets.Verify, middleware.OptionalJWT(opts.JWTSecret))
}
