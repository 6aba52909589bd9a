package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/middleware"
)

// RegisterMember registers member-scoped endpoints under /v1.  All routes
// require a valid JWT and the MEMBER role.  Members buy seats, list and
// download their own tickets and review events they attended.
func RegisterMember(e *echo.Echo, h Handlers, opts Options) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(middleware.RoleMember),
	)
	// The bucket is keyed after JWTAuth so the buyer id is known.
	g.POST("/events/:id/purchases", h.Purchases.Buy, middleware.NewTokenBucket(opts.RateLimit, opts.Redis))
	g.GET("/my-tickets", h.Purchases.MyTickets)
	g.GET("/purchases/:id", h.Purchases.Get)
	g.GET("/purchases/:id/qr", h.Purchases.QR)
	g.GET("/purchases/:id/ticket.pdf", h.Purchases.PDF)

	g.POST("/events/:id/reviews", h.Reviews.Create)
}
