package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleAdmin),
	)

	// ---- Events ----
	g.POST("/events", h.Events.CreateEvent)
	g.GET("/events/:id", h.Events.GetEvent)
	g.PUT("/events/:id", h.Events.UpdateEvent)
	g.DELETE("/events/:id", h.Events.DeleteEvent)

	// ---- Seat classes ----
	g.GET("/events/:id/seat-classes", h.Events.ListSeatClasses)
	g.POST("/events/:id/seat-classes", h.Events.CreateSeatClass)
	g.PUT("/events/:id/seat-classes/:seatClassId", h.Events.UpdateSeatClass)
	g.DELETE("/events/:id/seat-classes/:seatClassId", h.Events.DeleteSeatClass)

	// ---- Reviews ----
	g.DELETE("/reviews/:id", h.Reviews.Delete)

	// ---- Inquiries ----
	g.GET("/inquiries", h.Inquiries.List)
	g.GET("/inquiries/:id", h.Inquiries.Get)
	g.PATCH("/inquiries/:id/status", h.Inquiries.SetStatus)
	g.DELETE("/inquiries/:id", h.Inquiries.Delete)

	// ---- Reports ----
	g.GET("/reports", h.Reports.Sales)
}
