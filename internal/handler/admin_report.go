package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/service"
)

// ReportHandler serves the admin sales dashboard.
type ReportHandler struct {
	Reports *service.ReportService
}

// Sales handles GET /v1/admin/reports?from=2006-01-02&to=2006-01-02.  Both
// bounds are optional and inclusive whole days.
func (h *ReportHandler) Sales(c echo.Context) error {
	from, err := parseDay(c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
	}
	to, err := parseDay(c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
	}
	rep, err := h.Reports.Build(c.Request().Context(), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
