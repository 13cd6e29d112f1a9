package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/encontrar/shopping-api/internal/service"
)

type DashboardHandler struct {
	Dashboard *service.DashboardService
}

func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	var f service.DashboardFilter
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return err
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return err
	}
	f.From, f.To = from, to

	state, err := h.Dashboard.State(c.Request().Context(), f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, state)
}
