package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/encontrar/shopping-api/internal/middleware/auth"
	"github.com/encontrar/shopping-api/internal/mykafka"
	"github.com/encontrar/shopping-api/internal/service"
)

type SalesHandler struct {
	Sales    *service.SalesService
	Producer *mykafka.Producer
}

func (h *SalesHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "sale_events", fmt.Sprint(event["saleID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func saleFilter(c echo.Context) (service.SaleFilter, error) {
	var f service.SaleFilter
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return f, err
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return f, err
	}
	f.From, f.To = from, to

	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		f.UserID = uint(id)
	}
	return f, nil
}

func (h *SalesHandler) CreateSale(c echo.Context) error {
	var req service.SaleInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sale, err := h.Sales.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, map[string]any{
		"type":   "sale_recorded",
		"saleID": sale.ID,
		"userID": sale.UserID,
		"amount": sale.Amount,
	})

	return c.JSON(http.StatusCreated, sale)
}

func (h *SalesHandler) GetSales(c echo.Context) error {
	f, err := saleFilter(c)
	if err != nil {
		return err
	}

	items, err := h.Sales.List(c.Request().Context(), f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *SalesHandler) GetSale(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	sale, err := h.Sales.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sale)
}

func (h *SalesHandler) PatchSale(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req service.SaleUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sale, err := h.Sales.Update(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sale)
}

func (h *SalesHandler) DeleteSale(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.Sales.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateMySale records a sale for the session user; the guard upstream
// guarantees one is present.
func (h *SalesHandler) CreateMySale(c echo.Context) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
	}

	var req service.SaleInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sale, err := h.Sales.CreateForUser(c.Request().Context(), user, req)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, map[string]any{
		"type":   "sale_recorded",
		"saleID": sale.ID,
		"userID": sale.UserID,
		"amount": sale.Amount,
	})

	return c.JSON(http.StatusCreated, sale)
}

func (h *SalesHandler) GetMySales(c echo.Context) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
	}

	f, err := saleFilter(c)
	if err != nil {
		return err
	}

	items, err := h.Sales.ForUser(c.Request().Context(), user, f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}
