package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/encontrar/shopping-api/internal/middleware/auth"
	"github.com/encontrar/shopping-api/internal/service"
)

type PromotionHandler struct {
	Promotions *service.PromotionService
}

func (h *PromotionHandler) GetPromotions(c echo.Context) error {
	items, err := h.Promotions.List(c.Request().Context(), auth.CurrentUser(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *PromotionHandler) GetPromotion(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	promo, err := h.Promotions.Get(c.Request().Context(), id, auth.CurrentUser(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, promo)
}

func (h *PromotionHandler) CreatePromotion(c echo.Context) error {
	var req service.PromotionInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	promo, err := h.Promotions.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, promo)
}

func (h *PromotionHandler) PatchPromotion(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req service.PromotionUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	promo, err := h.Promotions.Update(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, promo)
}

func (h *PromotionHandler) DeletePromotion(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.Promotions.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
