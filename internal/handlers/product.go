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
	"github.com/encontrar/shopping-api/internal/util"
)

type ProductHandler struct {
	Catalog  *service.CatalogService
	Producer *mykafka.Producer
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func productFilter(c echo.Context) (service.ProductFilter, error) {
	var f service.ProductFilter
	f.Name = c.QueryParam("name")
	if raw := c.QueryParam("shop_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid shop_id")
		}
		f.ShopID = uint(id)
	}
	if raw := c.QueryParam("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid min_price")
		}
		f.MinPrice = &v
	}
	if raw := c.QueryParam("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid max_price")
		}
		f.MaxPrice = &v
	}
	return f, nil
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	f, err := productFilter(c)
	if err != nil {
		return err
	}

	items, err := h.Catalog.List(c.Request().Context(), f, auth.CurrentUser(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) GetProductsPaginated(c echo.Context) error {
	f, err := productFilter(c)
	if err != nil {
		return err
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)

	items, total, limit, err := h.Catalog.ListPaginated(c.Request().Context(), f, auth.CurrentUser(c), page, size)
	if err != nil {
		return httpError(err)
	}

	offset, _ := util.Calculate(page, size)
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	product, err := h.Catalog.Get(c.Request().Context(), id, auth.CurrentUser(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProductsByShop(c echo.Context) error {
	shopID, err := parseIDParam(c, "shopId")
	if err != nil {
		return err
	}

	items, err := h.Catalog.ByShop(c.Request().Context(), shopID, auth.CurrentUser(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req service.ProductInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Catalog.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req service.ProductUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Catalog.Update(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.Catalog.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}

	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) PatchProductAttributes(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var attrs []service.AttributeInput
	if err := c.Bind(&attrs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Catalog.ReplaceAttributes(c.Request().Context(), id, attrs)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetLowStockCount(c echo.Context) error {
	quantity := parseIntDefault(c.QueryParam("quantity"), 5)
	if quantity < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	count, err := h.Catalog.LowStockCount(c.Request().Context(), uint(quantity))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"totalLowStockProducts": count})
}
