package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/encontrar/shopping-api/internal/models"
)

func TestGetPromotionsFiltersInactive(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.DB.Create(&models.Promotion{Name: "Summer", Discount: 10, Active: true}).Error)
	require.NoError(t, env.DB.Create(&models.Promotion{Name: "Draft", Discount: 20, Active: false}).Error)

	rec := env.doJSON(http.MethodGet, "/promotions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.Promotion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	require.Equal(t, "Summer", items[0].Name)

	ck := env.loginAs(t, models.RoleAdmin)
	rec = env.doJSON(http.MethodGet, "/promotions", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
}

func TestGetInactivePromotionByID(t *testing.T) {
	env := newTestEnv(t)
	draft := models.Promotion{Name: "Draft", Discount: 20, Active: false}
	require.NoError(t, env.DB.Create(&draft).Error)
	path := fmt.Sprintf("/promotions/%d", draft.ID)

	rec := env.doJSON(http.MethodGet, path, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	ck := env.loginAs(t, models.RoleManager)
	rec = env.doJSON(http.MethodGet, path, nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreatePromotionRoleGate(t *testing.T) {
	env := newTestEnv(t)
	product := models.Product{Name: "Lamp", Price: 30, Visible: true}
	require.NoError(t, env.DB.Create(&product).Error)

	body := map[string]any{
		"name":       "Summer",
		"discount":   15.0,
		"productIds": []uint{product.ID},
	}

	ck := env.loginAs(t, models.RoleCustomer)
	rec := env.doJSON(http.MethodPost, "/promotions", body, ck)
	require.Equal(t, http.StatusForbidden, rec.Code)

	ck = env.loginAs(t, models.RoleAdmin)
	rec = env.doJSON(http.MethodPost, "/promotions", body, ck)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.Promotion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)

	rec = env.doJSON(http.MethodPost, "/promotions", map[string]any{
		"name":     "Bad",
		"discount": 150.0,
	}, ck)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatchAndDeletePromotion(t *testing.T) {
	env := newTestEnv(t)
	ck := env.loginAs(t, models.RoleAdmin)
	promo := models.Promotion{Name: "Summer", Discount: 10, Active: true}
	require.NoError(t, env.DB.Create(&promo).Error)
	path := fmt.Sprintf("/promotions/%d", promo.ID)

	rec := env.doJSON(http.MethodPatch, path, map[string]any{"isActive": false}, ck)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Promotion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Active)

	rec = env.doJSON(http.MethodDelete, path, nil, ck)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.doJSON(http.MethodDelete, path, nil, ck)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
