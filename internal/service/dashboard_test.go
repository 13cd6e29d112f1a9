package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/encontrar/shopping-api/internal/models"
)

func TestDashboardState(t *testing.T) {
	db := initTestDB(t)
	s := &DashboardService{DB: db}

	require.NoError(t, db.Create(&models.Product{Name: "A", Price: 10, Stock: 2, Visible: true}).Error)
	require.NoError(t, db.Create(&models.Product{Name: "B", Price: 20, Stock: 50, Visible: false}).Error)
	require.NoError(t, db.Create(&models.Promotion{Name: "Summer", Discount: 10, Active: true}).Error)
	require.NoError(t, db.Create(&models.Promotion{Name: "Draft", Discount: 10, Active: false}).Error)
	require.NoError(t, db.Create(&models.ShopkeeperSale{UserID: 1, Amount: 30, Quantity: 1, SaleDate: time.Now()}).Error)
	require.NoError(t, db.Create(&models.ShopkeeperSale{UserID: 1, Amount: 70, Quantity: 2, SaleDate: time.Now()}).Error)

	state, err := s.State(context.Background(), DashboardFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), state.TotalProducts)
	require.Equal(t, int64(1), state.LowStockProducts)
	require.Equal(t, int64(2), state.TotalSales)
	require.Equal(t, 100.0, state.TotalRevenue)
	require.Equal(t, int64(1), state.ActivePromotions)
}

func TestDashboardStateEmpty(t *testing.T) {
	db := initTestDB(t)
	s := &DashboardService{DB: db}

	state, err := s.State(context.Background(), DashboardFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(0), state.TotalSales)
	require.Equal(t, 0.0, state.TotalRevenue)
}

func TestDashboardDateFilterAppliesToSalesOnly(t *testing.T) {
	db := initTestDB(t)
	s := &DashboardService{DB: db}

	require.NoError(t, db.Create(&models.Product{Name: "A", Price: 10, Stock: 2, Visible: true}).Error)
	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.ShopkeeperSale{UserID: 1, Amount: 30, Quantity: 1, SaleDate: jan}).Error)
	require.NoError(t, db.Create(&models.ShopkeeperSale{UserID: 1, Amount: 70, Quantity: 1, SaleDate: jun}).Error)

	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	state, err := s.State(context.Background(), DashboardFilter{From: &from})
	require.NoError(t, err)
	require.Equal(t, int64(1), state.TotalSales)
	require.Equal(t, 70.0, state.TotalRevenue)
	require.Equal(t, int64(1), state.TotalProducts)
}
