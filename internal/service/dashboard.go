package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/encontrar/shopping-api/internal/models"
)

const lowStockThreshold = 5

type DashboardService struct {
	DB *gorm.DB
}

type DashboardFilter struct {
	From *time.Time
	To   *time.Time
}

type DashboardState struct {
	TotalProducts    int64   `json:"totalProducts"`
	LowStockProducts int64   `json:"lowStockProducts"`
	TotalSales       int64   `json:"totalSales"`
	TotalRevenue     float64 `json:"totalRevenue"`
	ActivePromotions int64   `json:"activePromotions"`
}

// State aggregates the counters the storefront dashboard shows. The date
// filter applies to the sales figures only.
func (s *DashboardService) State(ctx context.Context, f DashboardFilter) (*DashboardState, error) {
	db := s.DB.WithContext(ctx)
	var state DashboardState

	if err := db.Model(&models.Product{}).Count(&state.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := db.Model(&models.Product{}).Where("stock < ?", lowStockThreshold).Count(&state.LowStockProducts).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	sales := db.Model(&models.ShopkeeperSale{})
	if f.From != nil {
		sales = sales.Where("sale_date >= ?", *f.From)
	}
	if f.To != nil {
		sales = sales.Where("sale_date <= ?", *f.To)
	}
	if err := sales.Count(&state.TotalSales).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	revenue := db.Model(&models.ShopkeeperSale{}).Select("COALESCE(SUM(amount), 0)")
	if f.From != nil {
		revenue = revenue.Where("sale_date >= ?", *f.From)
	}
	if f.To != nil {
		revenue = revenue.Where("sale_date <= ?", *f.To)
	}
	if err := revenue.Scan(&state.TotalRevenue).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := db.Model(&models.Promotion{}).Where("active = ?", true).Count(&state.ActivePromotions).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &state, nil
}
