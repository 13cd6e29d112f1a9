package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/encontrar/shopping-api/internal/models"
)

type SalesService struct {
	DB *gorm.DB
}

type SaleInput struct {
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	Quantity    uint       `json:"quantity"`
	SaleDate    *time.Time `json:"sale_date"`
	UserID      uint       `json:"user_id"`
}

type SaleUpdate struct {
	Description *string    `json:"description"`
	Amount      *float64   `json:"amount"`
	Quantity    *uint      `json:"quantity"`
	SaleDate    *time.Time `json:"sale_date"`
}

type SaleFilter struct {
	From   *time.Time
	To     *time.Time
	UserID uint
}

func (s *SalesService) Create(ctx context.Context, in SaleInput) (*models.ShopkeeperSale, error) {
	if in.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalid)
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	sale := models.ShopkeeperSale{
		UserID:      in.UserID,
		Description: in.Description,
		Amount:      in.Amount,
		Quantity:    in.Quantity,
		SaleDate:    time.Now(),
	}
	if in.SaleDate != nil {
		sale.SaleDate = *in.SaleDate
	}
	if err := s.DB.WithContext(ctx).Create(&sale).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &sale, nil
}

// CreateForUser pins the sale to the authenticated shopkeeper regardless of
// what the body says.
func (s *SalesService) CreateForUser(ctx context.Context, user *models.User, in SaleInput) (*models.ShopkeeperSale, error) {
	in.UserID = user.ID
	return s.Create(ctx, in)
}

func applySaleFilter(db *gorm.DB, f SaleFilter) *gorm.DB {
	if f.From != nil {
		db = db.Where("sale_date >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("sale_date <= ?", *f.To)
	}
	if f.UserID != 0 {
		db = db.Where("user_id = ?", f.UserID)
	}
	return db
}

func (s *SalesService) List(ctx context.Context, f SaleFilter) ([]models.ShopkeeperSale, error) {
	var items []models.ShopkeeperSale
	q := applySaleFilter(s.DB.WithContext(ctx), f).Order("id ASC")
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func (s *SalesService) ForUser(ctx context.Context, user *models.User, f SaleFilter) ([]models.ShopkeeperSale, error) {
	f.UserID = user.ID
	return s.List(ctx, f)
}

func (s *SalesService) Get(ctx context.Context, id uint) (*models.ShopkeeperSale, error) {
	var sale models.ShopkeeperSale
	if err := s.DB.WithContext(ctx).First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &sale, nil
}

func (s *SalesService) Update(ctx context.Context, id uint, in SaleUpdate) (*models.ShopkeeperSale, error) {
	sale, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Description != nil {
		sale.Description = *in.Description
	}
	if in.Amount != nil {
		if *in.Amount < 0 {
			return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalid)
		}
		sale.Amount = *in.Amount
	}
	if in.Quantity != nil {
		if *in.Quantity == 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalid)
		}
		sale.Quantity = *in.Quantity
	}
	if in.SaleDate != nil {
		sale.SaleDate = *in.SaleDate
	}

	if err := s.DB.WithContext(ctx).Save(sale).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sale, nil
}

func (s *SalesService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.ShopkeeperSale{}, id)
	if res.Error != nil {
		return fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
