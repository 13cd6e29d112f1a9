package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/encontrar/shopping-api/internal/models"
)

type PromotionService struct {
	DB *gorm.DB
}

type PromotionInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Discount    float64    `json:"discount"`
	Active      *bool      `json:"isActive"`
	ProductIDs  []uint     `json:"productIds"`
	CategoryIDs []uint     `json:"categoryIds"`
}

type PromotionUpdate struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Discount    *float64   `json:"discount"`
	Active      *bool      `json:"isActive"`
	ProductIDs  []uint     `json:"productIds"`
	CategoryIDs []uint     `json:"categoryIds"`
}

// activeScope hides inactive promotions from unprivileged callers, the same
// shape as the catalog visibility rule.
func activeScope(caller *models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if caller != nil && models.PrivilegedRole(caller.Role) {
			return db
		}
		return db.Where("active = ?", true)
	}
}

func (s *PromotionService) List(ctx context.Context, caller *models.User) ([]models.Promotion, error) {
	var items []models.Promotion
	q := s.DB.WithContext(ctx).Scopes(activeScope(caller)).
		Preload("Products").Preload("Categories").Order("id ASC")
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func (s *PromotionService) Get(ctx context.Context, id uint, caller *models.User) (*models.Promotion, error) {
	var promo models.Promotion
	err := s.DB.WithContext(ctx).Scopes(activeScope(caller)).
		Preload("Products").Preload("Categories").First(&promo, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &promo, nil
}

func validateDiscount(d float64) error {
	if d < 0 || d > 100 {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalid)
	}
	return nil
}

func (s *PromotionService) Create(ctx context.Context, in PromotionInput) (*models.Promotion, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if err := validateDiscount(in.Discount); err != nil {
		return nil, err
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, fmt.Errorf("%w: endDate must not precede startDate", ErrInvalid)
	}

	promo := models.Promotion{
		Name:        in.Name,
		Description: in.Description,
		Discount:    in.Discount,
		Active:      true,
	}
	if in.StartDate != nil {
		promo.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		promo.EndDate = *in.EndDate
	}
	if in.Active != nil {
		promo.Active = *in.Active
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&promo).Error; err != nil {
			return err
		}
		return s.associate(tx, &promo, in.ProductIDs, in.CategoryIDs)
	})
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &promo, nil
}

func (s *PromotionService) Update(ctx context.Context, id uint, in PromotionUpdate) (*models.Promotion, error) {
	var promo models.Promotion
	if err := s.DB.WithContext(ctx).First(&promo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalid)
		}
		promo.Name = *in.Name
	}
	if in.Description != nil {
		promo.Description = *in.Description
	}
	if in.StartDate != nil {
		promo.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		promo.EndDate = *in.EndDate
	}
	if in.Discount != nil {
		if err := validateDiscount(*in.Discount); err != nil {
			return nil, err
		}
		promo.Discount = *in.Discount
	}
	if in.Active != nil {
		promo.Active = *in.Active
	}
	if !promo.StartDate.IsZero() && !promo.EndDate.IsZero() && promo.EndDate.Before(promo.StartDate) {
		return nil, fmt.Errorf("%w: endDate must not precede startDate", ErrInvalid)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&promo).Error; err != nil {
			return err
		}
		return s.associate(tx, &promo, in.ProductIDs, in.CategoryIDs)
	})
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &promo, nil
}

func (s *PromotionService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Select("Products", "Categories").Delete(&models.Promotion{ID: id})
	if res.Error != nil {
		return fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// associate replaces the product/category links. Nil slices leave the
// existing association alone; empty slices clear it.
func (s *PromotionService) associate(tx *gorm.DB, promo *models.Promotion, productIDs, categoryIDs []uint) error {
	if productIDs != nil {
		var products []models.Product
		if len(productIDs) > 0 {
			if err := tx.Find(&products, productIDs).Error; err != nil {
				return err
			}
			if len(products) != len(productIDs) {
				return fmt.Errorf("%w: unknown product id in productIds", ErrInvalid)
			}
		}
		if err := tx.Model(promo).Association("Products").Replace(products); err != nil {
			return err
		}
		promo.Products = products
	}
	if categoryIDs != nil {
		var categories []models.Category
		if len(categoryIDs) > 0 {
			if err := tx.Find(&categories, categoryIDs).Error; err != nil {
				return err
			}
			if len(categories) != len(categoryIDs) {
				return fmt.Errorf("%w: unknown category id in categoryIds", ErrInvalid)
			}
		}
		if err := tx.Model(promo).Association("Categories").Replace(categories); err != nil {
			return err
		}
		promo.Categories = categories
	}
	return nil
}
