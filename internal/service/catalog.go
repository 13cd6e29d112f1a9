package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/encontrar/shopping-api/internal/models"
	"github.com/encontrar/shopping-api/internal/util"
)

type CatalogService struct {
	DB *gorm.DB
}

type ProductFilter struct {
	Name     string
	ShopID   uint
	MinPrice *float64
	MaxPrice *float64
}

type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ServiceFee  float64 `json:"service_fee"`
	Stock       uint    `json:"stock"`
	Visible     *bool   `json:"visible"`
	ShopID      uint    `json:"shop_id"`
}

type ProductUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	ServiceFee  *float64 `json:"service_fee"`
	Stock       *uint    `json:"stock"`
	Visible     *bool    `json:"visible"`
	ShopID      *uint    `json:"shop_id"`
}

type AttributeInput struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// visibleScope restricts queries to visible products unless the caller holds
// a privileged role. Anonymous callers get the restricted view.
func visibleScope(caller *models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if caller != nil && models.PrivilegedRole(caller.Role) {
			return db
		}
		return db.Where("visible = ?", true)
	}
}

func applyFilter(db *gorm.DB, f ProductFilter) *gorm.DB {
	if f.Name != "" {
		db = db.Where("name LIKE ?", "%"+f.Name+"%")
	}
	if f.ShopID != 0 {
		db = db.Where("shop_id = ?", f.ShopID)
	}
	if f.MinPrice != nil {
		db = db.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		db = db.Where("price <= ?", *f.MaxPrice)
	}
	return db
}

func (s *CatalogService) List(ctx context.Context, f ProductFilter, caller *models.User) ([]models.Product, error) {
	var items []models.Product
	q := applyFilter(s.DB.WithContext(ctx).Model(&models.Product{}), f).Scopes(visibleScope(caller))
	if err := q.Preload("Attributes").Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func (s *CatalogService) ListPaginated(ctx context.Context, f ProductFilter, caller *models.User, page, limit int) ([]models.Product, int64, int, error) {
	offset, limit := util.Calculate(page, limit)

	base := func() *gorm.DB {
		return applyFilter(s.DB.WithContext(ctx).Model(&models.Product{}), f).Scopes(visibleScope(caller))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, 0, fmt.Errorf("db error: %w", err)
	}

	var items []models.Product
	if err := base().Preload("Attributes").Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, 0, fmt.Errorf("db error: %w", err)
	}
	return items, total, limit, nil
}

// Get returns ErrNotFound both for missing products and for products the
// caller may not see; a hidden record must not reveal its existence.
func (s *CatalogService) Get(ctx context.Context, id uint, caller *models.User) (*models.Product, error) {
	var product models.Product
	err := s.DB.WithContext(ctx).Scopes(visibleScope(caller)).Preload("Attributes").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &product, nil
}

func (s *CatalogService) ByShop(ctx context.Context, shopID uint, caller *models.User) ([]models.Product, error) {
	var items []models.Product
	q := s.DB.WithContext(ctx).Where("shop_id = ?", shopID).Scopes(visibleScope(caller))
	if err := q.Preload("Attributes").Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func validateProductInput(in ProductInput) error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalid)
	}
	if in.ServiceFee < 0 {
		return fmt.Errorf("%w: service_fee must not be negative", ErrInvalid)
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	product := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ServiceFee:  in.ServiceFee,
		Stock:       in.Stock,
		Visible:     true,
		ShopID:      in.ShopID,
	}
	if in.Visible != nil {
		product.Visible = *in.Visible
	}
	if err := s.DB.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &product, nil
}

func (s *CatalogService) Update(ctx context.Context, id uint, in ProductUpdate) (*models.Product, error) {
	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalid)
		}
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", ErrInvalid)
		}
		product.Price = *in.Price
	}
	if in.ServiceFee != nil {
		if *in.ServiceFee < 0 {
			return nil, fmt.Errorf("%w: service_fee must not be negative", ErrInvalid)
		}
		product.ServiceFee = *in.ServiceFee
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.Visible != nil {
		product.Visible = *in.Visible
	}
	if in.ShopID != nil {
		product.ShopID = *in.ShopID
	}

	if err := s.DB.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &product, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceAttributes swaps the whole attribute set of a product.
func (s *CatalogService) ReplaceAttributes(ctx context.Context, id uint, attrs []AttributeInput) (*models.Product, error) {
	for _, a := range attrs {
		if a.Name == "" {
			return nil, fmt.Errorf("%w: attribute name is required", ErrInvalid)
		}
	}

	var product models.Product
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductAttribute{}).Error; err != nil {
			return err
		}
		product.Attributes = product.Attributes[:0]
		for _, a := range attrs {
			attr := models.ProductAttribute{ProductID: id, Name: a.Name, Value: a.Value}
			if err := tx.Create(&attr).Error; err != nil {
				return err
			}
			product.Attributes = append(product.Attributes, attr)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &product, nil
}

func (s *CatalogService) LowStockCount(ctx context.Context, threshold uint) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Product{}).
		Where("stock < ?", threshold).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}
