package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/encontrar/shopping-api/internal/logging"
	"github.com/encontrar/shopping-api/internal/models"
)

// GormStore keeps sessions in the relational store, one row per token.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Save(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	record := models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.DB.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *GormStore) Lookup(ctx context.Context, token string) (uint, error) {
	var record models.Session
	if err := s.DB.WithContext(ctx).Where("token = ?", token).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNoSession
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	if time.Now().After(record.ExpiresAt) {
		// The session is invalid either way; a failed cleanup only delays
		// removal of the row.
		if err := s.DB.WithContext(ctx).Delete(&models.Session{}, record.ID).Error; err != nil {
			logging.FromContext(ctx).Warn("failed to delete expired session", "error", err)
		}
		return 0, ErrNoSession
	}
	return record.UserID, nil
}

func (s *GormStore) Delete(ctx context.Context, token string) error {
	if err := s.DB.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
