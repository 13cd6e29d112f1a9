// Package session implements server-side sessions keyed by an opaque token.
// The token carries no identity: Resolve re-fetches the user row on every
// call, so a role change or deactivation is observed on the next request.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/encontrar/shopping-api/internal/models"
)

// CookieName is the cookie the session token travels in.
const CookieName = "session_id"

var ErrNoSession = errors.New("session not found")

// Store persists the token -> user id binding with a TTL.
type Store interface {
	Save(ctx context.Context, token string, userID uint, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (uint, error)
	Delete(ctx context.Context, token string) error
}

type Manager struct {
	store Store
	db    *gorm.DB
	ttl   time.Duration
}

func NewManager(store Store, db *gorm.DB, ttl time.Duration) *Manager {
	return &Manager{store: store, db: db, ttl: ttl}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

func (m *Manager) Create(ctx context.Context, userID uint) (string, error) {
	token := uuid.NewString()
	if err := m.store.Save(ctx, token, userID, m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func (m *Manager) Destroy(ctx context.Context, token string) error {
	return m.store.Delete(ctx, token)
}

// Resolve maps a token to the live user record. Unknown, expired, or
// orphaned tokens all come back as ErrNoSession.
func (m *Manager) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	userID, err := m.store.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := m.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	return &user, nil
}
