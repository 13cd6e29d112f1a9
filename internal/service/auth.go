package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"time"

	"gorm.io/gorm"

	"github.com/encontrar/shopping-api/internal/hash"
	"github.com/encontrar/shopping-api/internal/logging"
	"github.com/encontrar/shopping-api/internal/mailer"
	"github.com/encontrar/shopping-api/internal/models"
)

const (
	codeTTL    = 10 * time.Minute
	codeDigits = 6
)

type AuthService struct {
	DB     *gorm.DB
	Mailer mailer.Mailer
}

func (s *AuthService) Register(ctx context.Context, email, password, firstName string) (*models.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: malformed email", ErrInvalid)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalid)
	}

	var existing models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash error: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: hashed,
		FirstName:    firstName,
		Role:         models.RoleCustomer,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

// Authenticate checks email+password. The same failure comes back whether the
// user is missing or the password is wrong.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// SendCode issues a one-time code for the email and dispatches it via the
// mailer. Any prior unconsumed code is invalidated; at most one code is live
// per email at any moment.
func (s *AuthService) SendCode(ctx context.Context, email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: malformed email", ErrInvalid)
	}

	var verified models.User
	err := s.DB.WithContext(ctx).Where("email = ? AND verified = ?", email, true).First(&verified).Error
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db error: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("code generation failed: %w", err)
	}

	record := models.VerificationCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(codeTTL),
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Invalidate, don't delete: a dead code must still be recognizable
		// as spent when someone tries to verify it later.
		if err := tx.Model(&models.VerificationCode{}).
			Where("email = ? AND consumed = ?", email, false).
			Update("consumed", true).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	// Delivery is out of band. A send failure must not roll back the stored
	// code: the client can always request a fresh one.
	if err := s.Mailer.SendVerificationCode(email, code); err != nil {
		logging.FromContext(ctx).Error("verification mail send failed", "email", email, "err", err)
	}
	return nil
}

// VerifyCode consumes the live code for the email and marks the user
// verified. Consumption is a guarded update, so the second of two racing
// verifies loses with ErrCodeNotFound.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (*models.User, error) {
	var record models.VerificationCode
	err := s.DB.WithContext(ctx).
		Where("email = ? AND consumed = ?", email, false).
		Order("id DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if record.Code != code {
		// A code that was issued but since consumed or replaced reads as
		// not-found; mismatch is reserved for codes that never existed.
		var spent int64
		if err := s.DB.WithContext(ctx).Model(&models.VerificationCode{}).
			Where("email = ? AND code = ?", email, code).
			Count(&spent).Error; err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if spent > 0 {
			return nil, ErrCodeNotFound
		}
		return nil, ErrCodeMismatch
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, ErrCodeExpired
	}

	var user models.User
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.VerificationCode{}).
			Where("id = ? AND consumed = ?", record.ID, false).
			Update("consumed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCodeNotFound
		}

		if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no user registered for email", ErrInvalid)
			}
			return err
		}
		if !user.Verified {
			user.Verified = true
			if err := tx.Model(&user).Update("verified", true).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) || errors.Is(err, ErrInvalid) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
