package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"eximbot/internal/entities"
	"eximbot/internal/repository"
)

// AdminAuth authenticates dashboard accounts for the order panel. Tokens
// carry the linked Telegram id so HTTP fulfillments run under the same
// allowlisted actor as chat fulfillments.
type AdminAuth struct {
	adminRepo *repository.AdminUserRepository
	jwtSecret []byte
}

func NewAdminAuth(repo *repository.AdminUserRepository, secret string) *AdminAuth {
	return &AdminAuth{
		adminRepo: repo,
		jwtSecret: []byte(secret),
	}
}

func (uc *AdminAuth) Login(ctx context.Context, username, password string) (string, error) {
	user, err := uc.adminRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", errors.New("invalid credentials")
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":     user.ID,
		"telegram_id": user.TelegramID,
		"role":        user.Role,
		"exp":         time.Now().Add(time.Hour * 24).Unix(),
	})

	tokenString, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}

	return tokenString, nil
}

// EnsureAdmin creates a dashboard account if none exists (called on startup).
func (uc *AdminAuth) EnsureAdmin(ctx context.Context, username, password string, telegramID int64) error {
	user, err := uc.adminRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		admin := &entities.AdminUser{
			Username:     username,
			PasswordHash: string(hashed),
			TelegramID:   telegramID,
			Role:         "admin",
		}
		return uc.adminRepo.Create(ctx, admin)
	}
	return nil
}
