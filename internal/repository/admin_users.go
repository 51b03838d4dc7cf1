package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eximbot/internal/entities"
)

type AdminUserRepository struct {
	db *pgxpool.Pool
}

func NewAdminUserRepository(db *pgxpool.Pool) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

func (r *AdminUserRepository) Create(ctx context.Context, user *entities.AdminUser) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO admin_users (username, password_hash, telegram_id, role) VALUES ($1, $2, $3, $4)",
		user.Username, user.PasswordHash, user.TelegramID, user.Role)
	return err
}

func (r *AdminUserRepository) GetByUsername(ctx context.Context, username string) (*entities.AdminUser, error) {
	var user entities.AdminUser
	err := r.db.QueryRow(ctx,
		"SELECT id, username, password_hash, telegram_id, role FROM admin_users WHERE username = $1",
		username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.TelegramID, &user.Role)

	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
