package repositories

import (
	"context"
	"errors"
	"filegate/internal/domain/models"
	"filegate/internal/storage"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepository reads operator accounts for the management endpoints.
type AdminRepository struct {
	db *pgxpool.Pool
}

// NewAdminRepository creates new instance of AdminRepository
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

// Admin gets admin account from db by specified username
func (r *AdminRepository) Admin(ctx context.Context, username string) (models.Admin, error) {
	var admin models.Admin
	err := r.db.QueryRow(
		ctx,
		"SELECT id, username, pass_hash FROM admins WHERE username = $1",
		username,
	).Scan(&admin.ID, &admin.Username, &admin.PassHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Admin{}, storage.ErrAdminNotFound
		}
		return models.Admin{}, fmt.Errorf("error selecting admin: %w", err)
	}
	return admin, nil
}
