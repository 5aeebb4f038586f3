package admin

import (
	"context"
	"errors"
	"filegate/internal/config"
	"filegate/internal/domain/models"
	"filegate/internal/lib/jwt"
	"filegate/internal/services/admin/interfaces"
	"filegate/internal/storage"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Admin serves the management surface: operator login and email-log
// housekeeping. Allowlist mutations live on the domains gate.
type Admin struct {
	log    *slog.Logger
	admins interfaces.AdminStorage
	logs   interfaces.EmailLogStorage
	conf   config.AdminConfig
}

// New creates an instance of Admin service
func New(
	log *slog.Logger,
	admins interfaces.AdminStorage,
	logs interfaces.EmailLogStorage,
	conf config.AdminConfig,
) *Admin {
	return &Admin{log: log, admins: admins, logs: logs, conf: conf}
}

// Login checks operator credentials and mints a bearer token for the
// management endpoints. Unknown usernames and wrong passwords are not
// distinguished in the returned error.
func (a *Admin) Login(ctx context.Context, username, password string) (string, error) {
	const op = "admin.Login"
	logger := a.log.With(slog.String("op", op), slog.String("username", username))

	account, err := a.admins.Admin(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrAdminNotFound) {
			logger.Info("login attempt for unknown admin")
			return "", ErrInvalidCredentials
		}
		logger.Error("error loading admin account", slog.Any("error", err))
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword(account.PassHash, []byte(password)); err != nil {
		logger.Info("login attempt with wrong password")
		return "", ErrInvalidCredentials
	}

	token, err := jwt.NewAdminToken(account.Username, a.conf.JWTSecret, a.conf.TokenTTL)
	if err != nil {
		logger.Error("error minting admin token", slog.Any("error", err))
		return "", err
	}
	logger.Info("admin logged in")
	return token, nil
}

// VerifyToken validates a bearer token and returns the operator it belongs to.
func (a *Admin) VerifyToken(token string) (string, error) {
	return jwt.VerifyAdminToken(token, a.conf.JWTSecret)
}

// Logs returns one page of recorded emails with the filtered total.
func (a *Admin) Logs(ctx context.Context, offset, limit int, search string) ([]models.EmailLog, int64, error) {
	return a.logs.List(ctx, offset, limit, search)
}

// RemoveLog deletes one recorded email by id.
func (a *Admin) RemoveLog(ctx context.Context, id int64) error {
	return a.logs.Remove(ctx, id)
}

// RemoveLogs deletes a batch of recorded emails, returning the number removed.
func (a *Admin) RemoveLogs(ctx context.Context, ids []int64) (int64, error) {
	return a.logs.RemoveBulk(ctx, ids)
}
