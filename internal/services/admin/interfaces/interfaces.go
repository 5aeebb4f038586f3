package interfaces

import (
	"context"
	"filegate/internal/domain/models"
)

// AdminStorage reads operator accounts
type AdminStorage interface {
	Admin(ctx context.Context, username string) (models.Admin, error)
}

// EmailLogStorage lists and prunes recorded emails
type EmailLogStorage interface {
	List(ctx context.Context, offset, limit int, search string) ([]models.EmailLog, int64, error)
	Remove(ctx context.Context, id int64) error
	RemoveBulk(ctx context.Context, ids []int64) (int64, error)
}
