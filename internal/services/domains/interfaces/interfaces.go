package interfaces

import (
	"context"
	"filegate/internal/domain/models"
)

// DomainStorage persists the email-domain allowlist
type DomainStorage interface {
	IsAllowed(ctx context.Context, domain string) (bool, error)
	Add(ctx context.Context, domain string) error
	AddBulk(ctx context.Context, domains []string) (int64, error)
	Remove(ctx context.Context, domain string) error
	RemoveBulk(ctx context.Context, domains []string) (int64, error)
	List(ctx context.Context, offset, limit int, search string) ([]models.AllowedDomain, int64, error)
}
