package interfaces

import (
	"context"
	"filegate/internal/domain/models"
)

// TokenStorage persists single-use download tokens
type TokenStorage interface {
	Issue(ctx context.Context, value string) error
	ConsumeIfValid(ctx context.Context, value string) error
}

// DomainChecker answers allowlist membership for an email domain
type DomainChecker interface {
	IsAllowed(ctx context.Context, domain string) bool
}

// RedirectProvider resolves redirect targets and signs resource grants
type RedirectProvider interface {
	ResolveRedirect(email string) (string, error)
	SignResourceGrant(ctx context.Context) (models.ResourceGrant, error)
}

// EmailLogStorage records submitted emails; failures are the caller's to drop
type EmailLogStorage interface {
	Save(ctx context.Context, email, domain string, accepted bool) error
}
