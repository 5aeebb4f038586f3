package domains

import (
	"context"
	"errors"
	"filegate/internal/domain/models"
	"filegate/internal/services/domains/interfaces"
	"log/slog"
	"strings"
)

var ErrMalformedEmail = errors.New("malformed email address")

// Gate answers whether an email domain may pass the verification gate.
// Every check reads the backing table directly, so administrative changes are
// visible to the next call.
type Gate struct {
	log     *slog.Logger
	storage interfaces.DomainStorage
}

// New creates an instance of Gate service
func New(log *slog.Logger, storage interfaces.DomainStorage) *Gate {
	return &Gate{log: log, storage: storage}
}

// NormalizeDomain extracts the substring after the first '@' and lowercases
// it. Returns ErrMalformedEmail when no '@' is present.
func NormalizeDomain(email string) (string, error) {
	_, domain, found := strings.Cut(email, "@")
	if !found {
		return "", ErrMalformedEmail
	}
	return strings.ToLower(domain), nil
}

// IsAllowed reports allowlist membership for domain, case-insensitively.
// Fails closed: a storage error is logged and treated as not allowed.
func (g *Gate) IsAllowed(ctx context.Context, domain string) bool {
	const op = "domains.IsAllowed"

	allowed, err := g.storage.IsAllowed(ctx, strings.ToLower(domain))
	if err != nil {
		g.log.Error("allowlist lookup failed, rejecting",
			slog.String("op", op), slog.Any("error", err))
		return false
	}
	return allowed
}

// Allow adds a domain to the allowlist
func (g *Gate) Allow(ctx context.Context, domain string) error {
	return g.storage.Add(ctx, strings.ToLower(strings.TrimSpace(domain)))
}

// AllowMany adds a batch of domains, normalizing each and skipping blanks and
// '#'-prefixed comment lines. Returns the number of new entries.
func (g *Gate) AllowMany(ctx context.Context, domains []string) (int64, error) {
	normalized := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" || strings.HasPrefix(d, "#") {
			continue
		}
		normalized = append(normalized, d)
	}
	if len(normalized) == 0 {
		return 0, nil
	}
	return g.storage.AddBulk(ctx, normalized)
}

// Disallow removes a domain from the allowlist
func (g *Gate) Disallow(ctx context.Context, domain string) error {
	return g.storage.Remove(ctx, strings.ToLower(strings.TrimSpace(domain)))
}

// DisallowMany removes a batch of domains, returning the number removed.
func (g *Gate) DisallowMany(ctx context.Context, domains []string) (int64, error) {
	normalized := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		normalized = append(normalized, d)
	}
	if len(normalized) == 0 {
		return 0, nil
	}
	return g.storage.RemoveBulk(ctx, normalized)
}

// List returns one page of the allowlist with the filtered total.
func (g *Gate) List(ctx context.Context, offset, limit int, search string) ([]models.AllowedDomain, int64, error) {
	return g.storage.List(ctx, offset, limit, strings.ToLower(search))
}
