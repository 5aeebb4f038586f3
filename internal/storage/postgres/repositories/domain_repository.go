package repositories

import (
	"context"
	"errors"
	"filegate/internal/domain/models"
	"filegate/internal/storage"
	"fmt"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DomainRepository owns the allowed_domains table. Domains are stored
// lowercase; callers normalize before every read or write so the membership
// test stays an exact match.
type DomainRepository struct {
	db *pgxpool.Pool
}

// NewDomainRepository creates new instance of DomainRepository
func NewDomainRepository(db *pgxpool.Pool) *DomainRepository {
	return &DomainRepository{db: db}
}

// IsAllowed reports whether domain is present in the allowlist.
// Reads go straight to the table, so an administrative change is visible to
// the very next check.
func (r *DomainRepository) IsAllowed(ctx context.Context, domain string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		ctx,
		"SELECT EXISTS(SELECT 1 FROM allowed_domains WHERE domain = $1)",
		domain,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking allowed domain: %w", err)
	}
	return exists, nil
}

// Add inserts a domain into the allowlist
func (r *DomainRepository) Add(ctx context.Context, domain string) error {
	_, err := r.db.Exec(
		ctx,
		"INSERT INTO allowed_domains(domain) VALUES($1)",
		domain,
	)
	if err != nil {
		var pgxError *pgconn.PgError
		if errors.As(err, &pgxError) && pgxError.Code == "23505" {
			return storage.ErrDomainExists
		}
		return fmt.Errorf("error inserting allowed domain: %w", err)
	}
	return nil
}

// AddBulk inserts many domains at once, skipping ones already present.
// Returns the number actually inserted.
func (r *DomainRepository) AddBulk(ctx context.Context, domains []string) (int64, error) {
	tag, err := r.db.Exec(
		ctx,
		"INSERT INTO allowed_domains(domain) SELECT unnest($1::text[]) ON CONFLICT (domain) DO NOTHING",
		domains,
	)
	if err != nil {
		return 0, fmt.Errorf("error bulk inserting allowed domains: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Remove deletes a domain from the allowlist
func (r *DomainRepository) Remove(ctx context.Context, domain string) error {
	tag, err := r.db.Exec(
		ctx,
		"DELETE FROM allowed_domains WHERE domain = $1",
		domain,
	)
	if err != nil {
		return fmt.Errorf("error deleting allowed domain: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrDomainNotFound
	}
	return nil
}

// RemoveBulk deletes many domains at once, returning the number removed.
func (r *DomainRepository) RemoveBulk(ctx context.Context, domains []string) (int64, error) {
	tag, err := r.db.Exec(
		ctx,
		"DELETE FROM allowed_domains WHERE domain = ANY($1)",
		domains,
	)
	if err != nil {
		return 0, fmt.Errorf("error bulk deleting allowed domains: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List returns one page of the allowlist, optionally filtered by substring,
// together with the total row count for that filter.
func (r *DomainRepository) List(ctx context.Context, offset, limit int, search string) ([]models.AllowedDomain, int64, error) {
	var total int64
	err := r.db.QueryRow(
		ctx,
		"SELECT count(*) FROM allowed_domains WHERE ($1 = '' OR domain LIKE '%' || $1 || '%')",
		search,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting allowed domains: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT domain FROM allowed_domains
		 WHERE ($1 = '' OR domain LIKE '%' || $1 || '%')
		 ORDER BY domain
		 OFFSET $2 LIMIT $3`,
		search, offset, limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing allowed domains: %w", err)
	}
	defer rows.Close()

	var result []models.AllowedDomain
	for rows.Next() {
		var d models.AllowedDomain
		if err := rows.Scan(&d.Domain); err != nil {
			return nil, 0, fmt.Errorf("error scanning allowed domain: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration failed: %w", err)
	}
	return result, total, nil
}
