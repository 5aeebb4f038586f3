package repositories

import (
	"context"
	"filegate/internal/domain/models"
	"filegate/internal/storage"
	"fmt"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EmailLogRepository records every email submitted to the verification gate.
// Writes are fire-and-forget from the caller's point of view; a failed insert
// must never fail the verification response.
type EmailLogRepository struct {
	db *pgxpool.Pool
}

// NewEmailLogRepository creates new instance of EmailLogRepository
func NewEmailLogRepository(db *pgxpool.Pool) *EmailLogRepository {
	return &EmailLogRepository{db: db}
}

// Save appends one log row
func (r *EmailLogRepository) Save(ctx context.Context, email, domain string, accepted bool) error {
	_, err := r.db.Exec(
		ctx,
		"INSERT INTO email_logs(email, domain, accepted) VALUES($1, $2, $3)",
		email, domain, accepted,
	)
	if err != nil {
		return fmt.Errorf("error inserting email log: %w", err)
	}
	return nil
}

// List returns one page of logs, newest first, optionally filtered by email
// substring, together with the total row count for that filter.
func (r *EmailLogRepository) List(ctx context.Context, offset, limit int, search string) ([]models.EmailLog, int64, error) {
	var total int64
	err := r.db.QueryRow(
		ctx,
		"SELECT count(*) FROM email_logs WHERE ($1 = '' OR email LIKE '%' || $1 || '%')",
		search,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting email logs: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, email, domain, accepted, created_at FROM email_logs
		 WHERE ($1 = '' OR email LIKE '%' || $1 || '%')
		 ORDER BY created_at DESC, id DESC
		 OFFSET $2 LIMIT $3`,
		search, offset, limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing email logs: %w", err)
	}
	defer rows.Close()

	var result []models.EmailLog
	for rows.Next() {
		var l models.EmailLog
		if err := rows.Scan(&l.ID, &l.Email, &l.Domain, &l.Accepted, &l.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning email log: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration failed: %w", err)
	}
	return result, total, nil
}

// Remove deletes one log row by id
func (r *EmailLogRepository) Remove(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM email_logs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting email log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrLogNotFound
	}
	return nil
}

// RemoveBulk deletes many log rows at once, returning the number removed.
func (r *EmailLogRepository) RemoveBulk(ctx context.Context, ids []int64) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM email_logs WHERE id = ANY($1)", ids)
	if err != nil {
		return 0, fmt.Errorf("error bulk deleting email logs: %w", err)
	}
	return tag.RowsAffected(), nil
}
