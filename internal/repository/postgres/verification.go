package postgres

import (
	"context"
	"fmt"

	"github.com/coogsnation/identity/internal/model"
)

var _ model.VerificationStore = (*VerificationRepository)(nil)

type VerificationRepository struct {
	db *Connection
}

func NewVerificationRepository(db *Connection) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *VerificationRepository) CountUsersWithIdentity(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM user_identities`,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users with identity: %w", err)
	}
	return count, nil
}

func (r *VerificationRepository) ListOrphans(ctx context.Context) ([]string, error) {
	const query = `
        SELECT u.id
        FROM users u
        LEFT JOIN user_identities ui ON ui.user_id = u.id
        WHERE ui.id IS NULL
        ORDER BY u.id
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned users: %w", err)
	}
	defer rows.Close()

	var orphans []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan orphaned user id: %w", err)
		}
		orphans = append(orphans, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orphaned users: %w", err)
	}

	return orphans, nil
}
