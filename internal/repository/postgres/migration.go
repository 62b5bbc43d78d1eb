package postgres

import (
	"context"
	"fmt"

	"github.com/coogsnation/identity/internal/model"
)

var _ model.MigrationStore = (*MigrationRepository)(nil)

type MigrationRepository struct {
	db *Connection
}

func NewMigrationRepository(db *Connection) *MigrationRepository {
	return &MigrationRepository{db: db}
}

func (r *MigrationRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	return users, nil
}

// Migrate performs one user's migration atomically: either the identity row
// exists and the legacy columns are cleared, or nothing changed.
func (r *MigrationRepository) Migrate(ctx context.Context, user model.User, identity model.UserIdentity) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var existing int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_identities WHERE user_id = $1`, user.ID,
	).Scan(&existing); err != nil {
		return fmt.Errorf("failed to count existing identities: %w", err)
	}
	if existing > 0 {
		return model.ErrAlreadyMigrated
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO user_identities (id, user_id, provider, provider_user_id, email_at_auth, profile_snapshot, is_verified, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		identity.ID,
		identity.UserID,
		identity.Provider,
		identity.ProviderUserID,
		identity.EmailAtAuth,
		identity.ProfileSnapshot,
		identity.IsVerified,
		identity.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users
		 SET oauth_provider = NULL,
		     oauth_id = NULL,
		     oauth_access_token = NULL,
		     oauth_refresh_token = NULL,
		     oauth_token_expiry = NULL,
		     updated_at = NOW()
		 WHERE id = $1`,
		user.ID,
	); err != nil {
		return fmt.Errorf("failed to clear legacy oauth fields: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}

	return nil
}
