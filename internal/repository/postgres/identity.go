package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/coogsnation/identity/internal/model"
)

var _ model.IdentityStore = (*IdentityRepository)(nil)

type IdentityRepository struct {
	db *Connection
}

func NewIdentityRepository(db *Connection) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) GetByProvider(ctx context.Context, provider, providerUserID string) (model.UserIdentity, error) {
	const query = `
        SELECT id, user_id, provider, provider_user_id, email_at_auth, profile_snapshot, is_verified, created_at
        FROM user_identities
        WHERE provider = $1 AND provider_user_id = $2
    `

	var identity model.UserIdentity
	if err := r.db.QueryRow(ctx, query, provider, providerUserID).Scan(
		&identity.ID,
		&identity.UserID,
		&identity.Provider,
		&identity.ProviderUserID,
		&identity.EmailAtAuth,
		&identity.ProfileSnapshot,
		&identity.IsVerified,
		&identity.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserIdentity{}, model.ErrNotFound
		}
		return model.UserIdentity{}, fmt.Errorf("failed to get identity by provider: %w", err)
	}

	return identity, nil
}

func (r *IdentityRepository) ListByUser(ctx context.Context, userID string) ([]model.UserIdentity, error) {
	const query = `
        SELECT id, user_id, provider, provider_user_id, email_at_auth, profile_snapshot, is_verified, created_at
        FROM user_identities
        WHERE user_id = $1
        ORDER BY created_at
    `

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	defer rows.Close()

	var identities []model.UserIdentity
	for rows.Next() {
		var identity model.UserIdentity
		if err := rows.Scan(
			&identity.ID,
			&identity.UserID,
			&identity.Provider,
			&identity.ProviderUserID,
			&identity.EmailAtAuth,
			&identity.ProfileSnapshot,
			&identity.IsVerified,
			&identity.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read identities: %w", err)
	}

	return identities, nil
}

func (r *IdentityRepository) Create(ctx context.Context, identity model.UserIdentity) (model.UserIdentity, error) {
	const query = `
        INSERT INTO user_identities (id, user_id, provider, provider_user_id, email_at_auth, profile_snapshot, is_verified, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, user_id, provider, provider_user_id, email_at_auth, profile_snapshot, is_verified, created_at
    `

	var saved model.UserIdentity
	if err := r.db.QueryRow(ctx, query,
		identity.ID,
		identity.UserID,
		identity.Provider,
		identity.ProviderUserID,
		identity.EmailAtAuth,
		identity.ProfileSnapshot,
		identity.IsVerified,
		identity.CreatedAt,
	).Scan(
		&saved.ID,
		&saved.UserID,
		&saved.Provider,
		&saved.ProviderUserID,
		&saved.EmailAtAuth,
		&saved.ProfileSnapshot,
		&saved.IsVerified,
		&saved.CreatedAt,
	); err != nil {
		return model.UserIdentity{}, fmt.Errorf("failed to create identity: %w", err)
	}

	return saved, nil
}
