package model

import (
	"context"
	"time"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Touch(ctx context.Context, id string, at time.Time) error
}

// User represents a community member. The ID is opaque and
// provider-independent; users created after the identity migration get a
// generated UUID string, never a provider-issued id.
type User struct {
	ID               string
	Email            *string
	Username         string
	FirstName        *string
	LastName         *string
	ProfileImageURL  *string
	PasswordHash     *string
	PostCount        int
	ReputationPoints int
	IsOnline         bool
	LastActiveAt     *time.Time

	// Legacy OAuth columns. Only populated on rows created before the
	// identity migration; the migration moves them into user_identities
	// and nulls them here.
	OAuthProvider     *string
	OAuthID           *string
	OAuthAccessToken  *string
	OAuthRefreshToken *string
	OAuthTokenExpiry  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
