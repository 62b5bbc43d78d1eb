package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Provider names understood by the platform.
const (
	ProviderReplit   = "replit"
	ProviderFacebook = "facebook"
	ProviderLinkedIn = "linkedin"
	ProviderGoogle   = "google"
	ProviderLocal    = "local"
)

// IdentityStore defines persistence operations for user identities.
type IdentityStore interface {
	GetByProvider(ctx context.Context, provider, providerUserID string) (UserIdentity, error)
	ListByUser(ctx context.Context, userID string) ([]UserIdentity, error)
	Create(ctx context.Context, identity UserIdentity) (UserIdentity, error)
}

// UserIdentity links a user to one external authentication provider.
// The pair (Provider, ProviderUserID) is unique system-wide and is the
// lookup key that resolves which user a login belongs to. One user may
// own several identities.
type UserIdentity struct {
	ID              uuid.UUID
	UserID          string
	Provider        string
	ProviderUserID  string
	EmailAtAuth     *string
	ProfileSnapshot []byte
	IsVerified      bool
	CreatedAt       time.Time
}

// ProfileSnapshot captures the profile fields delivered by a provider at
// the moment the identity was linked. Stored as JSONB.
type ProfileSnapshot struct {
	Email           string `json:"email,omitempty"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}
