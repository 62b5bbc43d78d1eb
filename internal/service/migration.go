package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/coogsnation/identity/internal/logger"
	"github.com/coogsnation/identity/internal/model"
	"github.com/coogsnation/identity/internal/provider"
)

// Migrator moves legacy single-provider users onto the user_identities
// table. The legacy schema overloaded the user's primary key as the OAuth
// provider id; the migrator gives every user an explicit identity row and
// nulls the legacy OAuth columns.
//
// The run is a sequential single pass with one transaction per user. It is
// idempotent: users that already own an identity are skipped, so the run
// can be repeated after a partial failure and only processes the remainder.
type Migrator struct {
	store           model.MigrationStore
	providers       *provider.Registry
	defaultProvider string
	logger          *logger.Logger
}

func NewMigrator(
	store model.MigrationStore,
	providers *provider.Registry,
	defaultProvider string,
	logger *logger.Logger,
) *Migrator {
	return &Migrator{
		store:           store,
		providers:       providers,
		defaultProvider: defaultProvider,
		logger:          logger,
	}
}

// Run migrates every user and returns the run summary. Per-user failures
// are isolated: the user's transaction rolls back, the failure is counted,
// and the batch continues. An error is returned only when the user set
// cannot be read at all.
func (m *Migrator) Run(ctx context.Context) (model.Summary, error) {
	m.logger.Debug("Migration service: starting identity migration")

	users, err := m.store.ListUsers(ctx)
	if err != nil {
		m.logger.Error("Migration service: failed to list users",
			"error", err.Error())
		return model.Summary{}, fmt.Errorf("failed to list users: %w", err)
	}

	summary := model.Summary{Total: len(users)}

	for _, user := range users {
		identity, err := m.legacyIdentity(user)
		if err != nil {
			summary.Failed++
			m.logger.Error("Migration service: failed to build identity",
				"user_id", user.ID,
				"error", err.Error())
			continue
		}

		if !m.providers.Known(identity.Provider) {
			m.logger.Warn("Migration service: legacy provider is not registered",
				"user_id", user.ID,
				"provider", identity.Provider)
		}

		err = m.store.Migrate(ctx, user, identity)
		switch {
		case errors.Is(err, model.ErrAlreadyMigrated):
			summary.Skipped++
			m.logger.Info("Migration service: user already migrated, skipping",
				"user_id", user.ID)
		case err != nil:
			summary.Failed++
			m.logger.Error("Migration service: failed to migrate user",
				"user_id", user.ID,
				"error", err.Error())
		default:
			summary.Migrated++
			m.logger.Debug("Migration service: user migrated",
				"user_id", user.ID,
				"provider", identity.Provider,
				"provider_user_id", identity.ProviderUserID)
		}
	}

	m.logger.Info("Migration service: run complete",
		"total", summary.Total,
		"migrated", summary.Migrated,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return summary, nil
}

// legacyIdentity derives the identity row for a legacy user. Explicit
// oauth_provider/oauth_id columns win; otherwise the provider falls back to
// the configured default and the provider id to the user's own primary key,
// which is what the legacy schema stored there. CreatedAt is copied from
// the user to preserve historical ordering.
func (m *Migrator) legacyIdentity(user model.User) (model.UserIdentity, error) {
	prov := m.defaultProvider
	providerUserID := user.ID

	if user.OAuthProvider != nil && *user.OAuthProvider != "" {
		prov = *user.OAuthProvider
	}
	if user.OAuthID != nil && *user.OAuthID != "" {
		providerUserID = *user.OAuthID
	}

	marshaled, err := json.Marshal(model.ProfileSnapshot{
		Email:           deref(user.Email),
		FirstName:       deref(user.FirstName),
		LastName:        deref(user.LastName),
		ProfileImageURL: deref(user.ProfileImageURL),
	})
	if err != nil {
		return model.UserIdentity{}, fmt.Errorf("failed to marshal profile snapshot: %w", err)
	}

	return model.UserIdentity{
		ID:              uuid.New(),
		UserID:          user.ID,
		Provider:        prov,
		ProviderUserID:  providerUserID,
		EmailAtAuth:     user.Email,
		ProfileSnapshot: marshaled,
		IsVerified:      true,
		CreatedAt:       user.CreatedAt,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
