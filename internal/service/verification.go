package service

import (
	"context"
	"fmt"

	"github.com/coogsnation/identity/internal/logger"
	"github.com/coogsnation/identity/internal/model"
)

// Verifier runs the post-migration consistency check. Read-only; orphaned
// users are reported as data for the operator, never as an error.
type Verifier struct {
	store  model.VerificationStore
	logger *logger.Logger
}

func NewVerifier(store model.VerificationStore, logger *logger.Logger) *Verifier {
	return &Verifier{store: store, logger: logger}
}

func (v *Verifier) Run(ctx context.Context) (model.Report, error) {
	total, err := v.store.CountUsers(ctx)
	if err != nil {
		return model.Report{}, fmt.Errorf("failed to count users: %w", err)
	}

	withIdentity, err := v.store.CountUsersWithIdentity(ctx)
	if err != nil {
		return model.Report{}, fmt.Errorf("failed to count users with identity: %w", err)
	}

	orphans, err := v.store.ListOrphans(ctx)
	if err != nil {
		return model.Report{}, fmt.Errorf("failed to list orphaned users: %w", err)
	}

	report := model.Report{
		TotalUsers:        total,
		UsersWithIdentity: withIdentity,
		OrphanedUserIDs:   orphans,
	}

	if report.Clean() {
		v.logger.Info("Verification service: all users have identities",
			"total_users", total,
			"users_with_identity", withIdentity)
	} else {
		v.logger.Warn("Verification service: orphaned users found",
			"total_users", total,
			"users_with_identity", withIdentity,
			"orphans", len(orphans))
	}

	return report, nil
}
