package model

import "context"

// MigrationStore defines the persistence operations used by the identity
// migration batch.
type MigrationStore interface {
	ListUsers(ctx context.Context) ([]User, error)
	// Migrate creates the identity row and clears the user's legacy OAuth
	// columns in a single transaction. Returns ErrAlreadyMigrated when the
	// user already owns at least one identity.
	Migrate(ctx context.Context, user User, identity UserIdentity) error
}

// VerificationStore defines the read-only queries used by the
// post-migration consistency check.
type VerificationStore interface {
	CountUsers(ctx context.Context) (int64, error)
	CountUsersWithIdentity(ctx context.Context) (int64, error)
	ListOrphans(ctx context.Context) ([]string, error)
}

// Summary reports the outcome of one migration run.
type Summary struct {
	Total    int `json:"total"`
	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Report is the result of the verification pass. A non-empty orphan list
// means some users have no linked identity and the migration must be
// investigated before the legacy columns are dropped.
type Report struct {
	TotalUsers        int64    `json:"totalUsers"`
	UsersWithIdentity int64    `json:"usersWithIdentity"`
	OrphanedUserIDs   []string `json:"orphanedUserIds"`
}

// Clean reports whether every user owns at least one identity.
func (r Report) Clean() bool {
	return len(r.OrphanedUserIDs) == 0
}
