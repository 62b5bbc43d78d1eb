//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/coogsnation/identity/internal/model"
	"github.com/coogsnation/identity/internal/provider"
	repo "github.com/coogsnation/identity/internal/repository/postgres"
	"github.com/coogsnation/identity/internal/service"
	"github.com/coogsnation/identity/internal/testutil"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "coogsnation_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/coogsnation_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

// seedLegacyUser inserts a pre-migration users row directly, including the
// legacy OAuth columns the repositories never write.
func seedLegacyUser(t *testing.T, ctx context.Context, conn *repo.Connection, id, username string, email, oauthProvider, oauthID *string) {
	t.Helper()
	_, err := conn.Exec(ctx,
		`INSERT INTO users (id, email, username, oauth_provider, oauth_id, oauth_access_token, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, 'legacy-token', NOW() - INTERVAL '1 year', NOW())`,
		id, email, username, oauthProvider, oauthID,
	)
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }

func TestIdentityMigration_EndToEnd(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	users := repo.NewUserRepository(conn)
	identities := repo.NewIdentityRepository(conn)
	migrations := repo.NewMigrationRepository(conn)
	verifications := repo.NewVerificationRepository(conn)

	// Two legacy users: one with explicit oauth columns, one relying on
	// the replit default where the primary key doubles as the provider id.
	seedLegacyUser(t, ctx, conn, "40342997", "replitfan", strPtr("replit@uh.edu"), nil, nil)
	seedLegacyUser(t, ctx, conn, "fbuser", "fbfan", strPtr("fb@uh.edu"), strPtr("facebook"), strPtr("fb-123"))

	registry := provider.NewRegistry("http://localhost:5000", nil)
	migrator := service.NewMigrator(migrations, registry, "replit", testutil.MakeNoopLogger())

	summary, err := migrator.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Summary{Total: 2, Migrated: 2}, summary)

	t.Run("default_fallback", func(t *testing.T) {
		identity, err := identities.GetByProvider(ctx, "replit", "40342997")
		require.NoError(t, err)
		assert.Equal(t, "40342997", identity.UserID)
		assert.True(t, identity.IsVerified)
		require.NotNil(t, identity.EmailAtAuth)
		assert.Equal(t, "replit@uh.edu", *identity.EmailAtAuth)
	})

	t.Run("explicit_legacy_fields", func(t *testing.T) {
		identity, err := identities.GetByProvider(ctx, "facebook", "fb-123")
		require.NoError(t, err)
		assert.Equal(t, "fbuser", identity.UserID)
	})

	t.Run("legacy_fields_cleared", func(t *testing.T) {
		for _, id := range []string{"40342997", "fbuser"} {
			user, err := users.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Nil(t, user.OAuthProvider)
			assert.Nil(t, user.OAuthID)
			assert.Nil(t, user.OAuthAccessToken)
			assert.Nil(t, user.OAuthRefreshToken)
			assert.Nil(t, user.OAuthTokenExpiry)
		}
	})

	t.Run("idempotent_rerun", func(t *testing.T) {
		summary, err := migrator.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.Summary{Total: 2, Skipped: 2}, summary)

		for _, id := range []string{"40342997", "fbuser"} {
			list, err := identities.ListByUser(ctx, id)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		}
	})

	t.Run("verification_clean", func(t *testing.T) {
		verifier := service.NewVerifier(verifications, testutil.MakeNoopLogger())
		report, err := verifier.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), report.TotalUsers)
		assert.Equal(t, int64(2), report.UsersWithIdentity)
		assert.True(t, report.Clean())
	})

	t.Run("verification_reports_orphans", func(t *testing.T) {
		// A user inserted after the run has no identity yet.
		seedLegacyUser(t, ctx, conn, "orphan1", "orphanfan", nil, nil, nil)

		verifier := service.NewVerifier(verifications, testutil.MakeNoopLogger())
		report, err := verifier.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), report.TotalUsers)
		assert.Equal(t, int64(2), report.UsersWithIdentity)
		assert.Equal(t, []string{"orphan1"}, report.OrphanedUserIDs)

		// Re-running the migration picks up only the orphan.
		summary, err := service.NewMigrator(migrations, provider.NewRegistry("http://localhost:5000", nil), "replit", testutil.MakeNoopLogger()).Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.Summary{Total: 3, Migrated: 1, Skipped: 2}, summary)
	})
}

func TestRepositories_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	users := repo.NewUserRepository(conn)
	identities := repo.NewIdentityRepository(conn)

	t.Run("user_repository", func(t *testing.T) {
		email := fmt.Sprintf("%s@uh.edu", uuid.NewString()[:8])
		u := model.User{
			ID:        uuid.NewString(),
			Email:     &email,
			Username:  uuid.NewString()[:12],
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		saved, err := users.Create(ctx, u)
		require.NoError(t, err)
		require.Equal(t, u.ID, saved.ID)

		byEmail, err := users.GetByEmail(ctx, email)
		require.NoError(t, err)
		require.Equal(t, u.ID, byEmail.ID)

		byUsername, err := users.GetByUsername(ctx, u.Username)
		require.NoError(t, err)
		require.Equal(t, u.ID, byUsername.ID)

		require.NoError(t, users.Touch(ctx, u.ID, time.Now()))
		touched, err := users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, touched.IsOnline)
		assert.NotNil(t, touched.LastActiveAt)

		_, err = users.GetByID(ctx, "missing")
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("identity_repository", func(t *testing.T) {
		owner := model.User{ID: uuid.NewString(), Username: uuid.NewString()[:12], CreatedAt: time.Now(), UpdatedAt: time.Now()}
		_, err := users.Create(ctx, owner)
		require.NoError(t, err)

		identity := model.UserIdentity{
			ID:              uuid.New(),
			UserID:          owner.ID,
			Provider:        "google",
			ProviderUserID:  uuid.NewString(),
			ProfileSnapshot: []byte(`{"email":"g@uh.edu"}`),
			IsVerified:      true,
			CreatedAt:       time.Now(),
		}
		saved, err := identities.Create(ctx, identity)
		require.NoError(t, err)
		require.Equal(t, identity.ID, saved.ID)

		found, err := identities.GetByProvider(ctx, "google", identity.ProviderUserID)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, found.UserID)

		// (provider, provider_user_id) is unique system-wide
		dup := identity
		dup.ID = uuid.New()
		_, err = identities.Create(ctx, dup)
		require.Error(t, err)

		_, err = identities.GetByProvider(ctx, "google", "missing")
		require.ErrorIs(t, err, model.ErrNotFound)
	})
}
