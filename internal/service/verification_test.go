package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/coogsnation/identity/internal/mocks"
	"github.com/coogsnation/identity/internal/testutil"
)

func TestVerifier_Run_Clean(t *testing.T) {
	ctx := context.Background()
	store := &mocks.VerificationStore{}

	store.On("CountUsers", mock.Anything).Return(int64(5), nil)
	store.On("CountUsersWithIdentity", mock.Anything).Return(int64(5), nil)
	store.On("ListOrphans", mock.Anything).Return([]string{}, nil)

	report, err := NewVerifier(store, testutil.MakeNoopLogger()).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(5), report.TotalUsers)
	assert.Equal(t, int64(5), report.UsersWithIdentity)
	assert.True(t, report.Clean())
}

func TestVerifier_Run_ReportsOrphans(t *testing.T) {
	ctx := context.Background()
	store := &mocks.VerificationStore{}

	store.On("CountUsers", mock.Anything).Return(int64(5), nil)
	store.On("CountUsersWithIdentity", mock.Anything).Return(int64(3), nil)
	store.On("ListOrphans", mock.Anything).Return([]string{"u4", "u5"}, nil)

	report, err := NewVerifier(store, testutil.MakeNoopLogger()).Run(ctx)
	require.NoError(t, err)

	assert.False(t, report.Clean())
	assert.Equal(t, []string{"u4", "u5"}, report.OrphanedUserIDs)
	assert.Equal(t, int64(report.TotalUsers-report.UsersWithIdentity), int64(len(report.OrphanedUserIDs)))
}

func TestVerifier_Run_CountFailure(t *testing.T) {
	ctx := context.Background()
	store := &mocks.VerificationStore{}

	store.On("CountUsers", mock.Anything).Return(int64(0), errors.New("connection refused"))

	_, err := NewVerifier(store, testutil.MakeNoopLogger()).Run(ctx)
	require.Error(t, err)
}
