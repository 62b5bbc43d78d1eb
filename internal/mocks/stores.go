// Package mocks provides testify mocks for the model interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/coogsnation/identity/internal/model"
)

type UserStore struct {
	mock.Mock
}

func (m *UserStore) GetByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	if rf, ok := args.Get(0).(func(context.Context, model.User) (model.User, error)); ok {
		return rf(ctx, user)
	}
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Touch(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type IdentityStore struct {
	mock.Mock
}

func (m *IdentityStore) GetByProvider(ctx context.Context, provider, providerUserID string) (model.UserIdentity, error) {
	args := m.Called(ctx, provider, providerUserID)
	return args.Get(0).(model.UserIdentity), args.Error(1)
}

func (m *IdentityStore) ListByUser(ctx context.Context, userID string) ([]model.UserIdentity, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserIdentity), args.Error(1)
}

func (m *IdentityStore) Create(ctx context.Context, identity model.UserIdentity) (model.UserIdentity, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(model.UserIdentity), args.Error(1)
}

type MigrationStore struct {
	mock.Mock
}

func (m *MigrationStore) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MigrationStore) Migrate(ctx context.Context, user model.User, identity model.UserIdentity) error {
	args := m.Called(ctx, user, identity)
	return args.Error(0)
}

type VerificationStore struct {
	mock.Mock
}

func (m *VerificationStore) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *VerificationStore) CountUsersWithIdentity(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *VerificationStore) ListOrphans(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) GenerateSessionToken(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) ParseSessionToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

type ReportSink struct {
	mock.Mock
}

func (m *ReportSink) Put(ctx context.Context, key string, payload []byte) error {
	args := m.Called(ctx, key, payload)
	return args.Error(0)
}
