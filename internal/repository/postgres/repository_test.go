package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUserRepository(t *testing.T) {
	db := &Connection{}
	repo := NewUserRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestNewIdentityRepository(t *testing.T) {
	db := &Connection{}
	repo := NewIdentityRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestNewMigrationRepository(t *testing.T) {
	db := &Connection{}
	repo := NewMigrationRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestNewVerificationRepository(t *testing.T) {
	db := &Connection{}
	repo := NewVerificationRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}
