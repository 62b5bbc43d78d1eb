package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/coogsnation/identity/internal/logger"
	"github.com/coogsnation/identity/internal/model"
	"github.com/coogsnation/identity/internal/password"
	"github.com/coogsnation/identity/internal/provider"
)

// Auth resolves provider logins to users, links new identities, and handles
// local credential signup and login.
type Auth struct {
	userStore     model.UserStore
	identityStore model.IdentityStore
	providers     *provider.Registry
	passwords     *password.Service
	tokens        model.TokenManager
	validate      *validator.Validate
	logger        *logger.Logger
}

func NewAuth(
	userStore model.UserStore,
	identityStore model.IdentityStore,
	providers *provider.Registry,
	passwords *password.Service,
	tokens model.TokenManager,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:     userStore,
		identityStore: identityStore,
		providers:     providers,
		passwords:     passwords,
		tokens:        tokens,
		validate:      validator.New(),
		logger:        logger,
	}
}

// ProviderLogin carries the provider-verified profile delivered by an OAuth
// callback handler.
type ProviderLogin struct {
	Provider        string
	ProviderUserID  string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
}

// SignupParams carries validated local signup input.
type SignupParams struct {
	Email     string `validate:"required,email"`
	Username  string `validate:"required,min=3,max=32"`
	Password  string `validate:"required"`
	FirstName string `validate:"omitempty,max=100"`
	LastName  string `validate:"omitempty,max=100"`
}

// Session is the result of a successful authentication.
type Session struct {
	User  model.User
	Token string
}

// Authenticate resolves a provider login to a user. An existing
// (provider, providerUserID) identity wins; otherwise a matching email
// attaches a new identity to that user (account linking); otherwise a new
// user is created with a generated id.
func (a *Auth) Authenticate(ctx context.Context, login ProviderLogin) (Session, error) {
	a.logger.Debug("Auth service: authenticating provider login",
		"provider", login.Provider,
		"provider_user_id", login.ProviderUserID)

	if !a.providers.Known(login.Provider) {
		return Session{}, model.ErrUnknownProvider
	}

	identity, err := a.identityStore.GetByProvider(ctx, login.Provider, login.ProviderUserID)
	if err == nil {
		user, err := a.userStore.GetByID(ctx, identity.UserID)
		if err != nil {
			return Session{}, fmt.Errorf("failed to get user by id: %w", err)
		}
		return a.openSession(ctx, user)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return Session{}, fmt.Errorf("failed to get identity by provider: %w", err)
	}

	user, created, err := a.resolveUser(ctx, login)
	if err != nil {
		return Session{}, err
	}

	if err := a.linkIdentity(ctx, user, login); err != nil {
		return Session{}, err
	}

	if created {
		a.logger.Info("Auth service: new user created",
			"user_id", user.ID,
			"provider", login.Provider)
	} else {
		a.logger.Info("Auth service: identity linked to existing user",
			"user_id", user.ID,
			"provider", login.Provider)
	}

	return a.openSession(ctx, user)
}

// SignupLocal creates a user with credential-based authentication. The
// password policy is checked before any hashing happens.
func (a *Auth) SignupLocal(ctx context.Context, params SignupParams) (Session, error) {
	a.logger.Debug("Auth service: local signup",
		"username", params.Username)

	if err := a.validate.Struct(params); err != nil {
		return Session{}, fmt.Errorf("invalid signup params: %w", err)
	}

	if !a.passwords.IsSecure(params.Password) {
		return Session{}, model.ErrWeakPassword
	}

	if _, err := a.userStore.GetByEmail(ctx, params.Email); err == nil {
		return Session{}, model.ErrEmailTaken
	} else if !errors.Is(err, model.ErrNotFound) {
		return Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if _, err := a.userStore.GetByUsername(ctx, params.Username); err == nil {
		return Session{}, model.ErrUsernameTaken
	} else if !errors.Is(err, model.ErrNotFound) {
		return Session{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	hash, err := a.passwords.Hash(params.Password)
	if err != nil {
		return Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        &params.Email,
		Username:     params.Username,
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if params.FirstName != "" {
		user.FirstName = &params.FirstName
	}
	if params.LastName != "" {
		user.LastName = &params.LastName
	}

	user, err = a.userStore.Create(ctx, user)
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"username", params.Username,
			"error", err.Error())
		return Session{}, fmt.Errorf("failed to create user: %w", err)
	}

	login := ProviderLogin{
		Provider:       model.ProviderLocal,
		ProviderUserID: user.ID,
		Email:          params.Email,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
	}
	if err := a.linkIdentity(ctx, user, login); err != nil {
		return Session{}, err
	}

	a.logger.Info("Auth service: local signup completed",
		"user_id", user.ID,
		"username", params.Username)

	return a.openSession(ctx, user)
}

// LoginLocal authenticates by email or username plus password. All
// credential failures collapse into ErrInvalidCredentials.
func (a *Auth) LoginLocal(ctx context.Context, login, plaintext string) (Session, error) {
	user, err := a.userStore.GetByEmail(ctx, login)
	if errors.Is(err, model.ErrNotFound) {
		user, err = a.userStore.GetByUsername(ctx, login)
	}
	if errors.Is(err, model.ErrNotFound) {
		return Session{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to get user: %w", err)
	}

	if user.PasswordHash == nil || !a.passwords.Verify(plaintext, *user.PasswordHash) {
		a.logger.Info("Auth service: invalid credentials",
			"user_id", user.ID)
		return Session{}, model.ErrInvalidCredentials
	}

	return a.openSession(ctx, user)
}

// resolveUser finds the user a fresh identity belongs to, creating one when
// neither the identity nor the email is known.
func (a *Auth) resolveUser(ctx context.Context, login ProviderLogin) (model.User, bool, error) {
	if login.Email != "" {
		existing, err := a.userStore.GetByEmail(ctx, login.Email)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			return model.User{}, false, fmt.Errorf("failed to get user by email: %w", err)
		}
	}

	username, err := a.pickUsername(ctx, login)
	if err != nil {
		return model.User{}, false, err
	}

	now := time.Now()
	user := model.User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if login.Email != "" {
		user.Email = &login.Email
	}
	if login.FirstName != "" {
		user.FirstName = &login.FirstName
	}
	if login.LastName != "" {
		user.LastName = &login.LastName
	}
	if login.ProfileImageURL != "" {
		user.ProfileImageURL = &login.ProfileImageURL
	}

	user, err = a.userStore.Create(ctx, user)
	if err != nil {
		return model.User{}, false, fmt.Errorf("failed to create user: %w", err)
	}

	return user, true, nil
}

func (a *Auth) linkIdentity(ctx context.Context, user model.User, login ProviderLogin) error {
	snapshot, err := json.Marshal(model.ProfileSnapshot{
		Email:           login.Email,
		FirstName:       login.FirstName,
		LastName:        login.LastName,
		ProfileImageURL: login.ProfileImageURL,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal profile snapshot: %w", err)
	}

	identity := model.UserIdentity{
		ID:              uuid.New(),
		UserID:          user.ID,
		Provider:        login.Provider,
		ProviderUserID:  login.ProviderUserID,
		ProfileSnapshot: snapshot,
		IsVerified:      true,
		CreatedAt:       time.Now(),
	}
	if login.Email != "" {
		identity.EmailAtAuth = &login.Email
	}

	if _, err := a.identityStore.Create(ctx, identity); err != nil {
		a.logger.Error("Auth service: failed to create identity",
			"user_id", user.ID,
			"provider", login.Provider,
			"error", err.Error())
		return fmt.Errorf("failed to create identity: %w", err)
	}

	return nil
}

func (a *Auth) openSession(ctx context.Context, user model.User) (Session, error) {
	token, err := a.tokens.GenerateSessionToken(user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	if err := a.userStore.Touch(ctx, user.ID, time.Now()); err != nil {
		return Session{}, fmt.Errorf("failed to update user activity: %w", err)
	}

	return Session{User: user, Token: token}, nil
}

// pickUsername derives a username from the login email, falling back to the
// provider id, and disambiguates collisions with a short random suffix.
func (a *Auth) pickUsername(ctx context.Context, login ProviderLogin) (string, error) {
	base := login.ProviderUserID
	if login.Email != "" {
		base = strings.SplitN(login.Email, "@", 2)[0]
	}
	base = strings.ToLower(base)

	_, err := a.userStore.GetByUsername(ctx, base)
	if errors.Is(err, model.ErrNotFound) {
		return base, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user by username: %w", err)
	}

	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}
