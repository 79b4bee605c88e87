package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"tally/internal/auth"
	"tally/internal/core"
	applog "tally/internal/log"
)

const minPasswordLength = 6

// UserStore is the account persistence surface.
type UserStore interface {
	InsertUser(ctx context.Context, u core.User) error
	FindUserByEmail(ctx context.Context, email string) (*core.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*core.User, error)
}

// UserService handles registration and login. Both return a signed
// session token on success.
type UserService struct {
	store  UserStore
	tokens *auth.TokenManager
	logger *applog.Logger
}

func NewUserService(store UserStore, tokens *auth.TokenManager, logger *applog.Logger) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
		logger: logger.WithComponent(applog.ComponentAuth),
	}
}

// Register creates an account. Email is normalized to lowercase and
// must be unused.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*core.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	verr := core.NewValidationError()
	if name == "" {
		verr.Add("name", "name is required")
	}
	if email == "" {
		verr.Add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		verr.Add("email", "a valid email is required")
	}
	if len(password) < minPasswordLength {
		verr.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, "", err
	}

	_, err := s.store.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		verr.Add("email", "an account with this email already exists")
		return nil, "", verr
	case !errors.Is(err, core.ErrNotFound):
		return nil, "", fmt.Errorf("check existing account: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := core.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.InsertUser(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create account: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "account registered", applog.FieldUserID, user.ID.String())
	return &user, token, nil
}

// Login verifies credentials. Both an unknown email and a wrong
// password report core.ErrUnauthenticated, never which of the two it
// was.
func (s *UserService) Login(ctx context.Context, email, password string) (*core.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, "", core.ErrUnauthenticated
		}
		return nil, "", fmt.Errorf("find account: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", core.ErrUnauthenticated
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "login succeeded", applog.FieldUserID, user.ID.String())
	return user, token, nil
}

// Profile returns the account for an authenticated caller.
func (s *UserService) Profile(ctx context.Context, id uuid.UUID) (*core.User, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}
