package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/gojo5t5/papertrade/internal/models"
)

// Input validation errors, surfaced as 400s at the API boundary.
var (
	ErrMissingUsername  = errors.New("username is required")
	ErrMissingPassword  = errors.New("password is required")
	ErrPasswordMismatch = errors.New("password and confirmation do not match")
)

// UserStore is the slice of the ledger store the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
}

// Service handles registration and credential checks. It never manages
// sessions; callers exchange an authenticated user for a session
// themselves.
type Service struct {
	store        UserStore
	startingCash decimal.Decimal
}

// NewService creates an auth service. startingCash is the balance granted
// to every new account.
func NewService(store UserStore, startingCash decimal.Decimal) *Service {
	return &Service{
		store:        store,
		startingCash: startingCash,
	}
}

// Register creates a new account with the starting cash balance.
func (s *Service) Register(ctx context.Context, username, password, confirmation string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrMissingUsername
	}
	if password == "" {
		return nil, ErrMissingPassword
	}
	if password != confirmation {
		return nil, ErrPasswordMismatch
	}

	taken, err := s.store.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Cash:         s.startingCash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks a username/password pair and returns the user.
// Unknown usernames and wrong passwords are indistinguishable to the
// caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID int, current, updated, confirmation string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return models.ErrInvalidCredentials
	}
	if updated == "" {
		return ErrMissingPassword
	}
	if updated != confirmation {
		return ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(updated), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.store.UpdatePassword(ctx, userID, string(hash))
}
