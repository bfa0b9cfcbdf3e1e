package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/service/auth"
	"github.com/converselab/converse-api/internal/store"
)

// UserService provides registration, login, and profile operations.
type UserService interface {
	// Register creates a new user account. Username and email must be unique;
	// conflicts surface as store.ErrUsernameExists / store.ErrEmailExists.
	Register(ctx context.Context, username, email, password string) (*domain.User, error)

	// Login authenticates by username or email plus password and returns a
	// signed access token. Unknown user and wrong password both return
	// ErrInvalidCredentials.
	Login(ctx context.Context, login, password string) (string, *domain.User, error)

	// GetUser retrieves a user by their ID.
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore  store.UserStore
	jwtService auth.JWTService
	hasher     *auth.BcryptHasher
	db         *sql.DB
	logger     *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	jwtService auth.JWTService,
	hasher *auth.BcryptHasher,
	db *sql.DB,
	logger *slog.Logger,
) UserService {
	return &UserServiceImpl{
		userStore:  userStore,
		jwtService: jwtService,
		hasher:     hasher,
		db:         db,
		logger:     logger.With("component", "user_service"),
	}
}

// Register creates a new user account with a bcrypt-hashed password.
// Uses a transaction to ensure atomicity of the operation.
func (s *UserServiceImpl) Register(
	ctx context.Context,
	username, email, password string,
) (*domain.User, error) {
	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := domain.NewUser(username, email, hashedPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			s.logger.Debug("attempted to register duplicate user",
				"username", username,
				"email", email)
		} else {
			s.logger.Error("failed to save user to database",
				"error", err,
				"username", username)
		}
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", username)
	return user, nil
}

// Login authenticates a user and issues an access token.
func (s *UserServiceImpl) Login(
	ctx context.Context,
	login, password string,
) (string, *domain.User, error) {
	user, err := s.userStore.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("login attempt for unknown user", "login", login)
			return "", nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to look up user for login", "error", err)
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("login attempt with wrong password", "user_id", user.ID)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to generate access token",
			"error", err,
			"user_id", user.ID)
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return token, user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			s.logger.Error("failed to retrieve user",
				"error", err,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}
