package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"task-tracker/internal/auth"
	"task-tracker/internal/model"
	"task-tracker/internal/session"
	"task-tracker/internal/validation"
)

// Credentials identify a login attempt.
type Credentials struct {
	Username string
	Password string
}

// AuthService registers accounts and drives the process session.
type AuthService struct {
	users   UserStore
	hasher  *auth.PasswordHasher
	session *session.Session
	clock   Clock
	logger  *slog.Logger
}

func NewAuthService(users UserStore, hasher *auth.PasswordHasher, sess *session.Session, clock Clock, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{users: users, hasher: hasher, session: sess, clock: clock, logger: logger}
}

// Register validates in and creates the account. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, in validation.Registration) (*model.User, error) {
	if err := validation.ValidateRegistration(ctx, in, s.users); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.clock.now(),
	}
	if err := s.users.Add(ctx, user); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, s.takenField(ctx, in, err)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID), slog.String("username", user.Username))
	return user, nil
}

// takenField names the column behind a unique index violation that slipped
// past the uniqueness checks, falling back to conflict when neither lookup
// finds the clash.
func (s *AuthService) takenField(ctx context.Context, in validation.Registration, conflict error) error {
	if taken, err := s.users.ExistsByUsername(ctx, in.Username); err == nil && taken {
		return model.ErrUsernameTaken
	}
	if taken, err := s.users.ExistsByEmail(ctx, in.Email); err == nil && taken {
		return model.ErrEmailTaken
	}
	return conflict
}

// Login authenticates creds. An unknown username or a wrong password is not an
// error: ok is false and the session stays as it was. On success the last
// login time is persisted and the session switches to the user.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (user *model.User, ok bool, err error) {
	user, err = s.users.GetByUsername(ctx, creds.Username)
	if errors.Is(err, model.ErrNotFound) {
		s.logger.InfoContext(ctx, "login rejected", slog.String("username", creds.Username))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !s.hasher.Verify(creds.Password, user.PasswordHash) {
		s.logger.InfoContext(ctx, "login rejected", slog.String("username", creds.Username))
		return nil, false, nil
	}

	now := s.clock.now()
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, false, err
	}

	s.session.Login(*user)
	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	return user, true, nil
}

func (s *AuthService) Logout() {
	s.session.Logout()
}

func (s *AuthService) CurrentUser() (model.User, error) {
	return s.session.CurrentUser()
}

func (s *AuthService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (s *AuthService) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return !taken, nil
}
