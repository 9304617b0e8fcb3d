package user

import (
	"context"
	"errors"
	"strings"

	"log/slog"

	"github.com/nyxlabs/userd/internal/domain"
	"github.com/nyxlabs/userd/internal/repository"
)

// Input carries the mutable user attributes for create and update.
type Input struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

var (
	// ErrNameRequired rejects a missing or blank name field.
	ErrNameRequired = errors.New("name is required")
	// ErrEmailRequired rejects a missing or blank email field.
	ErrEmailRequired = errors.New("email is required")
)

// IsValidationError reports whether err came from input validation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNameRequired) || errors.Is(err, ErrEmailRequired)
}

// Service orchestrates user CRUD on top of the repository.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// New returns a user service.
func New(users repository.UserRepository, logger *slog.Logger) Service {
	return Service{users: users, logger: logger}
}

// Create validates the input and inserts a new user. The store assigns
// the id; repeated calls with identical input create distinct rows.
func (s Service) Create(ctx context.Context, input Input) (*domain.User, error) {
	name, email, err := normalize(input)
	if err != nil {
		return nil, err
	}
	u, err := s.users.CreateUser(ctx, name, email)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", "user_id", u.ID)
	return u, nil
}

// List returns all users.
func (s Service) List(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

// Get fetches one user by id.
func (s Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetUser(ctx, id)
}

// Update overwrites name and email on an existing user.
func (s Service) Update(ctx context.Context, id int64, input Input) (*domain.User, error) {
	name, email, err := normalize(input)
	if err != nil {
		return nil, err
	}
	u, err := s.users.UpdateUser(ctx, id, name, email)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user updated", "user_id", u.ID)
	return u, nil
}

// Delete removes a user by id.
func (s Service) Delete(ctx context.Context, id int64) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

func normalize(input Input) (name, email string, err error) {
	name = strings.TrimSpace(input.Name)
	email = strings.TrimSpace(input.Email)
	if name == "" {
		return "", "", ErrNameRequired
	}
	if email == "" {
		return "", "", ErrEmailRequired
	}
	return name, email, nil
}
