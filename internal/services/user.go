package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/abrezinsky/awardpicks/internal/errors"
	"github.com/abrezinsky/awardpicks/internal/logger"
	"github.com/abrezinsky/awardpicks/internal/models"
	"github.com/abrezinsky/awardpicks/internal/repository"
)

// MaxDisplayNameLength caps display names in runes
const MaxDisplayNameLength = 40

// UserService handles participant accounts
type UserService struct {
	log   logger.Logger
	repo  repository.UserRepository
	newID func() string
}

// NewUserService creates a new UserService
func NewUserService(log logger.Logger, repo repository.UserRepository) *UserService {
	return &UserService{log: log, repo: repo, newID: uuid.NewString}
}

// CreateUser registers a participant and returns it with its generated id
func (s *UserService) CreateUser(ctx context.Context, displayName string) (*models.User, error) {
	name, err := cleanDisplayName(displayName)
	if err != nil {
		return nil, err
	}
	user := models.User{ID: s.newID(), DisplayName: name}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("User created", "user_id", user.ID)
	return s.repo.GetUser(ctx, user.ID)
}

// GetUser returns a participant by id
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user %q not found", id)
	}
	return user, nil
}

// RenameUser changes a participant's display name
func (s *UserService) RenameUser(ctx context.Context, id, displayName string) error {
	name, err := cleanDisplayName(displayName)
	if err != nil {
		return err
	}
	return notFoundOr(s.repo.UpdateUserName(ctx, id, name), "user %q not found", id)
}

// ListUsers returns every participant
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func cleanDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.Validation("display name is required")
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return "", errors.Validationf("display name must be at most %d characters", MaxDisplayNameLength)
	}
	return name, nil
}
