package services

import (
	"context"
	"strings"
	"time"

	"github.com/certbloom/certbloom/internal/errors"
	"github.com/certbloom/certbloom/internal/logger"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/repository"
	"github.com/google/uuid"
)

// UserService handles learner accounts
type UserService interface {
	UpsertUser(ctx context.Context, id, displayName string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// UpsertUser creates the user or renames an existing one. An empty id gets a
// generated one.
func (s *userService) UpsertUser(ctx context.Context, id, displayName string) (*models.User, error) {
	log := logger.FromContext(ctx)
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, errors.NewValidationError("displayName", "cannot be empty")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	log.Debug("upserting user: id=%s", id)

	user, err := s.userRepo.Upsert(ctx, models.User{ID: id, DisplayName: displayName, CreatedAt: time.Now().UTC()})
	if err != nil {
		log.Error("failed to upsert user: %v", err)
		return nil, errors.NewStoreUnavailableError(err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*models.User, error) {
	logger.FromContext(ctx).Debug("getting user: id=%s", id)
	if strings.TrimSpace(id) == "" {
		return nil, errors.NewValidationError("userId", "is required")
	}
	return requireUser(ctx, s.userRepo, id)
}
