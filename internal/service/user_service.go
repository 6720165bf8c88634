package service

import (
	"context"
	"errors"
	"fmt"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo     domain.UserRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewUserService(repo domain.UserRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if blank(user.Name) {
		return nil, domain.BadRequest("user name must not be blank")
	}
	if blank(user.Email) {
		return nil, domain.BadRequest("user email must not be blank")
	}

	created := *user
	created.ID = 0
	if err := s.repo.CreateUser(ctx, &created); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, domain.Conflict("email %s is already in use", user.Email)
		}
		return nil, err
	}

	s.logger.Info().Int64("user_id", created.ID).Msg("User created")
	publish(s.eventBus, s.logger, events.EventUserCreated, events.UserEventPayload{UserID: created.ID})
	return &created, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, domain.NotFound("user %d not found", id)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

// UpdateUser applies only the fields present in patch.
func (s *UserService) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	if patch.Name != nil && blank(*patch.Name) {
		return nil, domain.BadRequest("user name must not be blank")
	}
	if patch.Email != nil && blank(*patch.Email) {
		return nil, domain.BadRequest("user email must not be blank")
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(user)
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicate):
			return nil, domain.Conflict("email %s is already in use", user.Email)
		case errors.Is(err, database.ErrNotFound):
			return nil, domain.NotFound("user %d not found", id)
		}
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return domain.NotFound("user %d not found", id)
		}
		return err
	}

	s.logger.Info().Int64("user_id", id).Msg("User deleted")
	publish(s.eventBus, s.logger, events.EventUserDeleted, events.UserEventPayload{UserID: id})
	return nil
}
