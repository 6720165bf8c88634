package service

import (
	"context"
	"errors"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewRequestService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *RequestService {
	return &RequestService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *RequestService) CreateRequest(ctx context.Context, requesterID int64, description string) (*models.ItemRequest, error) {
	if blank(description) {
		return nil, domain.BadRequest("request description must not be blank")
	}
	if err := ensureUser(ctx, s.repo, requesterID); err != nil {
		return nil, err
	}

	request := &models.ItemRequest{
		Description: description,
		RequesterID: requesterID,
		Created:     s.now().UTC(),
		Items:       []models.RequestItem{},
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	publish(s.eventBus, s.logger, events.EventRequestCreated, events.RequestEventPayload{
		RequestID:   request.ID,
		RequesterID: requesterID,
	})
	return request, nil
}

func (s *RequestService) ListOwnRequests(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	if err := ensureUser(ctx, s.repo, requesterID); err != nil {
		return nil, err
	}
	requests, err := s.repo.ListRequestsByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return requests, s.attachItems(ctx, requests)
}

// ListOtherRequests pages through other users' requests. from is a row
// offset; size is capped at models.MaxRequestPageSize.
func (s *RequestService) ListOtherRequests(ctx context.Context, userID int64, from, size int) ([]*models.ItemRequest, error) {
	if from < 0 {
		return nil, domain.BadRequest("from must not be negative")
	}
	if size <= 0 {
		return nil, domain.BadRequest("size must be positive")
	}
	if size > models.MaxRequestPageSize {
		size = models.MaxRequestPageSize
	}
	if err := ensureUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}

	requests, err := s.repo.ListRequestsExcept(ctx, userID, from, size)
	if err != nil {
		return nil, err
	}
	return requests, s.attachItems(ctx, requests)
}

func (s *RequestService) GetRequest(ctx context.Context, requestID int64) (*models.ItemRequest, error) {
	request, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, domain.NotFound("item request %d not found", requestID)
		}
		return nil, err
	}
	if err := s.attachItems(ctx, []*models.ItemRequest{request}); err != nil {
		return nil, err
	}
	return request, nil
}

// attachItems fills Items of every request with one query.
func (s *RequestService) attachItems(ctx context.Context, requests []*models.ItemRequest) error {
	ids := make([]int64, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ID)
	}

	items, err := s.repo.ListItemsByRequestIDs(ctx, ids)
	if err != nil {
		return err
	}
	byRequest := make(map[int64][]models.RequestItem, len(requests))
	for _, item := range items {
		byRequest[item.RequestID] = append(byRequest[item.RequestID], *item)
	}

	for _, r := range requests {
		r.Items = byRequest[r.ID]
		if r.Items == nil {
			r.Items = []models.RequestItem{}
		}
	}
	return nil
}
