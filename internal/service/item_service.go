package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewItemService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ItemService) getItem(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, domain.NotFound("item %d not found", id)
		}
		return nil, err
	}
	return item, nil
}

func (s *ItemService) CreateItem(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	if blank(item.Name) {
		return nil, domain.BadRequest("item name must not be blank")
	}
	if blank(item.Description) {
		return nil, domain.BadRequest("item description must not be blank")
	}
	if err := ensureUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}
	if item.RequestID != nil {
		if _, err := s.repo.GetRequest(ctx, *item.RequestID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, domain.NotFound("item request %d not found", *item.RequestID)
			}
			return nil, err
		}
	}

	created := *item
	created.ID = 0
	created.OwnerID = ownerID
	if err := s.repo.CreateItem(ctx, &created); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", created.ID).Int64("owner_id", ownerID).Msg("Item created")
	publish(s.eventBus, s.logger, events.EventItemCreated, itemPayload(&created))
	return &created, nil
}

// UpdateItem applies patch to an item owned by ownerID.
func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	if err := ensureUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, domain.Forbidden("user %d is not the owner of item %d", ownerID, itemID)
	}
	if patch.Name != nil && blank(*patch.Name) {
		return nil, domain.BadRequest("item name must not be blank")
	}
	if patch.Description != nil && blank(*patch.Description) {
		return nil, domain.BadRequest("item description must not be blank")
	}
	if patch.Empty() {
		return item, nil
	}

	patch.Apply(item)
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item %d: %w", itemID, err)
	}

	publish(s.eventBus, s.logger, events.EventItemUpdated, itemPayload(item))
	return item, nil
}

// GetItem composes the item view; booking dates are shown only to the owner.
func (s *ItemService) GetItem(ctx context.Context, userID, itemID int64) (*models.ItemView, error) {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	views, err := s.composeViews(ctx, userID, []*models.Item{item})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID int64) ([]*models.ItemView, error) {
	if err := ensureUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.composeViews(ctx, ownerID, items)
}

// SearchItems returns nothing for blank text instead of every item.
func (s *ItemService) SearchItems(ctx context.Context, text string) ([]*models.Item, error) {
	if blank(text) {
		return []*models.Item{}, nil
	}
	return s.repo.SearchItems(ctx, text)
}

// AddComment accepts a comment only from a user whose booking of the item
// has already ended.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	if blank(text) {
		return nil, domain.BadRequest("comment text must not be empty")
	}
	if err := ensureUser(ctx, s.repo, authorID); err != nil {
		return nil, err
	}
	if _, err := s.getItem(ctx, itemID); err != nil {
		return nil, err
	}

	now := s.now()
	completed, err := s.repo.HasCompletedBooking(ctx, authorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, domain.BadRequest("user %d has no completed booking of item %d", authorID, itemID)
	}

	comment := &models.Comment{
		Text:     text,
		ItemID:   itemID,
		AuthorID: authorID,
		Created:  now.UTC(),
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	publish(s.eventBus, s.logger, events.EventCommentAdded, events.CommentEventPayload{
		CommentID: comment.ID,
		ItemID:    itemID,
		AuthorID:  authorID,
	})
	return comment, nil
}

func itemPayload(item *models.Item) events.ItemEventPayload {
	return events.ItemEventPayload{
		ItemID:    item.ID,
		OwnerID:   item.OwnerID,
		Name:      item.Name,
		Available: item.Available,
		RequestID: item.RequestID,
	}
}
