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

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// ValidateBookingRange requires both bounds, both in the future, start < end.
// A start equal to now is not in the future and is rejected.
func ValidateBookingRange(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return domain.BadRequest("booking start and end must be set")
	}
	if !start.After(now) {
		return domain.BadRequest("booking start must be in the future")
	}
	if !end.After(now) {
		return domain.BadRequest("booking end must be in the future")
	}
	if !start.Before(end) {
		return domain.BadRequest("booking start must be before its end")
	}
	return nil
}

func (s *BookingService) CreateBooking(ctx context.Context, booking models.NewBooking) (*models.Booking, error) {
	if err := ValidateBookingRange(booking.Start, booking.End, s.now()); err != nil {
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, booking.ItemID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, domain.NotFound("item %d not found", booking.ItemID)
		}
		return nil, err
	}
	if err := ensureUser(ctx, s.repo, booking.BookerID); err != nil {
		return nil, err
	}
	if item.OwnerID == booking.BookerID {
		return nil, domain.NotFound("item %d cannot be booked by its owner", item.ID)
	}
	if !item.Available {
		return nil, domain.BadRequest("item %d is not available", item.ID)
	}

	created, err := s.repo.CreateBookingWithLock(ctx, &booking)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotAvailable):
			return nil, domain.BadRequest("item %d is not available", item.ID)
		case errors.Is(err, database.ErrNotFound):
			return nil, domain.NotFound("item %d not found", item.ID)
		}
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", created.ID).
		Int64("item_id", created.ItemID).
		Int64("booker_id", created.BookerID).
		Msg("Booking created")
	s.publishEvent(events.EventBookingCreated, created, booking.BookerID)
	return created, nil
}

// DecideBooking approves or rejects a WAITING booking of one of the owner's
// items. Decisions are final.
func (s *BookingService) DecideBooking(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error) {
	if err := ensureUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Item.OwnerID != ownerID {
		return nil, domain.NotFound("booking %d not found for owner %d", bookingID, ownerID)
	}
	if booking.Status.Terminal() {
		return nil, alreadyDecided(booking.ID, booking.Status)
	}

	to := models.StatusRejected
	eventType := events.EventBookingRejected
	if approved {
		to = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	if err := s.repo.UpdateBookingStatusFrom(ctx, bookingID, models.StatusWaiting, to); err != nil {
		if errors.Is(err, database.ErrConcurrentModification) {
			if current, getErr := s.getBooking(ctx, bookingID); getErr == nil {
				return nil, alreadyDecided(bookingID, current.Status)
			}
			return nil, domain.BadRequest("booking %d was decided concurrently", bookingID)
		}
		return nil, fmt.Errorf("failed to decide booking %d: %w", bookingID, err)
	}
	booking.Status = to

	s.logger.Info().
		Int64("booking_id", bookingID).
		Str("status", string(to)).
		Int64("owner_id", ownerID).
		Msg("Booking decided")
	s.publishEvent(eventType, booking, ownerID)
	return booking, nil
}

func alreadyDecided(bookingID int64, status models.BookingStatus) error {
	if status == models.StatusApproved {
		return domain.BadRequest("booking %d is already confirmed", bookingID)
	}
	return domain.BadRequest("booking %d is already rejected", bookingID)
}

// GetBooking is visible to the booker and the item owner only.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	if err := ensureUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsVisibleTo(userID) {
		return nil, domain.NotFound("booking %d not found for user %d", bookingID, userID)
	}
	return booking, nil
}

func (s *BookingService) ListBookerBookings(ctx context.Context, bookerID int64, rawState string) ([]*models.Booking, error) {
	state, err := s.prepareList(ctx, bookerID, rawState)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBookingsByBooker(ctx, bookerID, state, s.now())
}

func (s *BookingService) ListOwnerBookings(ctx context.Context, ownerID int64, rawState string) ([]*models.Booking, error) {
	state, err := s.prepareList(ctx, ownerID, rawState)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBookingsByOwner(ctx, ownerID, state, s.now())
}

func (s *BookingService) prepareList(ctx context.Context, userID int64, rawState string) (models.BookingState, error) {
	state, err := models.ParseBookingState(rawState)
	if err != nil {
		return "", domain.Wrap(domain.KindBadRequest, err, fmt.Sprintf("Unknown state: %s", rawState))
	}
	if err := ensureUser(ctx, s.repo, userID); err != nil {
		return "", err
	}
	return state, nil
}

func (s *BookingService) getBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, domain.NotFound("booking %d not found", id)
		}
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedByID int64) {
	publish(s.eventBus, s.logger, eventType, events.BookingEventPayload{
		BookingID:   booking.ID,
		ItemID:      booking.ItemID,
		ItemName:    booking.Item.Name,
		OwnerID:     booking.Item.OwnerID,
		BookerID:    booking.BookerID,
		Status:      string(booking.Status),
		Start:       booking.Start,
		End:         booking.End,
		ChangedByID: changedByID,
	})
}
