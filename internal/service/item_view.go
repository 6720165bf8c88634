package service

import (
	"context"
	"time"

	"shareit/internal/models"
)

// composeViews builds item views with one booking query and one comment query
// for the whole batch. A single item goes through the same path.
func (s *ItemService) composeViews(ctx context.Context, viewerID int64, items []*models.Item) ([]*models.ItemView, error) {
	ids := make([]int64, 0, len(items))
	owned := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
		if item.OwnerID == viewerID {
			owned = append(owned, item.ID)
		}
	}

	bookings, err := s.repo.ListBookingsByItemIDs(ctx, owned)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.ListCommentsByItemIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	bookingsByItem := make(map[int64][]*models.Booking, len(owned))
	for _, b := range bookings {
		bookingsByItem[b.ItemID] = append(bookingsByItem[b.ItemID], b)
	}
	commentsByItem := make(map[int64][]models.Comment, len(ids))
	for _, c := range comments {
		commentsByItem[c.ItemID] = append(commentsByItem[c.ItemID], *c)
	}

	now := s.now()
	views := make([]*models.ItemView, 0, len(items))
	for _, item := range items {
		view := &models.ItemView{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Available:   item.Available,
			RequestID:   item.RequestID,
			Comments:    commentsByItem[item.ID],
		}
		if view.Comments == nil {
			view.Comments = []models.Comment{}
		}
		if item.OwnerID == viewerID {
			view.LastBooking, view.NextBooking = bookingWindow(bookingsByItem[item.ID], now)
		}
		views = append(views, view)
	}
	return views, nil
}

// bookingWindow picks the latest-ending finished booking and the
// earliest-starting upcoming one. Rejected bookings never qualify.
func bookingWindow(bookings []*models.Booking, now time.Time) (last, next *models.BookingShort) {
	var lastB, nextB *models.Booking
	for _, b := range bookings {
		if b.Status == models.StatusRejected {
			continue
		}
		if b.End.Before(now) && (lastB == nil || b.End.After(lastB.End)) {
			lastB = b
		}
		if b.Start.After(now) && (nextB == nil || b.Start.Before(nextB.Start)) {
			nextB = b
		}
	}
	if lastB != nil {
		last = lastB.Short()
	}
	if nextB != nil {
		next = nextB.Short()
	}
	return last, next
}
