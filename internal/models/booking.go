package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

// Terminal reports whether no further transitions are allowed.
func (s BookingStatus) Terminal() bool {
	return s != StatusWaiting
}

// BookingState filters booking lists.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

var ErrUnknownState = errors.New("unknown state")

// ParseBookingState is case-insensitive; an empty value means ALL.
func ParseBookingState(raw string) (BookingState, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if normalized == "" {
		return StateAll, nil
	}
	switch state := BookingState(normalized); state {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return state, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownState, raw)
	}
}

type Booking struct {
	ID       int64         `json:"id"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Status   BookingStatus `json:"status"`
	ItemID   int64         `json:"itemId"`
	BookerID int64         `json:"bookerId"`
	Item     BookingItem   `json:"item"`
	Booker   BookingUser   `json:"booker"`
}

type BookingItem struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"-"`
}

type BookingUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// IsVisibleTo reports whether the user is the booker or the item owner.
func (b *Booking) IsVisibleTo(userID int64) bool {
	return b.BookerID == userID || b.Item.OwnerID == userID
}

// Short drops the nested item and booker, as embedded in item views.
func (b *Booking) Short() *BookingShort {
	return &BookingShort{
		ID:       b.ID,
		Start:    b.Start,
		End:      b.End,
		ItemID:   b.ItemID,
		BookerID: b.BookerID,
		Status:   b.Status,
	}
}

type BookingShort struct {
	ID       int64         `json:"id"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	ItemID   int64         `json:"itemId"`
	BookerID int64         `json:"bookerId"`
	Status   BookingStatus `json:"status"`
}

// NewBooking is the validated input of the booking engine.
type NewBooking struct {
	ItemID   int64
	BookerID int64
	Start    time.Time
	End      time.Time
}
