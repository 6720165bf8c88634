package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingState(t *testing.T) {
	cases := map[string]BookingState{
		"":         StateAll,
		"all":      StateAll,
		"Current":  StateCurrent,
		" PAST ":   StatePast,
		"future":   StateFuture,
		"WAITING":  StateWaiting,
		"rejected": StateRejected,
	}
	for raw, want := range cases {
		got, err := ParseBookingState(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseBookingState("UNSUPPORTED_STATUS")
	assert.ErrorIs(t, err, ErrUnknownState)
	assert.Contains(t, err.Error(), "UNSUPPORTED_STATUS")
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.False(t, StatusWaiting.Terminal())
	assert.True(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
}

func TestBookingVisibilityAndShort(t *testing.T) {
	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	b := &Booking{
		ID:       7,
		Start:    start,
		End:      start.Add(time.Hour),
		Status:   StatusWaiting,
		ItemID:   3,
		BookerID: 2,
		Item:     BookingItem{ID: 3, Name: "Drill", OwnerID: 1},
		Booker:   BookingUser{ID: 2, Name: "Bob"},
	}

	assert.True(t, b.IsVisibleTo(1))
	assert.True(t, b.IsVisibleTo(2))
	assert.False(t, b.IsVisibleTo(3))

	short := b.Short()
	assert.Equal(t, &BookingShort{ID: 7, Start: start, End: start.Add(time.Hour), ItemID: 3, BookerID: 2, Status: StatusWaiting}, short)
}

func TestItemPatch(t *testing.T) {
	item := &Item{Name: "Drill", Description: "Cordless", Available: true}

	assert.True(t, ItemPatch{}.Empty())
	ItemPatch{}.Apply(item)
	assert.Equal(t, "Drill", item.Name)

	name := "Hammer drill"
	available := false
	patch := ItemPatch{Name: &name, Available: &available}
	assert.False(t, patch.Empty())
	patch.Apply(item)

	assert.Equal(t, "Hammer drill", item.Name)
	assert.Equal(t, "Cordless", item.Description)
	assert.False(t, item.Available)
}

func TestUserPatch(t *testing.T) {
	u := &User{Name: "Alice", Email: "alice@example.com"}
	email := "alice@new.example.com"
	UserPatch{Email: &email}.Apply(u)

	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@new.example.com", u.Email)
}
