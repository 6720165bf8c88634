package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

func newPublisher() *mockPublisher {
	bus := &mockPublisher{}
	bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Maybe()
	return bus
}

var baseTime = time.Date(2030, time.March, 10, 12, 0, 0, 0, time.UTC)

// clock is a settable time source shared by the services under test.
type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type env struct {
	db       *database.DB
	bus      *mockPublisher
	clock    *clock
	users    *UserService
	items    *ItemService
	bookings *BookingService
	requests *RequestService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e := &env{db: db, bus: newPublisher(), clock: &clock{t: baseTime}}
	e.users = NewUserService(db, e.bus, &logger)
	e.items = NewItemService(db, e.bus, &logger)
	e.items.now = e.clock.now
	e.bookings = NewBookingService(db, e.bus, &logger)
	e.bookings.now = e.clock.now
	e.requests = NewRequestService(db, e.bus, &logger)
	e.requests.now = e.clock.now
	return e
}

func (e *env) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), &models.User{Name: name, Email: name + "@example.com"})
	require.NoError(t, err)
	return u
}

func (e *env) item(t *testing.T, ownerID int64, name string, available bool) *models.Item {
	t.Helper()
	it, err := e.items.CreateItem(context.Background(), ownerID, &models.Item{
		Name:        name,
		Description: name + " for rent",
		Available:   available,
	})
	require.NoError(t, err)
	return it
}

// booking books [now+from, now+to) with the current clock.
func (e *env) booking(t *testing.T, itemID, bookerID int64, from, to time.Duration) *models.Booking {
	t.Helper()
	b, err := e.bookings.CreateBooking(context.Background(), models.NewBooking{
		ItemID:   itemID,
		BookerID: bookerID,
		Start:    e.clock.t.Add(from),
		End:      e.clock.t.Add(to),
	})
	require.NoError(t, err)
	return b
}

func assertKind(t *testing.T, err error, kind domain.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, domain.KindOf(err), "unexpected kind for %v", err)
}

func ptr[T any](v T) *T {
	return &v
}
