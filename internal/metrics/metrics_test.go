package metrics

import (
	"testing"
	"time"

	"shareit/internal/events"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestObserveHTTP(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/items/{id}", "404"))

	ObserveHTTP("GET", "/items/{id}", 404, 15*time.Millisecond)

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/items/{id}", "404"))
	assert.Equal(t, before+1, after)
	assert.Equal(t, 1, testutil.CollectAndCount(httpDuration, "shareit_http_request_duration_seconds"))
}

func TestCounters(t *testing.T) {
	limited := testutil.ToFloat64(rateLimited)
	IncRateLimited()
	assert.Equal(t, limited+1, testutil.ToFloat64(rateLimited))

	failovers := testutil.ToFloat64(limiterFailovers)
	IncLimiterFailover()
	assert.Equal(t, failovers+1, testutil.ToFloat64(limiterFailovers))
}

func TestEventHandler(t *testing.T) {
	bus := events.NewEventBus(nil)
	bus.SubscribeAll(EventHandler)

	before := testutil.ToFloat64(domainEvents.WithLabelValues(events.EventBookingApproved))
	require.NoError(t, bus.PublishJSON(events.EventBookingApproved, events.BookingEventPayload{BookingID: 1}))
	assert.Equal(t, before+1, testutil.ToFloat64(domainEvents.WithLabelValues(events.EventBookingApproved)))
}
