package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverRateLimiter(t *testing.T) {
	primary := new(mockLimiter)
	fallback := new(mockLimiter)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverRateLimiter(primary, fallback, &logger)
	clock := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("Allow", ctx, "a", 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.Allow(ctx, "a", 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary.On("Allow", ctx, "b", 10, time.Minute).Return(false, errors.New("fail")).Once()
		fallback.On("Allow", ctx, "b", 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.Allow(ctx, "b", 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("AlreadyDown", func(t *testing.T) {
		fallback.On("Allow", ctx, "c", 10, time.Minute).Return(false, nil).Once()

		allowed, err := repo.Allow(ctx, "c", 10, time.Minute)
		assert.NoError(t, err)
		assert.False(t, allowed)
		fallback.AssertExpectations(t)
		primary.AssertNotCalled(t, "Allow", ctx, "c", 10, time.Minute)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		clock = clock.Add(2 * time.Minute)
		primary.On("Allow", ctx, "d", 10, time.Minute).Return(false, errors.New("still fail")).Once()
		fallback.On("Allow", ctx, "d", 10, time.Minute).Return(true, nil).Once()

		_, err := repo.Allow(ctx, "d", 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		clock = clock.Add(2 * time.Minute)
		primary.On("Allow", ctx, "e", 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.Allow(ctx, "e", 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.False(t, repo.isDown.Load())
		primary.AssertExpectations(t)
	})
}
