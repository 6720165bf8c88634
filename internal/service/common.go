package service

import (
	"context"
	"fmt"
	"strings"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

func ensureUser(ctx context.Context, repo domain.UserRepository, id int64) error {
	exists, err := repo.UserExists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check user %d: %w", id, err)
	}
	if !exists {
		return domain.NotFound("user %d not found", id)
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// publish never fails the calling operation; a lost event is only logged.
func publish(bus domain.EventPublisher, logger *zerolog.Logger, eventType string, payload interface{}) {
	if bus == nil {
		return
	}
	if err := bus.PublishJSON(eventType, payload); err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}
