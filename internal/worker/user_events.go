package worker

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"habitrack/internal/events"
	"habitrack/internal/storage"
)

// UserEventHandler reacts to user lifecycle events.
type UserEventHandler struct {
	photos storage.PhotoStore
	logger *log.Logger
}

// NewUserEventHandler builds a handler. photos may be nil when object storage is disabled.
func NewUserEventHandler(photos storage.PhotoStore, logger *log.Logger) *UserEventHandler {
	return &UserEventHandler{photos: photos, logger: logger}
}

// Handle processes one event. A returned error causes redelivery.
func (h *UserEventHandler) Handle(ctx context.Context, event events.UserEvent) error {
	switch event.Type {
	case events.UserRegistered:
		h.logger.Info("user registered", "user_id", event.UserID, "email", event.Email)
		return nil
	case events.UserDeleted:
		return h.removePhoto(ctx, event)
	default:
		h.logger.Warn("ignoring unknown event", "type", event.Type)
		return nil
	}
}

func (h *UserEventHandler) removePhoto(ctx context.Context, event events.UserEvent) error {
	if event.Photo == nil || *event.Photo == "" {
		return nil
	}
	if h.photos == nil {
		h.logger.Warn("object storage disabled, leaving photo in place", "user_id", event.UserID, "photo", *event.Photo)
		return nil
	}
	if err := h.photos.Delete(ctx, *event.Photo); err != nil {
		return fmt.Errorf("delete photo of %s: %w", event.UserID, err)
	}
	h.logger.Info("deleted photo of removed user", "user_id", event.UserID)
	return nil
}
