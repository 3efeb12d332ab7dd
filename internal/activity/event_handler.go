package activity

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/petirpay/internal/core/events"
)

type Recorder interface {
	Record(ctx context.Context, event events.Event) error
}

// EventHandler mirrors every published domain event into the activity log.
type EventHandler struct {
	recorder Recorder
	logger   *slog.Logger
}

func NewEventHandler(recorder Recorder, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		recorder: recorder,
		logger:   logger,
	}
}

func (h *EventHandler) HandleAny(ctx context.Context, event events.Event) error {
	if err := h.recorder.Record(ctx, event); err != nil {
		return err
	}

	h.logger.Debug("activity recorded",
		"event_type", event.EventType(),
		"event_id", event.EventID())
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.AnyEvent, h.HandleAny)

	h.logger.Info("activity event handlers registered", "handlers", []string{events.AnyEvent})
}
