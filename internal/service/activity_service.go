package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
)

// ActivityService writes one structured log line per domain event.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger) *ActivityService {
	return &ActivityService{dispatcher: dispatcher, logger: orNop(logger)}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventTicketStatusChanged,
		events.EventTicketCommentAdded,
		events.EventTicketFeedbackSubmitted,
	} {
		a.dispatcher.Subscribe(eventType, a.record)
	}
}

func (a *ActivityService) record(_ context.Context, event events.Event) error {
	a.logger.Info("ticket activity",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor_id", event.Actor.ID),
		zap.String("actor_role", event.Actor.Role),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload))
	return nil
}
