package activity

import (
	"context"
	"encoding/json"
	"log/slog"

	activityDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/activity"
	"github.com/frahmantamala/petirpay/internal/core/events"
	"gorm.io/datatypes"
)

type RepositoryAPI interface {
	Create(ctx context.Context, a *activityDatamodel.Activity) error
	List(ctx context.Context, filter ListFilter) ([]*activityDatamodel.Activity, int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// actor is implemented by events that know who triggered them.
type actor interface {
	Actor() (int64, string)
}

// Record stores an event. Replays of the same event id are ignored.
func (s *Service) Record(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return err
	}

	row := &activityDatamodel.Activity{
		EventID:    event.EventID(),
		EventType:  event.EventType(),
		Payload:    datatypes.JSON(payload),
		OccurredAt: event.OccurredAt().UTC(),
	}
	if a, ok := event.(actor); ok {
		if id, kind := a.Actor(); id != 0 {
			row.ActorID = &id
			row.ActorKind = kind
		}
	}

	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to record activity", "event_type", row.EventType, "event_id", row.EventID, "error", err)
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Activity, int64, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list activity", "error", err)
		return nil, 0, err
	}

	out := make([]*Activity, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}
