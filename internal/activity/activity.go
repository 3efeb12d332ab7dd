package activity

import (
	"encoding/json"
	"time"

	activityDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/activity"
)

// Activity is one recorded domain event as shown in the admin feed.
type Activity struct {
	ID         int64                  `json:"id"`
	EventID    string                 `json:"event_id"`
	EventType  string                 `json:"event_type"`
	ActorID    *int64                 `json:"actor_id,omitempty"`
	ActorKind  string                 `json:"actor_kind,omitempty"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt time.Time              `json:"occurred_at"`
}

type ListFilter struct {
	EventType string
	Limit     int
	Offset    int
}

type ActivitiesResponse struct {
	Activities []*Activity `json:"activities"`
	Total      int64       `json:"total"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}

func FromDataModel(a *activityDatamodel.Activity) *Activity {
	out := &Activity{
		ID:         a.ID,
		EventID:    a.EventID,
		EventType:  a.EventType,
		ActorID:    a.ActorID,
		ActorKind:  a.ActorKind,
		OccurredAt: a.OccurredAt,
	}
	if len(a.Payload) > 0 {
		// a payload that no longer parses is shown empty rather than failing the feed
		_ = json.Unmarshal(a.Payload, &out.Payload)
	}
	return out
}
