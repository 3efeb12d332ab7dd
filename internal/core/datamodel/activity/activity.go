package activity

import (
	"time"

	"gorm.io/datatypes"
)

type Activity struct {
	ID         int64          `gorm:"primaryKey"`
	EventID    string         `gorm:"column:event_id;size:64;uniqueIndex;not null"`
	EventType  string         `gorm:"column:event_type;size:64;not null;index"`
	ActorID    *int64         `gorm:"column:actor_id"`
	ActorKind  string         `gorm:"column:actor_kind;size:16"`
	Payload    datatypes.JSON `gorm:"column:payload"`
	OccurredAt time.Time      `gorm:"column:occurred_at;not null;index"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (Activity) TableName() string {
	return "activities"
}
