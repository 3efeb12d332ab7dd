package postgres

import (
	"context"

	"github.com/frahmantamala/petirpay/internal/activity"
	activityDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/activity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) activity.RepositoryAPI {
	return &ActivityRepository{db: db}
}

// Create ignores a second insert of the same event id.
func (r *ActivityRepository) Create(ctx context.Context, a *activityDatamodel.Activity) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(a).Error
}

func (r *ActivityRepository) List(ctx context.Context, filter activity.ListFilter) ([]*activityDatamodel.Activity, int64, error) {
	q := r.db.WithContext(ctx).Model(&activityDatamodel.Activity{})
	if filter.EventType != "" {
		q = q.Where("event_type = ?", filter.EventType)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*activityDatamodel.Activity
	q = q.Order("occurred_at DESC, id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	err := q.Find(&rows).Error
	return rows, total, err
}
