package tariff

import (
	"time"

	"github.com/shopspring/decimal"
)

type Tariff struct {
	ID          int64           `gorm:"primaryKey"`
	PowerClass  string          `gorm:"column:power_class;size:32;uniqueIndex;not null"`
	RatePerKWh  decimal.Decimal `gorm:"column:rate_per_kwh;type:numeric(12,2);not null"`
	Description string          `gorm:"column:description"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Tariff) TableName() string {
	return "tariffs"
}
