package customer

import (
	"time"

	tariffDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/tariff"
)

type Customer struct {
	ID           int64                   `gorm:"primaryKey"`
	Name         string                  `gorm:"column:name;not null"`
	Email        string                  `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string                  `gorm:"column:password_hash;not null"`
	MeterNumber  string                  `gorm:"column:meter_number;size:32;uniqueIndex;not null"`
	Address      string                  `gorm:"column:address"`
	Phone        string                  `gorm:"column:phone"`
	TariffID     int64                   `gorm:"column:tariff_id;not null;index"`
	Tariff       *tariffDatamodel.Tariff `gorm:"foreignKey:TariffID"`
	PhotoPath    *string                 `gorm:"column:photo_path"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (Customer) TableName() string {
	return "customers"
}
