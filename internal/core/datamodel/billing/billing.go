package billing

import (
	"time"

	customerDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/customer"
)

const (
	StatusUnpaid               = "unpaid"
	StatusAwaitingConfirmation = "awaiting_confirmation"
	StatusPaid                 = "paid"
)

// Usage is one month of meter readings. MeterEnd - MeterStart is the
// consumption billed for the period.
type Usage struct {
	ID         int64     `gorm:"primaryKey"`
	CustomerID int64     `gorm:"column:customer_id;not null;uniqueIndex:idx_usages_customer_period"`
	Month      int       `gorm:"column:month;not null;uniqueIndex:idx_usages_customer_period"`
	Year       int       `gorm:"column:year;not null;uniqueIndex:idx_usages_customer_period"`
	MeterStart int64     `gorm:"column:meter_start;not null"`
	MeterEnd   int64     `gorm:"column:meter_end;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Usage) TableName() string {
	return "usages"
}

type Bill struct {
	ID         int64                       `gorm:"primaryKey"`
	CustomerID int64                       `gorm:"column:customer_id;not null;uniqueIndex:idx_bills_customer_period"`
	Customer   *customerDatamodel.Customer `gorm:"foreignKey:CustomerID"`
	UsageID    *int64                      `gorm:"column:usage_id"`
	Usage      *Usage                      `gorm:"foreignKey:UsageID"`
	Month      int                         `gorm:"column:month;not null;uniqueIndex:idx_bills_customer_period"`
	Year       int                         `gorm:"column:year;not null;uniqueIndex:idx_bills_customer_period"`
	UsageKWh   int64                       `gorm:"column:usage_kwh;not null"`
	Status     string                      `gorm:"column:status;size:32;not null;index"`
	PaidDate   *time.Time                  `gorm:"column:paid_date"`
	CreatedBy  *int64                      `gorm:"column:created_by"`
	CreatedAt  time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (Bill) TableName() string {
	return "bills"
}
