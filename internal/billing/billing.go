package billing

import (
	"time"

	billingDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/billing"
	"github.com/frahmantamala/petirpay/internal/customer"
	"github.com/shopspring/decimal"
)

const (
	StatusUnpaid               = billingDatamodel.StatusUnpaid
	StatusAwaitingConfirmation = billingDatamodel.StatusAwaitingConfirmation
	StatusPaid                 = billingDatamodel.StatusPaid
)

// MaxUsageKWh caps a single period's usage so totals stay well inside int64.
const MaxUsageKWh = 1_000_000

type Usage struct {
	ID         int64 `json:"id"`
	CustomerID int64 `json:"customer_id"`
	Month      int   `json:"month"`
	Year       int   `json:"year"`
	MeterStart int64 `json:"meter_start"`
	MeterEnd   int64 `json:"meter_end"`
}

// Bill carries the stored ledger row plus the amounts derived from the
// current tariff and admin fee. RatePerKWh, AdminFee and Total are never
// persisted.
type Bill struct {
	ID         int64              `json:"id"`
	CustomerID int64              `json:"customer_id"`
	Customer   *customer.Customer `json:"customer,omitempty"`
	UsageID    *int64             `json:"usage_id,omitempty"`
	Usage      *Usage             `json:"usage,omitempty"`
	Month      int                `json:"month"`
	Year       int                `json:"year"`
	UsageKWh   int64              `json:"usage_kwh"`
	Status     string             `json:"status"`
	PaidDate   *time.Time         `json:"paid_date,omitempty"`
	RatePerKWh decimal.Decimal    `json:"rate_per_kwh"`
	AdminFee   int64              `json:"admin_fee"`
	Total      int64              `json:"total"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// PreviousReading is the closing meter reading of the period before the
// requested one. Found is false when that period has no usage recorded.
type PreviousReading struct {
	CustomerID int64 `json:"customer_id"`
	Month      int   `json:"month"`
	Year       int   `json:"year"`
	Reading    int64 `json:"reading"`
	Found      bool  `json:"found"`
}

type ListFilter struct {
	Status     string
	Month      int
	Year       int
	CustomerID *int64
	Query      string
	Limit      int
	Offset     int
}

// ComputeTotal returns kwh * rate + fee, truncated to whole currency units.
func ComputeTotal(kwh int64, rate decimal.Decimal, fee int64) int64 {
	return decimal.NewFromInt(kwh).Mul(rate).Add(decimal.NewFromInt(fee)).IntPart()
}

// PreviousPeriod returns the month before (month, year), wrapping January
// back to December of the prior year.
func PreviousPeriod(month, year int) (int, int) {
	if month <= 1 {
		return 12, year - 1
	}
	return month - 1, year
}

func UsageFromDataModel(u *billingDatamodel.Usage) *Usage {
	if u == nil {
		return nil
	}
	return &Usage{
		ID:         u.ID,
		CustomerID: u.CustomerID,
		Month:      u.Month,
		Year:       u.Year,
		MeterStart: u.MeterStart,
		MeterEnd:   u.MeterEnd,
	}
}

func FromDataModel(b *billingDatamodel.Bill) *Bill {
	if b == nil {
		return nil
	}
	return &Bill{
		ID:         b.ID,
		CustomerID: b.CustomerID,
		Customer:   customer.FromDataModel(b.Customer),
		UsageID:    b.UsageID,
		Usage:      UsageFromDataModel(b.Usage),
		Month:      b.Month,
		Year:       b.Year,
		UsageKWh:   b.UsageKWh,
		Status:     b.Status,
		PaidDate:   b.PaidDate,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}
