package billing

import (
	"github.com/frahmantamala/petirpay/internal"
	"github.com/frahmantamala/petirpay/internal/core/common/validation"
)

type CreateBillDTO struct {
	CustomerID int64 `json:"customer_id"`
	Month      int   `json:"month"`
	Year       int   `json:"year"`
	UsageKWh   int64 `json:"usage_kwh"`
}

// Validate checks the bill input against the configured year range before any
// lookup or write happens.
func (d CreateBillDTO) Validate(minYear, maxYear int) error {
	v := validation.NewValidator()
	v.Field("customer_id", d.CustomerID).Required()
	v.Field("month", d.Month).Between(1, 12, internal.ErrCodeInvalidPeriod)
	v.Field("year", d.Year).Between(int64(minYear), int64(maxYear), internal.ErrCodeInvalidPeriod)
	v.Field("usage_kwh", d.UsageKWh).Between(0, MaxUsageKWh, internal.ErrCodeInvalidUsage)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func validatePeriodQuery(customerID int64, month, year, minYear, maxYear int) error {
	v := validation.NewValidator()
	v.Field("customer_id", customerID).Required()
	v.Field("month", month).Between(1, 12, internal.ErrCodeInvalidPeriod)
	v.Field("year", year).Between(int64(minYear), int64(maxYear), internal.ErrCodeInvalidPeriod)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// validateStatus accepts an empty filter.
func validateStatus(status string) error {
	if status == "" {
		return nil
	}
	v := validation.NewValidator()
	v.Field("status", status).OneOf(internal.ErrCodeValidationFailed, StatusUnpaid, StatusAwaitingConfirmation, StatusPaid)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type BillsResponse struct {
	Bills  []*Bill `json:"bills"`
	Total  int64   `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
