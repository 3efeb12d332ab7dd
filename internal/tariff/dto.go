package tariff

import (
	"strings"

	errors "github.com/frahmantamala/petirpay/internal"
	"github.com/frahmantamala/petirpay/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

type TariffDTO struct {
	PowerClass  string          `json:"power_class" validate:"required,max=32"`
	RatePerKWh  decimal.Decimal `json:"rate_per_kwh"`
	Description string          `json:"description" validate:"max=255"`
}

func (d *TariffDTO) Normalize() {
	d.PowerClass = strings.ToUpper(strings.TrimSpace(d.PowerClass))
	d.Description = strings.TrimSpace(d.Description)
}

func (d TariffDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	v := validation.NewValidator()
	v.Field("rate_per_kwh", d.RatePerKWh).Custom(func(value interface{}) *errors.AppError {
		rate := value.(decimal.Decimal)
		if !rate.IsPositive() {
			return errors.NewValidationFieldError("rate_per_kwh", "rate_per_kwh must be greater than 0", errors.ErrCodeInvalidRate)
		}
		if rate.Exponent() < -2 {
			return errors.NewValidationFieldError("rate_per_kwh", "rate_per_kwh allows at most 2 decimal places", errors.ErrCodeInvalidRate)
		}
		return nil
	})
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type TariffsResponse struct {
	Tariffs []*Tariff `json:"tariffs"`
}
