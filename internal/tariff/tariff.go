package tariff

import (
	"time"

	tariffDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/tariff"
	"github.com/shopspring/decimal"
)

type Tariff struct {
	ID          int64           `json:"id"`
	PowerClass  string          `json:"power_class"`
	RatePerKWh  decimal.Decimal `json:"rate_per_kwh"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func ToDataModel(t *Tariff) *tariffDatamodel.Tariff {
	return &tariffDatamodel.Tariff{
		ID:          t.ID,
		PowerClass:  t.PowerClass,
		RatePerKWh:  t.RatePerKWh,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromDataModel(t *tariffDatamodel.Tariff) *Tariff {
	if t == nil {
		return nil
	}
	return &Tariff{
		ID:          t.ID,
		PowerClass:  t.PowerClass,
		RatePerKWh:  t.RatePerKWh,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
