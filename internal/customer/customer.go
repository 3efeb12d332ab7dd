package customer

import (
	"time"

	customerDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/customer"
	"github.com/frahmantamala/petirpay/internal/tariff"
)

type Customer struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	MeterNumber string         `json:"meter_number"`
	Address     string         `json:"address"`
	Phone       string         `json:"phone"`
	TariffID    int64          `json:"tariff_id"`
	Tariff      *tariff.Tariff `json:"tariff,omitempty"`
	PhotoPath   *string        `json:"-"`
	PhotoURL    string         `json:"photo_url,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func FromDataModel(c *customerDatamodel.Customer) *Customer {
	if c == nil {
		return nil
	}
	return &Customer{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		MeterNumber: c.MeterNumber,
		Address:     c.Address,
		Phone:       c.Phone,
		TariffID:    c.TariffID,
		Tariff:      tariff.FromDataModel(c.Tariff),
		PhotoPath:   c.PhotoPath,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type ListFilter struct {
	Query    string
	TariffID *int64
	Limit    int
	Offset   int
}
