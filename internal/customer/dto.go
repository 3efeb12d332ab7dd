package customer

import (
	"strings"

	"github.com/frahmantamala/petirpay/internal/core/common/validation"
)

// RegisterDTO is used for self-registration and for staff creating an account
// on a customer's behalf.
type RegisterDTO struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email,max=160"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	MeterNumber string `json:"meter_number" validate:"required,numeric,min=6,max=20"`
	Address     string `json:"address" validate:"max=255"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
	TariffID    int64  `json:"tariff_id" validate:"required,gt=0"`
}

func (d *RegisterDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.MeterNumber = strings.TrimSpace(d.MeterNumber)
	d.Address = strings.TrimSpace(d.Address)
	d.Phone = strings.TrimSpace(d.Phone)
}

func (d RegisterDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

// UpdateDTO is the staff-side edit. An empty password keeps the current one.
type UpdateDTO struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email,max=160"`
	Password    string `json:"password" validate:"omitempty,min=8,max=72"`
	MeterNumber string `json:"meter_number" validate:"required,numeric,min=6,max=20"`
	Address     string `json:"address" validate:"max=255"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
	TariffID    int64  `json:"tariff_id" validate:"required,gt=0"`
}

func (d *UpdateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.MeterNumber = strings.TrimSpace(d.MeterNumber)
	d.Address = strings.TrimSpace(d.Address)
	d.Phone = strings.TrimSpace(d.Phone)
}

func (d UpdateDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

// ProfileDTO is what customers may change about themselves. Meter number and
// tariff stay under staff control.
type ProfileDTO struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=160"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
	Address  string `json:"address" validate:"max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
}

func (d *ProfileDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Address = strings.TrimSpace(d.Address)
	d.Phone = strings.TrimSpace(d.Phone)
}

func (d ProfileDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}
