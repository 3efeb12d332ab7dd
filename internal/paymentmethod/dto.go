package paymentmethod

import (
	"strings"

	"github.com/frahmantamala/petirpay/internal/core/common/validation"
)

type PaymentMethodDTO struct {
	Name          string  `json:"name" validate:"required,max=80"`
	Kind          string  `json:"kind" validate:"required,oneof=manual_transfer automatic"`
	AccountNumber *string `json:"account_number" validate:"omitempty,max=40"`
	AccountHolder *string `json:"account_holder" validate:"omitempty,max=120"`
	AdminFee      int64   `json:"admin_fee" validate:"gte=0,lte=1000000"`
	IsActive      *bool   `json:"is_active"`
}

func (d *PaymentMethodDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Kind = strings.ToLower(strings.TrimSpace(d.Kind))
	d.AccountNumber = trimPtr(d.AccountNumber)
	d.AccountHolder = trimPtr(d.AccountHolder)
}

func (d PaymentMethodDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

type PaymentMethodsResponse struct {
	PaymentMethods []*PaymentMethod `json:"payment_methods"`
}
