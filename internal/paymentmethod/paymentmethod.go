package paymentmethod

import (
	"time"

	paymentmethodDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/paymentmethod"
)

type PaymentMethod struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Kind          string    `json:"kind"`
	AccountNumber *string   `json:"account_number,omitempty"`
	AccountHolder *string   `json:"account_holder,omitempty"`
	AdminFee      int64     `json:"admin_fee"`
	IsActive      bool      `json:"is_active"`
	LogoPath      *string   `json:"-"`
	LogoURL       string    `json:"logo_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RequiresProof reports whether payments through this channel need an
// uploaded transfer receipt.
func (m *PaymentMethod) RequiresProof() bool {
	return m.Kind == paymentmethodDatamodel.KindManualTransfer
}

func FromDataModel(m *paymentmethodDatamodel.PaymentMethod) *PaymentMethod {
	if m == nil {
		return nil
	}
	return &PaymentMethod{
		ID:            m.ID,
		Name:          m.Name,
		Kind:          m.Kind,
		AccountNumber: m.AccountNumber,
		AccountHolder: m.AccountHolder,
		AdminFee:      m.AdminFee,
		IsActive:      m.IsActive,
		LogoPath:      m.LogoPath,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
