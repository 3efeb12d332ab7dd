package payment

import (
	"time"

	"github.com/frahmantamala/petirpay/internal/billing"
	paymentDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/payment"
	"github.com/frahmantamala/petirpay/internal/paymentmethod"
)

const (
	StatusAwaiting = paymentDatamodel.VerificationAwaiting
	StatusApproved = paymentDatamodel.VerificationApproved
	StatusRejected = paymentDatamodel.VerificationRejected
)

type Payment struct {
	ID                 int64                        `json:"id"`
	BillID             int64                        `json:"bill_id"`
	Bill               *billing.Bill                `json:"bill,omitempty"`
	PaymentMethodID    int64                        `json:"payment_method_id"`
	PaymentMethod      *paymentmethod.PaymentMethod `json:"payment_method,omitempty"`
	PaidAmount         int64                        `json:"paid_amount"`
	AdminFee           int64                        `json:"admin_fee"`
	ProofPath          *string                      `json:"-"`
	ProofURL           string                       `json:"proof_url,omitempty"`
	VerificationStatus string                       `json:"verification_status"`
	VerifiedBy         *int64                       `json:"verified_by,omitempty"`
	VerifiedAt         *time.Time                   `json:"verified_at,omitempty"`
	Note               *string                      `json:"note,omitempty"`
	RecordedBy         *int64                       `json:"recorded_by,omitempty"`
	PaidAt             time.Time                    `json:"paid_at"`
	CreatedAt          time.Time                    `json:"created_at"`
}

func FromDataModel(p *paymentDatamodel.Payment) *Payment {
	if p == nil {
		return nil
	}
	return &Payment{
		ID:                 p.ID,
		BillID:             p.BillID,
		Bill:               billing.FromDataModel(p.Bill),
		PaymentMethodID:    p.PaymentMethodID,
		PaymentMethod:      paymentmethod.FromDataModel(p.PaymentMethod),
		PaidAmount:         p.PaidAmount,
		AdminFee:           p.AdminFee,
		ProofPath:          p.ProofPath,
		VerificationStatus: p.VerificationStatus,
		VerifiedBy:         p.VerifiedBy,
		VerifiedAt:         p.VerifiedAt,
		Note:               p.Note,
		RecordedBy:         p.RecordedBy,
		PaidAt:             p.PaidAt,
		CreatedAt:          p.CreatedAt,
	}
}

type ListFilter struct {
	Status     string
	CustomerID *int64
	BillID     *int64
	Limit      int
	Offset     int
}
