package payment

import (
	"time"

	billingDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/billing"
	paymentmethodDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/paymentmethod"
)

const (
	VerificationAwaiting = "awaiting"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

type Payment struct {
	ID                 int64                                 `gorm:"primaryKey"`
	BillID             int64                                 `gorm:"column:bill_id;not null;index"`
	Bill               *billingDatamodel.Bill                `gorm:"foreignKey:BillID"`
	PaymentMethodID    int64                                 `gorm:"column:payment_method_id;not null;index"`
	PaymentMethod      *paymentmethodDatamodel.PaymentMethod `gorm:"foreignKey:PaymentMethodID"`
	PaidAmount         int64                                 `gorm:"column:paid_amount;not null"`
	AdminFee           int64                                 `gorm:"column:admin_fee;not null"`
	ProofPath          *string                               `gorm:"column:proof_path"`
	VerificationStatus string                                `gorm:"column:verification_status;size:16;not null;index"`
	VerifiedBy         *int64                                `gorm:"column:verified_by"`
	VerifiedAt         *time.Time                            `gorm:"column:verified_at"`
	Note               *string                               `gorm:"column:note"`
	RecordedBy         *int64                                `gorm:"column:recorded_by"`
	PaidAt             time.Time                             `gorm:"column:paid_at;not null"`
	CreatedAt          time.Time                             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                             `gorm:"column:updated_at;autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}
