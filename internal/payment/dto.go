package payment

import (
	"strings"
	"time"

	"github.com/frahmantamala/petirpay/internal/core/common/validation"
)

// SubmitDTO is a customer paying their own bill. The proof image travels
// alongside it as a separate multipart part.
type SubmitDTO struct {
	BillID          int64 `json:"bill_id" validate:"required,gt=0"`
	PaymentMethodID int64 `json:"payment_method_id" validate:"required,gt=0"`
}

func (d SubmitDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

// RecordDTO is a payment taken at the counter by staff.
type RecordDTO struct {
	BillID          int64      `json:"bill_id" validate:"required,gt=0"`
	PaymentMethodID int64      `json:"payment_method_id" validate:"required,gt=0"`
	PaidAt          *time.Time `json:"paid_at"`
	Note            *string    `json:"note" validate:"omitempty,max=500"`
}

func (d RecordDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

type VerifyDTO struct {
	Note string `json:"note" validate:"max=500"`
}

func (d *VerifyDTO) Normalize() {
	d.Note = strings.TrimSpace(d.Note)
}

func (d VerifyDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

func (d VerifyDTO) notePtr() *string {
	if d.Note == "" {
		return nil
	}
	n := d.Note
	return &n
}

type PaymentsResponse struct {
	Payments []*Payment `json:"payments"`
	Total    int64      `json:"total"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}
