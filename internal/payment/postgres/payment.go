package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/petirpay/internal"
	billingDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/billing"
	paymentDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/payment"
	"github.com/frahmantamala/petirpay/internal/payment"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) payment.RepositoryAPI {
	return &PaymentRepository{
		db: db,
	}
}

func (r *PaymentRepository) Transaction(ctx context.Context, fn func(repo payment.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PaymentRepository{db: tx})
	})
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*paymentDatamodel.Payment, error) {
	var p paymentDatamodel.Payment
	err := r.db.WithContext(ctx).
		Preload("Bill.Customer.Tariff").
		Preload("PaymentMethod").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) List(ctx context.Context, filter payment.ListFilter) ([]*paymentDatamodel.Payment, int64, error) {
	q := r.db.WithContext(ctx).Model(&paymentDatamodel.Payment{})
	if filter.Status != "" {
		q = q.Where("payments.verification_status = ?", filter.Status)
	}
	if filter.BillID != nil {
		q = q.Where("payments.bill_id = ?", *filter.BillID)
	}
	if filter.CustomerID != nil {
		q = q.Joins("JOIN bills ON bills.id = payments.bill_id").
			Where("bills.customer_id = ?", *filter.CustomerID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []*paymentDatamodel.Payment
	q = q.Preload("Bill.Customer.Tariff").
		Preload("PaymentMethod").
		Order("payments.created_at DESC, payments.id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	err := q.Find(&payments).Error
	return payments, total, err
}

func (r *PaymentRepository) Create(ctx context.Context, p *paymentDatamodel.Payment) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// the partial unique index on bill_id caught a concurrent submit
		return internal.ErrActivePaymentExists
	}
	return err
}

func (r *PaymentRepository) CountActive(ctx context.Context, billID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&paymentDatamodel.Payment{}).
		Where("bill_id = ? AND verification_status <> ?", billID, paymentDatamodel.VerificationRejected).
		Count(&n).Error
	return n, err
}

func (r *PaymentRepository) Verify(ctx context.Context, id int64, status string, verifierID int64, at time.Time, note *string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&paymentDatamodel.Payment{}).
		Where("id = ? AND verification_status = ?", id, paymentDatamodel.VerificationAwaiting).
		Updates(map[string]interface{}{
			"verification_status": status,
			"verified_by":         verifierID,
			"verified_at":         at,
			"note":                note,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *PaymentRepository) TransitionBill(ctx context.Context, billID int64, from, to string, paidDate *time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&billingDatamodel.Bill{}).
		Where("id = ? AND status = ?", billID, from).
		Updates(map[string]interface{}{
			"status":    to,
			"paid_date": paidDate,
		})
	return res.RowsAffected == 1, res.Error
}
