package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/petirpay/internal"
	paymentDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/payment"
	paymentmethodDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/paymentmethod"
	"github.com/frahmantamala/petirpay/internal/paymentmethod"
	"gorm.io/gorm"
)

type PaymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) paymentmethod.RepositoryAPI {
	return &PaymentMethodRepository{db: db}
}

func (r *PaymentMethodRepository) GetAll(ctx context.Context, activeOnly bool) ([]*paymentmethodDatamodel.PaymentMethod, error) {
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var methods []*paymentmethodDatamodel.PaymentMethod
	err := q.Order("admin_fee ASC, name ASC").Find(&methods).Error
	return methods, err
}

func (r *PaymentMethodRepository) GetByID(ctx context.Context, id int64) (*paymentmethodDatamodel.PaymentMethod, error) {
	var m paymentmethodDatamodel.PaymentMethod
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPaymentMethodNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PaymentMethodRepository) CheapestActive(ctx context.Context) (*paymentmethodDatamodel.PaymentMethod, error) {
	var m paymentmethodDatamodel.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("admin_fee ASC, id ASC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPaymentMethodNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PaymentMethodRepository) Create(ctx context.Context, m *paymentmethodDatamodel.PaymentMethod) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *PaymentMethodRepository) Update(ctx context.Context, m *paymentmethodDatamodel.PaymentMethod) error {
	return translate(r.db.WithContext(ctx).Save(m).Error)
}

func (r *PaymentMethodRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&paymentmethodDatamodel.PaymentMethod{}, id).Error
}

func (r *PaymentMethodRepository) CountPayments(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&paymentDatamodel.Payment{}).Where("payment_method_id = ?", id).Count(&n).Error
	return n, err
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrDuplicateMethod
	}
	return err
}
