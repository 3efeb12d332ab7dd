package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/petirpay/internal"
	"github.com/frahmantamala/petirpay/internal/billing"
	billingDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/billing"
	paymentDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/payment"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BillingRepository struct {
	db *gorm.DB
}

func NewBillingRepository(db *gorm.DB) billing.RepositoryAPI {
	return &BillingRepository{db: db}
}

func (r *BillingRepository) Transaction(ctx context.Context, fn func(repo billing.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BillingRepository{db: tx})
	})
}

func (r *BillingRepository) BillExists(ctx context.Context, customerID int64, month, year int) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&billingDatamodel.Bill{}).
		Where("customer_id = ? AND month = ? AND year = ?", customerID, month, year).
		Count(&n).Error
	return n > 0, err
}

// FindUsage returns nil without error when the period has no usage.
func (r *BillingRepository) FindUsage(ctx context.Context, customerID int64, month, year int) (*billingDatamodel.Usage, error) {
	var u billingDatamodel.Usage
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND month = ? AND year = ?", customerID, month, year).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *BillingRepository) CreateUsage(ctx context.Context, u *billingDatamodel.Usage) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *BillingRepository) CreateBill(ctx context.Context, b *billingDatamodel.Bill) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error)
}

func (r *BillingRepository) GetBill(ctx context.Context, id int64) (*billingDatamodel.Bill, error) {
	var b billingDatamodel.Bill
	err := r.db.WithContext(ctx).
		Preload("Customer.Tariff").
		Preload("Usage").
		Where("id = ?", id).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrBillNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BillingRepository) ListBills(ctx context.Context, filter billing.ListFilter) ([]*billingDatamodel.Bill, int64, error) {
	q := r.db.WithContext(ctx).Model(&billingDatamodel.Bill{})
	if filter.Status != "" {
		q = q.Where("bills.status = ?", filter.Status)
	}
	if filter.Month > 0 {
		q = q.Where("bills.month = ?", filter.Month)
	}
	if filter.Year > 0 {
		q = q.Where("bills.year = ?", filter.Year)
	}
	if filter.CustomerID != nil {
		q = q.Where("bills.customer_id = ?", *filter.CustomerID)
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Joins("JOIN customers ON customers.id = bills.customer_id").
			Where("LOWER(customers.name) LIKE ? OR customers.meter_number LIKE ?", like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bills []*billingDatamodel.Bill
	q = q.Preload("Customer.Tariff").
		Preload("Usage").
		Order("bills.year DESC, bills.month DESC, bills.id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	err := q.Find(&bills).Error
	return bills, total, err
}

func (r *BillingRepository) DeleteBill(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&billingDatamodel.Bill{}, id).Error
}

func (r *BillingRepository) DeleteUsage(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&billingDatamodel.Usage{}, id).Error
}

func (r *BillingRepository) CountPayments(ctx context.Context, billID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&paymentDatamodel.Payment{}).Where("bill_id = ?", billID).Count(&n).Error
	return n, err
}

// translate maps unique violations on (customer, month, year) to the
// duplicate period rejection.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrDuplicatePeriod
	}
	return err
}
