package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/petirpay/internal"
	billingDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/billing"
	customerDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/customer"
	"github.com/frahmantamala/petirpay/internal/customer"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) customer.RepositoryAPI {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) first(ctx context.Context, query string, arg interface{}) (*customerDatamodel.Customer, error) {
	var c customerDatamodel.Customer
	if err := r.db.WithContext(ctx).Preload("Tariff").Where(query, arg).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customerDatamodel.Customer, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*customerDatamodel.Customer, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

func (r *CustomerRepository) GetByMeterNumber(ctx context.Context, meterNumber string) (*customerDatamodel.Customer, error) {
	return r.first(ctx, "meter_number = ?", meterNumber)
}

func (r *CustomerRepository) List(ctx context.Context, filter customer.ListFilter) ([]*customerDatamodel.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&customerDatamodel.Customer{})
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR meter_number LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	if filter.TariffID != nil {
		q = q.Where("tariff_id = ?", *filter.TariffID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []*customerDatamodel.Customer
	q = q.Preload("Tariff").
		Order("name ASC, id ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	err := q.Find(&customers).Error
	return customers, total, err
}

func (r *CustomerRepository) Create(ctx context.Context, c *customerDatamodel.Customer) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error)
}

func (r *CustomerRepository) Update(ctx context.Context, c *customerDatamodel.Customer) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error)
}

func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&customerDatamodel.Customer{}, id).Error
}

// CountLedgerRecords counts usages and bills owned by the customer.
func (r *CustomerRepository) CountLedgerRecords(ctx context.Context, id int64) (int64, error) {
	var usages, bills int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&billingDatamodel.Usage{}).Where("customer_id = ?", id).Count(&usages).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&billingDatamodel.Bill{}).Where("customer_id = ?", id).Count(&bills).Error; err != nil {
		return 0, err
	}
	return usages + bills, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrDuplicateCustomer
	}
	return err
}
