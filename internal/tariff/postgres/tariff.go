package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/petirpay/internal"
	customerDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/customer"
	tariffDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/tariff"
	"github.com/frahmantamala/petirpay/internal/tariff"
	"gorm.io/gorm"
)

type TariffRepository struct {
	db *gorm.DB
}

func NewTariffRepository(db *gorm.DB) tariff.RepositoryAPI {
	return &TariffRepository{db: db}
}

func (r *TariffRepository) GetAll(ctx context.Context) ([]*tariffDatamodel.Tariff, error) {
	var tariffs []*tariffDatamodel.Tariff
	err := r.db.WithContext(ctx).Order("rate_per_kwh ASC, power_class ASC").Find(&tariffs).Error
	return tariffs, err
}

func (r *TariffRepository) GetByID(ctx context.Context, id int64) (*tariffDatamodel.Tariff, error) {
	var t tariffDatamodel.Tariff
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTariffNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TariffRepository) GetByPowerClass(ctx context.Context, powerClass string) (*tariffDatamodel.Tariff, error) {
	var t tariffDatamodel.Tariff
	if err := r.db.WithContext(ctx).Where("power_class = ?", powerClass).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTariffNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TariffRepository) Create(ctx context.Context, t *tariffDatamodel.Tariff) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *TariffRepository) Update(ctx context.Context, t *tariffDatamodel.Tariff) error {
	return translate(r.db.WithContext(ctx).Save(t).Error)
}

func (r *TariffRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&tariffDatamodel.Tariff{}, id).Error
}

func (r *TariffRepository) CountCustomers(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&customerDatamodel.Customer{}).Where("tariff_id = ?", id).Count(&n).Error
	return n, err
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrDuplicateTariff
	}
	return err
}
