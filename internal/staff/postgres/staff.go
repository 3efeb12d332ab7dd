package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/frahmantamala/petirpay/internal"
	staffDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/staff"
	"github.com/frahmantamala/petirpay/internal/staff"
	"gorm.io/gorm"
)

type StaffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) staff.RepositoryAPI {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) first(ctx context.Context, query string, arg interface{}) (*staffDatamodel.Account, error) {
	var a staffDatamodel.Account
	if err := r.db.WithContext(ctx).Where(query, arg).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrStaffNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *StaffRepository) GetByID(ctx context.Context, id int64) (*staffDatamodel.Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*staffDatamodel.Account, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

func (r *StaffRepository) List(ctx context.Context, limit, offset int) ([]*staffDatamodel.Account, int64, error) {
	q := r.db.WithContext(ctx).Model(&staffDatamodel.Account{})

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accounts []*staffDatamodel.Account
	q = q.Order("role ASC, name ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&accounts).Error
	return accounts, total, err
}

func (r *StaffRepository) Create(ctx context.Context, a *staffDatamodel.Account) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *StaffRepository) Update(ctx context.Context, a *staffDatamodel.Account) error {
	return translate(r.db.WithContext(ctx).Save(a).Error)
}

func (r *StaffRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&staffDatamodel.Account{}, id).Error
}

func (r *StaffRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&staffDatamodel.Account{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrDuplicateStaff
	}
	return err
}
