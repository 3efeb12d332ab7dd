package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/frahmantamala/petirpay/internal"
	"github.com/frahmantamala/petirpay/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{
		db: db,
	}
}

const (
	staffByEmail = `SELECT id, email, name, role, password_hash, is_active FROM staff_accounts WHERE email = ?`
	staffByID    = `SELECT id, email, name, role, password_hash, is_active FROM staff_accounts WHERE id = ?`

	customerByEmail = `SELECT id, email, name, password_hash FROM customers WHERE email = ?`
	customerByID    = `SELECT id, email, name, password_hash FROM customers WHERE id = ?`
)

func (r *Repository) GetCredentialByEmail(ctx context.Context, kind internal.PrincipalKind, email string) (*auth.Credential, error) {
	if kind == internal.PrincipalCustomer {
		return r.scanCustomer(r.db.WithContext(ctx).Raw(customerByEmail, email).Row())
	}
	return r.scanStaff(r.db.WithContext(ctx).Raw(staffByEmail, email).Row())
}

func (r *Repository) GetCredentialByID(ctx context.Context, kind internal.PrincipalKind, id int64) (*auth.Credential, error) {
	if kind == internal.PrincipalCustomer {
		return r.scanCustomer(r.db.WithContext(ctx).Raw(customerByID, id).Row())
	}
	return r.scanStaff(r.db.WithContext(ctx).Raw(staffByID, id).Row())
}

// TouchLastLogin only tracks staff; customers have no such column.
func (r *Repository) TouchLastLogin(ctx context.Context, kind internal.PrincipalKind, id int64, at time.Time) error {
	if kind != internal.PrincipalStaff {
		return nil
	}
	return r.db.WithContext(ctx).
		Exec(`UPDATE staff_accounts SET last_login_at = ? WHERE id = ?`, at, id).Error
}

func (r *Repository) scanStaff(row *sql.Row) (*auth.Credential, error) {
	cred := auth.Credential{Kind: internal.PrincipalStaff}
	if err := row.Scan(&cred.ID, &cred.Email, &cred.Name, &cred.Role, &cred.PasswordHash, &cred.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cred, nil
}

func (r *Repository) scanCustomer(row *sql.Row) (*auth.Credential, error) {
	cred := auth.Credential{Kind: internal.PrincipalCustomer, Role: auth.RoleCustomer, IsActive: true}
	if err := row.Scan(&cred.ID, &cred.Email, &cred.Name, &cred.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cred, nil
}
