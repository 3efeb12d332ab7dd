package staff

import (
	"time"

	staffDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/staff"
)

const (
	RoleAdministrator = staffDatamodel.RoleAdministrator
	RoleStaff         = staffDatamodel.RoleStaff
)

type Account struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func FromDataModel(a *staffDatamodel.Account) *Account {
	if a == nil {
		return nil
	}
	return &Account{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		Role:        a.Role,
		IsActive:    a.IsActive,
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
