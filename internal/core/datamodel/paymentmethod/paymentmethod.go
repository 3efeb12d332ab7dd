package paymentmethod

import "time"

const (
	KindManualTransfer = "manual_transfer"
	KindAutomatic      = "automatic"
)

type PaymentMethod struct {
	ID            int64     `gorm:"primaryKey"`
	Name          string    `gorm:"column:name;uniqueIndex;not null"`
	Kind          string    `gorm:"column:kind;size:32;not null"`
	AccountNumber *string   `gorm:"column:account_number"`
	AccountHolder *string   `gorm:"column:account_holder"`
	AdminFee      int64     `gorm:"column:admin_fee;not null"`
	IsActive      bool      `gorm:"column:is_active;not null"`
	LogoPath      *string   `gorm:"column:logo_path"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}
