// Package testdb opens throwaway SQLite databases carrying the full schema,
// for repository and handler tests.
package testdb

import (
	"fmt"

	activityDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/activity"
	billingDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/billing"
	customerDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/customer"
	paymentDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/payment"
	paymentmethodDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/paymentmethod"
	staffDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/staff"
	tariffDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/tariff"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		&tariffDatamodel.Tariff{},
		&customerDatamodel.Customer{},
		&billingDatamodel.Usage{},
		&billingDatamodel.Bill{},
		&paymentmethodDatamodel.PaymentMethod{},
		&paymentDatamodel.Payment{},
		&staffDatamodel.Account{},
		&activityDatamodel.Activity{},
	}
}

// Open returns a migrated in-memory database private to the caller. The
// shared-cache name keeps every pooled connection on the same database.
func Open() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:petirpay_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(4)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, err
	}
	return db, nil
}

// Close releases the database; the in-memory data goes with it.
func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
