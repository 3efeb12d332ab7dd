package cmd

import (
	"fmt"
	"log"

	"github.com/frahmantamala/petirpay/internal/auth"
	customerDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/customer"
	paymentmethodDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/paymentmethod"
	staffDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/staff"
	tariffDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/tariff"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	clearData    bool
	seedPassword string
	seedCustomer bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed an administrator, a staff account, tariffs and payment methods. Existing rows are left alone.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			if err := db.Exec(`TRUNCATE activities, payments, bills, usages, customers, payment_methods, tariffs, staff_accounts RESTART IDENTITY CASCADE`).Error; err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		hash, err := auth.NewBcryptHasher(cfg.Security.BCryptCost).Hash(seedPassword)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		if err := db.Transaction(func(tx *gorm.DB) error {
			return seed(tx, hash)
		}); err != nil {
			log.Fatalf("seed failed: %v", err)
		}

		fmt.Println("Seed completed")
	},
}

func seed(db *gorm.DB, passwordHash string) error {
	accounts := []staffDatamodel.Account{
		{Name: "Administrator", Email: "admin@petirpay.id", Role: staffDatamodel.RoleAdministrator},
		{Name: "Petugas Loket", Email: "petugas@petirpay.id", Role: staffDatamodel.RoleStaff},
	}
	for _, a := range accounts {
		a.PasswordHash = passwordHash
		a.IsActive = true
		if err := db.Where("email = ?", a.Email).FirstOrCreate(&a).Error; err != nil {
			return fmt.Errorf("staff %s: %w", a.Email, err)
		}
		fmt.Printf("Seeded %s account: %s\n", a.Role, a.Email)
	}

	tariffs := []tariffDatamodel.Tariff{
		{PowerClass: "450VA", RatePerKWh: decimal.RequireFromString("415"), Description: "Subsidised household"},
		{PowerClass: "900VA", RatePerKWh: decimal.RequireFromString("1352"), Description: "Household"},
		{PowerClass: "1300VA", RatePerKWh: decimal.RequireFromString("1444.70"), Description: "Household"},
		{PowerClass: "2200VA", RatePerKWh: decimal.RequireFromString("1444.70"), Description: "Household"},
		{PowerClass: "3500VA", RatePerKWh: decimal.RequireFromString("1699.53"), Description: "Large household"},
	}
	for _, t := range tariffs {
		if err := db.Where("power_class = ?", t.PowerClass).FirstOrCreate(&t).Error; err != nil {
			return fmt.Errorf("tariff %s: %w", t.PowerClass, err)
		}
	}
	fmt.Printf("Seeded %d tariffs\n", len(tariffs))

	bri, bca := "0123-01-000123-30-1", "8720-1122-33"
	holder := "PT PetirPay Nusantara"
	methods := []paymentmethodDatamodel.PaymentMethod{
		{Name: "Transfer BRI", Kind: paymentmethodDatamodel.KindManualTransfer, AccountNumber: &bri, AccountHolder: &holder, AdminFee: 2500},
		{Name: "Transfer BCA", Kind: paymentmethodDatamodel.KindManualTransfer, AccountNumber: &bca, AccountHolder: &holder, AdminFee: 3500},
		{Name: "QRIS", Kind: paymentmethodDatamodel.KindAutomatic, AdminFee: 1500},
	}
	for _, m := range methods {
		m.IsActive = true
		if err := db.Where("name = ?", m.Name).FirstOrCreate(&m).Error; err != nil {
			return fmt.Errorf("payment method %s: %w", m.Name, err)
		}
	}
	fmt.Printf("Seeded %d payment methods\n", len(methods))

	if !seedCustomer {
		return nil
	}

	var household tariffDatamodel.Tariff
	if err := db.Where("power_class = ?", "900VA").First(&household).Error; err != nil {
		return err
	}
	demo := customerDatamodel.Customer{
		Name:         "Budi Santoso",
		Email:        "budi@example.com",
		PasswordHash: passwordHash,
		MeterNumber:  "53100012345",
		Address:      "Jl. Merdeka No. 1, Bandung",
		TariffID:     household.ID,
	}
	if err := db.Where("email = ?", demo.Email).FirstOrCreate(&demo).Error; err != nil {
		return fmt.Errorf("customer %s: %w", demo.Email, err)
	}
	fmt.Println("Seeded demo customer:", demo.Email)
	return nil
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
	seedCmd.Flags().StringVar(&seedPassword, "password", "password", "Password for every seeded account")
	seedCmd.Flags().BoolVar(&seedCustomer, "with-customer", false, "Also seed a demo customer")
}
