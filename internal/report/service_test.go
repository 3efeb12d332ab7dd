package report_test

import (
	"bytes"
	"context"
	"time"

	"github.com/frahmantamala/petirpay/internal"
	billingDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/billing"
	customerDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/customer"
	paymentDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/payment"
	paymentmethodDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/paymentmethod"
	tariffDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/tariff"
	"github.com/frahmantamala/petirpay/internal/core/testdb"
	"github.com/frahmantamala/petirpay/internal/paymentmethod"
	paymentmethodPostgres "github.com/frahmantamala/petirpay/internal/paymentmethod/postgres"
	"github.com/frahmantamala/petirpay/internal/report"
	reportPostgres "github.com/frahmantamala/petirpay/internal/report/postgres"
	"github.com/frahmantamala/petirpay/pkg/logger"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var billingConfig = internal.BillingConfig{
	DefaultAdminFee:   5000,
	DefaultRatePerKWh: "1500",
	MinYear:           2000,
	MaxYear:           2100,
	MonthlyTarget:     10_000_000,
	TimeZone:          "UTC",
}

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var _ = Describe("Report Service", func() {
	var (
		db       *gorm.DB
		ctx      context.Context
		service  *report.Service
		andi     *customerDatamodel.Customer
		budi     *customerDatamodel.Customer
		methodID int64
	)

	bill := func(c *customerDatamodel.Customer, month, year int, kwh int64, status string, paid *time.Time) int64 {
		b := &billingDatamodel.Bill{CustomerID: c.ID, Month: month, Year: year, UsageKWh: kwh, Status: status, PaidDate: paid}
		Expect(db.Create(b).Error).To(Succeed())
		return b.ID
	}

	pay := func(billID, amount int64, status string, paidAt time.Time) {
		p := &paymentDatamodel.Payment{
			BillID: billID, PaymentMethodID: methodID, PaidAmount: amount, AdminFee: 5000,
			VerificationStatus: status, PaidAt: paidAt,
		}
		Expect(db.Create(p).Error).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(testdb.Close, db)
		ctx = context.Background()

		small := &tariffDatamodel.Tariff{PowerClass: "R1-900VA", RatePerKWh: decimal.NewFromInt(1352)}
		large := &tariffDatamodel.Tariff{PowerClass: "R1-1300VA", RatePerKWh: decimal.NewFromInt(1444)}
		Expect(db.Create(small).Error).To(Succeed())
		Expect(db.Create(large).Error).To(Succeed())

		andi = &customerDatamodel.Customer{Name: "Andi", Email: "andi@example.com", PasswordHash: "x", MeterNumber: "5310001", TariffID: small.ID}
		budi = &customerDatamodel.Customer{Name: "Budi", Email: "budi@example.com", PasswordHash: "x", MeterNumber: "5310002", TariffID: large.ID}
		Expect(db.Create(andi).Error).To(Succeed())
		Expect(db.Create(budi).Error).To(Succeed())

		method := &paymentmethodDatamodel.PaymentMethod{Name: "Transfer BRI", Kind: "manual_transfer", AdminFee: 5000, IsActive: true}
		Expect(db.Create(method).Error).To(Succeed())
		methodID = method.ID

		janPaid := at(2026, time.January, 20, 9)
		bill(andi, 1, 2026, 100, billingDatamodel.StatusPaid, &janPaid)

		febPaid := at(2026, time.February, 10, 14)
		febBill := bill(andi, 2, 2026, 110, billingDatamodel.StatusPaid, &febPaid)
		pay(febBill, 150000, paymentDatamodel.VerificationApproved, febPaid)

		marPaid := at(2026, time.March, 15, 8)
		marBill := bill(andi, 3, 2026, 120, billingDatamodel.StatusPaid, &marPaid)
		pay(marBill, 200000, paymentDatamodel.VerificationApproved, marPaid)

		awaiting := bill(budi, 3, 2026, 50, billingDatamodel.StatusAwaitingConfirmation, nil)
		pay(awaiting, 77200, paymentDatamodel.VerificationAwaiting, at(2026, time.March, 15, 9))

		bill(budi, 2, 2026, 40, billingDatamodel.StatusUnpaid, nil)

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		repo := reportPostgres.NewReportRepository(sqlx.NewDb(sqlDB, "sqlite3"))
		methods := paymentmethod.NewService(paymentmethodPostgres.NewPaymentMethodRepository(db), nil, billingConfig.DefaultAdminFee, logger.Discard())
		service = report.NewService(repo, methods, billingConfig, logger.Discard()).
			WithClock(clock(at(2026, time.March, 15, 10)))
	})

	It("counts bills per status", func() {
		d, err := service.Dashboard(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Bills).To(Equal(report.StatusCounts{Unpaid: 1, AwaitingConfirmation: 1, Paid: 3, Total: 5}))
		Expect(d.MonthlyTarget).To(Equal(int64(10_000_000)))
	})

	It("sums approved payments only", func() {
		d, err := service.Dashboard(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.RevenueToday).To(Equal(report.Revenue{Amount: 200000, Source: report.SourcePayments}))
		Expect(d.RevenueMonth).To(Equal(report.Revenue{Amount: 200000, Source: report.SourcePayments}))
	})

	It("estimates from paid bills when a period has no payments", func() {
		service.WithClock(clock(at(2026, time.January, 20, 12)))

		d, err := service.Dashboard(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.RevenueToday).To(Equal(report.Revenue{Amount: 140200, Source: report.SourceEstimate}))
		Expect(d.RevenueMonth).To(Equal(report.Revenue{Amount: 140200, Source: report.SourceEstimate}))
	})

	It("builds a trailing twelve month series against the target", func() {
		series, err := service.Series(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(series).To(HaveLen(12))

		first, last := series[0], series[11]
		Expect([]int{first.Month, first.Year}).To(Equal([]int{4, 2025}))
		Expect([]int{last.Month, last.Year}).To(Equal([]int{3, 2026}))

		Expect(series[9]).To(Equal(report.MonthlyRevenue{Month: 1, Year: 2026, Amount: 140200, Source: report.SourceEstimate, Target: 10_000_000}))
		Expect(series[10]).To(Equal(report.MonthlyRevenue{Month: 2, Year: 2026, Amount: 150000, Source: report.SourcePayments, Target: 10_000_000}))
		Expect(series[11].Amount).To(Equal(int64(200000)))
		Expect(series[0].Amount).To(BeZero())
	})

	Describe("Export", func() {
		It("writes one row per bill with derived totals", func() {
			var buf bytes.Buffer
			Expect(service.Export(ctx, 3, 2026, &buf)).To(Succeed())

			book, err := excelize.OpenReader(&buf)
			Expect(err).NotTo(HaveOccurred())
			defer book.Close()

			rows, err := book.GetRows("Bills 2026-03")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(4))
			Expect(rows[0][0]).To(Equal("Bill ID"))

			Expect(rows[1][1]).To(Equal("Andi"))
			Expect(rows[1][7]).To(Equal("167240"))
			Expect(rows[1][9]).To(Equal("2026-03-15"))

			Expect(rows[2][1]).To(Equal("Budi"))
			Expect(rows[2][7]).To(Equal("77200"))
			Expect(rows[2][8]).To(Equal("awaiting_confirmation"))

			Expect(rows[3][6]).To(Equal("Grand Total"))
			Expect(rows[3][7]).To(Equal("244440"))
		})

		It("charges the cheapest active method's fee like the bill list", func() {
			cheap := &paymentmethodDatamodel.PaymentMethod{Name: "QRIS", Kind: "automatic", AdminFee: 2500, IsActive: true}
			Expect(db.Create(cheap).Error).To(Succeed())

			var buf bytes.Buffer
			Expect(service.Export(ctx, 3, 2026, &buf)).To(Succeed())

			book, err := excelize.OpenReader(&buf)
			Expect(err).NotTo(HaveOccurred())
			defer book.Close()

			rows, err := book.GetRows("Bills 2026-03")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows[1][6]).To(Equal("2500"))
			Expect(rows[1][7]).To(Equal("164740"))
			Expect(rows[2][7]).To(Equal("74700"))
			Expect(rows[3][7]).To(Equal("239440"))
		})

		It("rejects an out of range period", func() {
			var buf bytes.Buffer
			err := service.Export(ctx, 13, 2026, &buf)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
			details, ok := appErr.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidPeriod)))
			Expect(buf.Len()).To(BeZero())
		})
	})
})
