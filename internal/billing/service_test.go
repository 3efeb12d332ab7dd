package billing_test

import (
	"context"
	"errors"
	"sync"

	"github.com/frahmantamala/petirpay/internal"
	"github.com/frahmantamala/petirpay/internal/billing"
	billingPostgres "github.com/frahmantamala/petirpay/internal/billing/postgres"
	billingDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/billing"
	paymentDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/payment"
	"github.com/frahmantamala/petirpay/internal/core/events"
	"github.com/frahmantamala/petirpay/internal/core/testdb"
	"github.com/frahmantamala/petirpay/internal/customer"
	customerPostgres "github.com/frahmantamala/petirpay/internal/customer/postgres"
	"github.com/frahmantamala/petirpay/internal/paymentmethod"
	paymentmethodPostgres "github.com/frahmantamala/petirpay/internal/paymentmethod/postgres"
	"github.com/frahmantamala/petirpay/internal/tariff"
	tariffPostgres "github.com/frahmantamala/petirpay/internal/tariff/postgres"
	"github.com/frahmantamala/petirpay/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func int64Ptr(n int64) *int64 { return &n }

func billingConfig() internal.BillingConfig {
	return internal.BillingConfig{
		DefaultAdminFee:   internal.DefaultAdminFee,
		DefaultRatePerKWh: internal.DefaultRatePerKWh,
		MinYear:           2000,
		MaxYear:           2100,
	}
}

var _ = Describe("Billing Service", func() {
	var (
		db         *gorm.DB
		ctx        context.Context
		service    *billing.Service
		tariffs    *tariff.Service
		methods    *paymentmethod.Service
		publisher  *recordingPublisher
		tariffID   int64
		customerID int64
		otherID    int64
	)

	countBills := func() int64 {
		var n int64
		Expect(db.Model(&billingDatamodel.Bill{}).Count(&n).Error).To(Succeed())
		return n
	}

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(testdb.Close, db)
		ctx = context.Background()

		tariffs = tariff.NewService(tariffPostgres.NewTariffRepository(db), logger.Discard())
		t, err := tariffs.Create(ctx, tariff.TariffDTO{PowerClass: "900VA", RatePerKWh: decimal.NewFromInt(1500)})
		Expect(err).NotTo(HaveOccurred())
		tariffID = t.ID

		customers := customer.NewService(customerPostgres.NewCustomerRepository(db), tariffs, plainHasher{}, nil, logger.Discard())
		c, err := customers.Register(ctx, customer.RegisterDTO{
			Name: "Siti Aminah", Email: "siti@example.com", Password: "rahasia123",
			MeterNumber: "5500123401", Address: "Jl. Sudirman 5", TariffID: tariffID,
		})
		Expect(err).NotTo(HaveOccurred())
		customerID = c.ID
		o, err := customers.Register(ctx, customer.RegisterDTO{
			Name: "Agus Salim", Email: "agus@example.com", Password: "rahasia123",
			MeterNumber: "5500123402", Address: "Jl. Thamrin 9", TariffID: tariffID,
		})
		Expect(err).NotTo(HaveOccurred())
		otherID = o.ID

		methods = paymentmethod.NewService(paymentmethodPostgres.NewPaymentMethodRepository(db), nil, internal.DefaultAdminFee, logger.Discard())
		publisher = &recordingPublisher{}
		service = billing.NewService(billingPostgres.NewBillingRepository(db), customers, methods, publisher, billingConfig(), logger.Discard())
	})

	create := func(cid int64, month, year int, kwh int64) (*billing.Bill, error) {
		return service.CreateBill(ctx, 1, billing.CreateBillDTO{CustomerID: cid, Month: month, Year: year, UsageKWh: kwh})
	}

	Describe("CreateBill", func() {
		It("computes the total with the default fee when no method exists", func() {
			bill, err := create(customerID, 3, 2024, 100)
			Expect(err).NotTo(HaveOccurred())

			Expect(bill.Status).To(Equal(billing.StatusUnpaid))
			Expect(bill.Customer).NotTo(BeNil())
			Expect(bill.Customer.Tariff).NotTo(BeNil())
			Expect(bill.Customer.Tariff.PowerClass).To(Equal("900VA"))
			Expect(bill.AdminFee).To(Equal(int64(5000)))
			Expect(bill.Total).To(Equal(int64(155000)))
			Expect(publisher.types()).To(ConsistOf(events.EventTypeBillCreated))
		})

		It("opens at zero when the previous period has no usage", func() {
			bill, err := create(customerID, 3, 2024, 120)
			Expect(err).NotTo(HaveOccurred())

			Expect(bill.Usage).NotTo(BeNil())
			Expect(bill.Usage.MeterStart).To(Equal(int64(0)))
			Expect(bill.Usage.MeterEnd).To(Equal(int64(120)))
		})

		It("continues from the previous period's closing reading across a year boundary", func() {
			_, err := create(customerID, 12, 2023, 80)
			Expect(err).NotTo(HaveOccurred())

			bill, err := create(customerID, 1, 2024, 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(bill.Usage.MeterStart).To(Equal(int64(80)))
			Expect(bill.Usage.MeterEnd).To(Equal(int64(130)))
		})

		It("does not record usage for a zero consumption bill", func() {
			bill, err := create(customerID, 4, 2024, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(bill.UsageID).To(BeNil())

			var usages int64
			Expect(db.Model(&billingDatamodel.Usage{}).Count(&usages).Error).To(Succeed())
			Expect(usages).To(BeZero())
		})

		It("rejects a second bill for the same period and leaves the ledger unchanged", func() {
			_, err := create(customerID, 5, 2024, 100)
			Expect(err).NotTo(HaveOccurred())
			before := countBills()

			_, err = create(customerID, 5, 2024, 40)
			Expect(errors.Is(err, internal.ErrDuplicatePeriod)).To(BeTrue())
			Expect(countBills()).To(Equal(before))
		})

		It("allows the same period for a different customer", func() {
			_, err := create(customerID, 5, 2024, 100)
			Expect(err).NotTo(HaveOccurred())
			_, err = create(otherID, 5, 2024, 100)
			Expect(err).NotTo(HaveOccurred())
		})

		DescribeTable("rejects invalid input before writing",
			func(dto billing.CreateBillDTO, field string) {
				_, err := service.CreateBill(ctx, 1, dto)
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.StatusCode).To(Equal(400))
				details, ok := appErr.Details.(internal.ValidationErrors)
				Expect(ok).To(BeTrue())
				Expect(details.Errors[0].Field).To(Equal(field))
				Expect(countBills()).To(BeZero())
			},
			Entry("month out of range", billing.CreateBillDTO{CustomerID: 1, Month: 13, Year: 2024, UsageKWh: 1}, "month"),
			Entry("year out of range", billing.CreateBillDTO{CustomerID: 1, Month: 1, Year: 1999, UsageKWh: 1}, "year"),
			Entry("negative usage", billing.CreateBillDTO{CustomerID: 1, Month: 1, Year: 2024, UsageKWh: -5}, "usage_kwh"),
			Entry("usage above the cap", billing.CreateBillDTO{CustomerID: 1, Month: 1, Year: 2024, UsageKWh: billing.MaxUsageKWh + 1}, "usage_kwh"),
			Entry("usage that would overflow the total", billing.CreateBillDTO{CustomerID: 1, Month: 1, Year: 2024, UsageKWh: 1 << 60}, "usage_kwh"),
			Entry("unknown customer", billing.CreateBillDTO{CustomerID: 9999, Month: 1, Year: 2024, UsageKWh: 5}, "customer_id"),
		)
	})

	Describe("totals", func() {
		It("follows the current tariff rate on every read", func() {
			bill, err := create(customerID, 6, 2024, 100)
			Expect(err).NotTo(HaveOccurred())

			_, err = tariffs.Update(ctx, tariffID, tariff.TariffDTO{PowerClass: "900VA", RatePerKWh: decimal.NewFromInt(2000)})
			Expect(err).NotTo(HaveOccurred())

			reloaded, err := service.Get(ctx, bill.ID, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.Total).To(Equal(int64(205000)))
		})

		It("uses the cheapest active method, or the chosen one", func() {
			_, err := methods.Create(ctx, paymentmethod.PaymentMethodDTO{Name: "BCA", Kind: "manual_transfer", AdminFee: 2500})
			Expect(err).NotTo(HaveOccurred())
			pricey, err := methods.Create(ctx, paymentmethod.PaymentMethodDTO{Name: "Kartu Kredit", Kind: "automatic", AdminFee: 7500})
			Expect(err).NotTo(HaveOccurred())

			bill, err := create(customerID, 7, 2024, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(bill.Total).To(Equal(int64(152500)))

			preview, err := service.Get(ctx, bill.ID, int64Ptr(pricey.ID))
			Expect(err).NotTo(HaveOccurred())
			Expect(preview.AdminFee).To(Equal(int64(7500)))
			Expect(preview.Total).To(Equal(int64(157500)))
		})
	})

	Describe("PreviousReading", func() {
		It("reports no previous data", func() {
			r, err := service.PreviousReading(ctx, customerID, 1, 2024)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Found).To(BeFalse())
			Expect(r.Reading).To(BeZero())
			Expect(r.Month).To(Equal(12))
			Expect(r.Year).To(Equal(2023))
		})

		It("returns the prior closing reading", func() {
			_, err := create(customerID, 2, 2024, 75)
			Expect(err).NotTo(HaveOccurred())

			r, err := service.PreviousReading(ctx, customerID, 3, 2024)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Found).To(BeTrue())
			Expect(r.Reading).To(Equal(int64(75)))
		})
	})

	Describe("listing", func() {
		BeforeEach(func() {
			for m := 1; m <= 3; m++ {
				_, err := create(customerID, m, 2024, int64(10*m))
				Expect(err).NotTo(HaveOccurred())
			}
			_, err := create(otherID, 1, 2024, 10)
			Expect(err).NotTo(HaveOccurred())
		})

		It("filters, searches and pages", func() {
			bills, total, err := service.List(ctx, billing.ListFilter{Month: 1, Year: 2024, Limit: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(bills).To(HaveLen(2))

			bills, total, err = service.List(ctx, billing.ListFilter{Query: "agus", Limit: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(bills[0].CustomerID).To(Equal(otherID))

			bills, total, err = service.List(ctx, billing.ListFilter{Limit: 2, Offset: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(4)))
			Expect(bills).To(HaveLen(2))
		})

		It("rejects unknown status filters", func() {
			_, _, err := service.List(ctx, billing.ListFilter{Status: "overdue"})
			Expect(err).To(HaveOccurred())
		})

		It("only shows customers their own bills", func() {
			bills, total, err := service.ListForCustomer(ctx, otherID, billing.ListFilter{Limit: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))

			_, err = service.GetForCustomer(ctx, customerID, bills[0].ID, nil)
			Expect(errors.Is(err, internal.ErrBillNotFound)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("removes an unpaid bill and its usage", func() {
			bill, err := create(customerID, 8, 2024, 60)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, 1, bill.ID)).To(Succeed())
			Expect(countBills()).To(BeZero())

			var usages int64
			Expect(db.Model(&billingDatamodel.Usage{}).Count(&usages).Error).To(Succeed())
			Expect(usages).To(BeZero())
			Expect(publisher.types()).To(ContainElement(events.EventTypeBillDeleted))
		})

		It("refuses bills that have payments", func() {
			bill, err := create(customerID, 9, 2024, 60)
			Expect(err).NotTo(HaveOccurred())
			m, err := methods.Create(ctx, paymentmethod.PaymentMethodDTO{Name: "BRI", Kind: "automatic", AdminFee: 2500})
			Expect(err).NotTo(HaveOccurred())

			Expect(db.Create(&paymentDatamodel.Payment{
				BillID:             bill.ID,
				PaymentMethodID:    m.ID,
				PaidAmount:         bill.Total,
				AdminFee:           2500,
				VerificationStatus: paymentDatamodel.VerificationRejected,
				PaidAt:             bill.CreatedAt,
			}).Error).To(Succeed())

			err = service.Delete(ctx, 1, bill.ID)
			Expect(errors.Is(err, internal.ErrBillNotDeletable)).To(BeTrue())
			Expect(countBills()).To(Equal(int64(1)))
		})

		It("returns not found for unknown bills", func() {
			err := service.Delete(ctx, 1, 404)
			Expect(errors.Is(err, internal.ErrBillNotFound)).To(BeTrue())
		})
	})
})
