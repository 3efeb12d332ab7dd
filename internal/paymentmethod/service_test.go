package paymentmethod_test

import (
	"context"
	"errors"
	"io"

	"github.com/frahmantamala/petirpay/internal"
	"github.com/frahmantamala/petirpay/internal/core/testdb"
	"github.com/frahmantamala/petirpay/internal/paymentmethod"
	paymentmethodPostgres "github.com/frahmantamala/petirpay/internal/paymentmethod/postgres"
	"github.com/frahmantamala/petirpay/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubImages struct {
	saved   []string
	deleted []string
}

func (s *stubImages) SaveImage(_ context.Context, folder string, r io.Reader) (string, error) {
	_, _ = io.ReadAll(r)
	p := folder + "/logo-" + string(rune('a'+len(s.saved))) + ".jpg"
	s.saved = append(s.saved, p)
	return p, nil
}

func (s *stubImages) Delete(_ context.Context, p string) error {
	s.deleted = append(s.deleted, p)
	return nil
}

func (s *stubImages) URL(p string) string { return "/uploads/" + p }

func boolPtr(b bool) *bool { return &b }

func int64Ptr(n int64) *int64 { return &n }

var _ = Describe("PaymentMethod Service", func() {
	var (
		service *paymentmethod.Service
		images  *stubImages
		ctx     context.Context
	)

	BeforeEach(func() {
		db, err := testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(testdb.Close, db)

		ctx = context.Background()
		images = &stubImages{}
		service = paymentmethod.NewService(paymentmethodPostgres.NewPaymentMethodRepository(db), images, internal.DefaultAdminFee, logger.Discard())
	})

	create := func(name string, fee int64, active bool) *paymentmethod.PaymentMethod {
		m, err := service.Create(ctx, paymentmethod.PaymentMethodDTO{
			Name:     name,
			Kind:     "manual_transfer",
			AdminFee: fee,
			IsActive: boolPtr(active),
		})
		Expect(err).NotTo(HaveOccurred())
		return m
	}

	Describe("Create", func() {
		It("defaults new methods to active", func() {
			m, err := service.Create(ctx, paymentmethod.PaymentMethodDTO{Name: " BCA Transfer ", Kind: "Manual_Transfer", AdminFee: 2500})
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Name).To(Equal("BCA Transfer"))
			Expect(m.Kind).To(Equal("manual_transfer"))
			Expect(m.IsActive).To(BeTrue())
			Expect(m.RequiresProof()).To(BeTrue())
		})

		It("rejects unknown kinds and negative fees", func() {
			_, err := service.Create(ctx, paymentmethod.PaymentMethodDTO{Name: "X", Kind: "cash", AdminFee: -1})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("rejects duplicate names", func() {
			create("BRI", 3000, true)
			_, err := service.Create(ctx, paymentmethod.PaymentMethodDTO{Name: "BRI", Kind: "automatic", AdminFee: 1000})
			Expect(errors.Is(err, internal.ErrDuplicateMethod)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("filters inactive methods when asked", func() {
			create("Active", 2000, true)
			create("Inactive", 1000, false)

			all, err := service.List(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))

			active, err := service.List(ctx, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(HaveLen(1))
			Expect(active[0].Name).To(Equal("Active"))
		})
	})

	Describe("RequireActive", func() {
		It("refuses inactive methods", func() {
			m := create("Dormant", 1000, false)
			_, err := service.RequireActive(ctx, m.ID)
			Expect(errors.Is(err, internal.ErrPaymentMethodInactive)).To(BeTrue())
		})
	})

	Describe("AdminFee", func() {
		It("falls back to the configured default with no methods", func() {
			fee, err := service.AdminFee(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(fee).To(Equal(int64(5000)))
		})

		It("uses the cheapest active method when none is chosen", func() {
			create("Pricey", 6500, true)
			create("Cheap", 2500, true)
			create("Cheapest but off", 500, false)

			fee, err := service.AdminFee(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(fee).To(Equal(int64(2500)))
		})

		It("uses the chosen method's fee", func() {
			create("Cheap", 2500, true)
			pricey := create("Pricey", 6500, true)

			fee, err := service.AdminFee(ctx, int64Ptr(pricey.ID))
			Expect(err).NotTo(HaveOccurred())
			Expect(fee).To(Equal(int64(6500)))
		})

		It("falls through when the chosen method does not exist", func() {
			create("Cheap", 2500, true)

			fee, err := service.AdminFee(ctx, int64Ptr(999))
			Expect(err).NotTo(HaveOccurred())
			Expect(fee).To(Equal(int64(2500)))
		})
	})

	Describe("UploadLogo", func() {
		It("replaces the previous logo", func() {
			m := create("QRIS", 1000, true)

			_, err := service.UploadLogo(ctx, m.ID, nopReader{})
			Expect(err).NotTo(HaveOccurred())
			updated, err := service.UploadLogo(ctx, m.ID, nopReader{})
			Expect(err).NotTo(HaveOccurred())

			Expect(updated.LogoURL).To(Equal("/uploads/" + images.saved[1]))
			Expect(images.deleted).To(ConsistOf(images.saved[0]))
		})
	})

	Describe("Delete", func() {
		It("removes unused methods", func() {
			m := create("Temp", 1000, true)
			Expect(service.Delete(ctx, m.ID)).To(Succeed())

			_, err := service.Get(ctx, m.ID)
			Expect(errors.Is(err, internal.ErrPaymentMethodNotFound)).To(BeTrue())
		})
	})
})

type nopReader struct{}

func (nopReader) Read([]byte) (int, error) { return 0, io.EOF }
