package billing_test

import (
	"github.com/frahmantamala/petirpay/internal/billing"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("ComputeTotal", func() {
	It("multiplies usage by rate and adds the fee", func() {
		Expect(billing.ComputeTotal(100, decimal.NewFromInt(1500), 5000)).To(Equal(int64(155000)))
	})

	It("truncates fractional amounts", func() {
		Expect(billing.ComputeTotal(3, decimal.RequireFromString("1444.70"), 2500)).To(Equal(int64(6834)))
	})

	It("charges only the fee for zero usage", func() {
		Expect(billing.ComputeTotal(0, decimal.NewFromInt(1500), 2500)).To(Equal(int64(2500)))
	})
})

var _ = DescribeTable("PreviousPeriod",
	func(month, year, wantMonth, wantYear int) {
		m, y := billing.PreviousPeriod(month, year)
		Expect(m).To(Equal(wantMonth))
		Expect(y).To(Equal(wantYear))
	},
	Entry("mid year", 6, 2024, 5, 2024),
	Entry("january wraps to december", 1, 2024, 12, 2023),
	Entry("december", 12, 2024, 11, 2024),
)
