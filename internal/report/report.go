package report

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SourcePayments = "payments"
	SourceEstimate = "estimate"
)

// StatusCounts is the number of bills in each lifecycle state.
type StatusCounts struct {
	Unpaid               int64 `json:"unpaid"`
	AwaitingConfirmation int64 `json:"awaiting_confirmation"`
	Paid                 int64 `json:"paid"`
	Total                int64 `json:"total"`
}

// Revenue is an amount for one period and where it came from: summed
// approved payments, or an estimate derived from paid bills when the period
// has no payment rows.
type Revenue struct {
	Amount int64  `json:"amount"`
	Source string `json:"source"`
}

type MonthlyRevenue struct {
	Month  int    `json:"month"`
	Year   int    `json:"year"`
	Amount int64  `json:"amount"`
	Source string `json:"source"`
	Target int64  `json:"target"`
}

type Dashboard struct {
	Bills         StatusCounts     `json:"bills"`
	RevenueToday  Revenue          `json:"revenue_today"`
	RevenueMonth  Revenue          `json:"revenue_month"`
	Series        []MonthlyRevenue `json:"series"`
	MonthlyTarget int64            `json:"monthly_target"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// PaymentRow is one approved payment as seen by the read model.
type PaymentRow struct {
	PaidAmount int64     `db:"paid_amount"`
	PaidAt     time.Time `db:"paid_at"`
}

// PaidBillRow carries what is needed to re-derive a paid bill's total.
// Rate is null when the customer has no tariff.
type PaidBillRow struct {
	UsageKWh int64               `db:"usage_kwh"`
	PaidDate time.Time           `db:"paid_date"`
	Rate     decimal.NullDecimal `db:"rate_per_kwh"`
}

type StatusCountRow struct {
	Status string `db:"status"`
	Count  int64  `db:"n"`
}

// ExportRow is one bill line in the monthly spreadsheet.
type ExportRow struct {
	BillID       int64               `db:"id"`
	CustomerName string              `db:"customer_name"`
	MeterNumber  string              `db:"meter_number"`
	PowerClass   sql.NullString      `db:"power_class"`
	UsageKWh     int64               `db:"usage_kwh"`
	Rate         decimal.NullDecimal `db:"rate_per_kwh"`
	Status       string              `db:"status"`
	PaidDate     sql.NullTime        `db:"paid_date"`
}

func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
