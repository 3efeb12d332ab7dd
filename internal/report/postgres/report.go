package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/petirpay/internal/billing"
	"github.com/frahmantamala/petirpay/internal/payment"
	"github.com/frahmantamala/petirpay/internal/report"
	"github.com/jmoiron/sqlx"
)

// ReportRepository runs the read-model queries with sqlx. Queries are written
// with ? placeholders and rebound for the driver in use.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) report.RepositoryAPI {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) StatusCounts(ctx context.Context) ([]report.StatusCountRow, error) {
	var rows []report.StatusCountRow
	err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS n FROM bills GROUP BY status`)
	return rows, err
}

func (r *ReportRepository) ApprovedPayments(ctx context.Context, from, to time.Time) ([]report.PaymentRow, error) {
	query := r.db.Rebind(`
		SELECT paid_amount, paid_at
		FROM payments
		WHERE verification_status = ? AND paid_at >= ? AND paid_at < ?`)

	var rows []report.PaymentRow
	err := r.db.SelectContext(ctx, &rows, query, payment.StatusApproved, from, to)
	return rows, err
}

func (r *ReportRepository) PaidBills(ctx context.Context, from, to time.Time) ([]report.PaidBillRow, error) {
	query := r.db.Rebind(`
		SELECT b.usage_kwh, b.paid_date, t.rate_per_kwh
		FROM bills b
		JOIN customers c ON c.id = b.customer_id
		LEFT JOIN tariffs t ON t.id = c.tariff_id
		WHERE b.status = ? AND b.paid_date >= ? AND b.paid_date < ?`)

	var rows []report.PaidBillRow
	err := r.db.SelectContext(ctx, &rows, query, billing.StatusPaid, from, to)
	return rows, err
}

func (r *ReportRepository) BillsForPeriod(ctx context.Context, month, year int) ([]report.ExportRow, error) {
	query := r.db.Rebind(`
		SELECT b.id, c.name AS customer_name, c.meter_number, t.power_class,
		       b.usage_kwh, t.rate_per_kwh, b.status, b.paid_date
		FROM bills b
		JOIN customers c ON c.id = b.customer_id
		LEFT JOIN tariffs t ON t.id = c.tariff_id
		WHERE b.month = ? AND b.year = ?
		ORDER BY c.name, b.id`)

	var rows []report.ExportRow
	err := r.db.SelectContext(ctx, &rows, query, month, year)
	return rows, err
}
