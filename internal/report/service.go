package report

import (
	"context"
	"io"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/petirpay/internal"
	"github.com/frahmantamala/petirpay/internal/billing"
	"github.com/frahmantamala/petirpay/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// RepositoryAPI is read-only. Time ranges are half-open [from, to).
type RepositoryAPI interface {
	StatusCounts(ctx context.Context) ([]StatusCountRow, error)
	ApprovedPayments(ctx context.Context, from, to time.Time) ([]PaymentRow, error)
	PaidBills(ctx context.Context, from, to time.Time) ([]PaidBillRow, error)
	BillsForPeriod(ctx context.Context, month, year int) ([]ExportRow, error)
}

// FeeResolver resolves the admin fee the same way bill reads do.
type FeeResolver interface {
	AdminFee(ctx context.Context, methodID *int64) (int64, error)
}

const seriesMonths = 12

type Service struct {
	repo        RepositoryAPI
	fees        FeeResolver
	cfg         errors.BillingConfig
	defaultRate decimal.Decimal
	loc         *time.Location
	now         func() time.Time
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, fees FeeResolver, cfg errors.BillingConfig, logger *slog.Logger) *Service {
	rate, err := decimal.NewFromString(cfg.DefaultRatePerKWh)
	if err != nil {
		logger.Warn("invalid default rate, using built-in value", "value", cfg.DefaultRatePerKWh, "error", err)
		rate = decimal.RequireFromString(errors.DefaultRatePerKWh)
	}
	return &Service{
		repo:        repo,
		fees:        fees,
		cfg:         cfg,
		defaultRate: rate,
		loc:         cfg.Location(),
		now:         time.Now,
		logger:      logger,
	}
}

// WithClock replaces the time source used to place "today" and "this month".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now().In(s.loc)

	counts, err := s.statusCounts(ctx)
	if err != nil {
		return nil, err
	}

	today := startOfDay(now)
	revenueToday, err := s.revenue(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	month := startOfMonth(now)
	revenueMonth, err := s.revenue(ctx, month, month.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	series, err := s.Series(ctx)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Bills:         counts,
		RevenueToday:  revenueToday,
		RevenueMonth:  revenueMonth,
		Series:        series,
		MonthlyTarget: s.cfg.MonthlyTarget,
		GeneratedAt:   now,
	}, nil
}

func (s *Service) statusCounts(ctx context.Context) (StatusCounts, error) {
	rows, err := s.repo.StatusCounts(ctx)
	if err != nil {
		s.logger.Error("failed to count bills by status", "error", err)
		return StatusCounts{}, err
	}

	var out StatusCounts
	for _, row := range rows {
		switch row.Status {
		case billing.StatusUnpaid:
			out.Unpaid = row.Count
		case billing.StatusAwaitingConfirmation:
			out.AwaitingConfirmation = row.Count
		case billing.StatusPaid:
			out.Paid = row.Count
		}
		out.Total += row.Count
	}
	return out, nil
}

// revenue sums approved payments in [from, to). With no payment rows at all
// it falls back to the derived totals of bills paid in the range.
func (s *Service) revenue(ctx context.Context, from, to time.Time) (Revenue, error) {
	payments, err := s.repo.ApprovedPayments(ctx, from.UTC(), to.UTC())
	if err != nil {
		s.logger.Error("failed to load approved payments", "from", from, "to", to, "error", err)
		return Revenue{}, err
	}
	if len(payments) > 0 {
		var sum int64
		for _, p := range payments {
			sum += p.PaidAmount
		}
		return Revenue{Amount: sum, Source: SourcePayments}, nil
	}

	bills, err := s.repo.PaidBills(ctx, from.UTC(), to.UTC())
	if err != nil {
		s.logger.Error("failed to load paid bills", "from", from, "to", to, "error", err)
		return Revenue{}, err
	}
	var sum int64
	for _, b := range bills {
		sum += s.estimate(b)
	}
	return Revenue{Amount: sum, Source: SourceEstimate}, nil
}

// Series returns the trailing twelve months, oldest first, ending with the
// current month. Each month picks its own source independently.
func (s *Service) Series(ctx context.Context) ([]MonthlyRevenue, error) {
	end := startOfMonth(s.now().In(s.loc)).AddDate(0, 1, 0)
	start := end.AddDate(0, -seriesMonths, 0)

	payments, err := s.repo.ApprovedPayments(ctx, start.UTC(), end.UTC())
	if err != nil {
		s.logger.Error("failed to load approved payments for series", "error", err)
		return nil, err
	}
	bills, err := s.repo.PaidBills(ctx, start.UTC(), end.UTC())
	if err != nil {
		s.logger.Error("failed to load paid bills for series", "error", err)
		return nil, err
	}

	paid := make(map[int]int64)
	seen := make(map[int]bool)
	for _, p := range payments {
		k := monthKey(p.PaidAt.In(s.loc))
		paid[k] += p.PaidAmount
		seen[k] = true
	}
	estimated := make(map[int]int64)
	for _, b := range bills {
		estimated[monthKey(b.PaidDate.In(s.loc))] += s.estimate(b)
	}

	out := make([]MonthlyRevenue, 0, seriesMonths)
	for m := start; m.Before(end); m = m.AddDate(0, 1, 0) {
		k := monthKey(m)
		entry := MonthlyRevenue{Month: int(m.Month()), Year: m.Year(), Target: s.cfg.MonthlyTarget}
		if seen[k] {
			entry.Amount, entry.Source = paid[k], SourcePayments
		} else {
			entry.Amount, entry.Source = estimated[k], SourceEstimate
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *Service) rateOf(rate decimal.NullDecimal) decimal.Decimal {
	if rate.Valid {
		return rate.Decimal
	}
	return s.defaultRate
}

func (s *Service) estimate(b PaidBillRow) int64 {
	return billing.ComputeTotal(b.UsageKWh, s.rateOf(b.Rate), s.cfg.DefaultAdminFee)
}

// Export writes the bills of one period as an xlsx workbook.
func (s *Service) Export(ctx context.Context, month, year int, w io.Writer) error {
	if err := validation.ValidatePeriod(month, year, s.cfg.MinYear, s.cfg.MaxYear); err != nil {
		return err
	}

	rows, err := s.repo.BillsForPeriod(ctx, month, year)
	if err != nil {
		s.logger.Error("failed to load bills for export", "month", month, "year", year, "error", err)
		return err
	}

	fee := s.cfg.DefaultAdminFee
	if s.fees != nil {
		if fee, err = s.fees.AdminFee(ctx, nil); err != nil {
			s.logger.Error("failed to resolve admin fee for export", "error", err)
			return err
		}
	}

	book, err := s.workbook(month, year, fee, rows)
	if err != nil {
		s.logger.Error("failed to build export workbook", "month", month, "year", year, "error", err)
		return errors.NewInternalError("failed to build export", err)
	}
	defer book.Close()

	if _, err := book.WriteTo(w); err != nil {
		return err
	}

	s.logger.Info("bills exported", "month", month, "year", year, "rows", len(rows))
	return nil
}
