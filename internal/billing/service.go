package billing

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/petirpay/internal"
	billingDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/billing"
	"github.com/frahmantamala/petirpay/internal/core/events"
	"github.com/frahmantamala/petirpay/internal/customer"
	"github.com/shopspring/decimal"
)

type RepositoryAPI interface {
	// Transaction runs fn against a repository bound to a single database
	// transaction; any error rolls the whole unit back.
	Transaction(ctx context.Context, fn func(repo RepositoryAPI) error) error

	BillExists(ctx context.Context, customerID int64, month, year int) (bool, error)
	FindUsage(ctx context.Context, customerID int64, month, year int) (*billingDatamodel.Usage, error)
	CreateUsage(ctx context.Context, u *billingDatamodel.Usage) error
	CreateBill(ctx context.Context, b *billingDatamodel.Bill) error
	GetBill(ctx context.Context, id int64) (*billingDatamodel.Bill, error)
	ListBills(ctx context.Context, filter ListFilter) ([]*billingDatamodel.Bill, int64, error)
	DeleteBill(ctx context.Context, id int64) error
	DeleteUsage(ctx context.Context, id int64) error
	CountPayments(ctx context.Context, billID int64) (int64, error)
}

type CustomerLookup interface {
	Get(ctx context.Context, id int64) (*customer.Customer, error)
}

type FeeResolver interface {
	AdminFee(ctx context.Context, methodID *int64) (int64, error)
}

type Service struct {
	repo        RepositoryAPI
	customers   CustomerLookup
	fees        FeeResolver
	publisher   events.Publisher
	minYear     int
	maxYear     int
	defaultRate decimal.Decimal
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, customers CustomerLookup, fees FeeResolver, publisher events.Publisher, cfg errors.BillingConfig, logger *slog.Logger) *Service {
	rate, err := decimal.NewFromString(cfg.DefaultRatePerKWh)
	if err != nil || !rate.IsPositive() {
		rate, _ = decimal.NewFromString(errors.DefaultRatePerKWh)
	}
	minYear, maxYear := cfg.MinYear, cfg.MaxYear
	if minYear == 0 && maxYear == 0 {
		minYear, maxYear = errors.DefaultMinYear, errors.DefaultMaxYear
	}

	return &Service{
		repo:        repo,
		customers:   customers,
		fees:        fees,
		publisher:   publisher,
		minYear:     minYear,
		maxYear:     maxYear,
		defaultRate: rate,
		logger:      logger,
	}
}

// CreateBill records a month of consumption for a customer. The duplicate
// check, opening reading lookup and both inserts share one transaction, and
// the unique indexes on (customer, month, year) catch concurrent writers.
func (s *Service) CreateBill(ctx context.Context, actorID int64, dto CreateBillDTO) (*Bill, error) {
	if err := dto.Validate(s.minYear, s.maxYear); err != nil {
		return nil, err
	}
	if err := s.requireCustomer(ctx, dto.CustomerID); err != nil {
		return nil, err
	}

	row := &billingDatamodel.Bill{
		CustomerID: dto.CustomerID,
		Month:      dto.Month,
		Year:       dto.Year,
		UsageKWh:   dto.UsageKWh,
		Status:     StatusUnpaid,
	}
	if actorID > 0 {
		row.CreatedBy = &actorID
	}

	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		exists, err := tx.BillExists(ctx, dto.CustomerID, dto.Month, dto.Year)
		if err != nil {
			return err
		}
		if exists {
			return errors.ErrDuplicatePeriod
		}

		if dto.UsageKWh == 0 {
			return tx.CreateBill(ctx, row)
		}

		opening, _, err := s.closingReading(ctx, tx, dto.CustomerID, dto.Month, dto.Year)
		if err != nil {
			return err
		}
		usage := &billingDatamodel.Usage{
			CustomerID: dto.CustomerID,
			Month:      dto.Month,
			Year:       dto.Year,
			MeterStart: opening,
			MeterEnd:   opening + dto.UsageKWh,
		}
		if err := tx.CreateUsage(ctx, usage); err != nil {
			return err
		}
		row.UsageID = &usage.ID
		return tx.CreateBill(ctx, row)
	})
	if err != nil {
		if stderrors.Is(err, errors.ErrDuplicatePeriod) {
			s.logger.Warn("bill already exists for period",
				"customer_id", dto.CustomerID, "month", dto.Month, "year", dto.Year)
			return nil, errors.ErrDuplicatePeriod
		}
		s.logger.Error("failed to create bill", "error", err,
			"customer_id", dto.CustomerID, "month", dto.Month, "year", dto.Year)
		return nil, err
	}

	s.logger.Info("bill created",
		"bill_id", row.ID, "customer_id", row.CustomerID,
		"month", row.Month, "year", row.Year, "usage_kwh", row.UsageKWh)

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.NewBillCreatedEvent(actorID, row.ID, row.CustomerID, row.Month, row.Year, row.UsageKWh))
	}

	return s.Get(ctx, row.ID, nil)
}

// PreviousReading is the read-only preview of the opening reading a new bill
// for (month, year) would start from.
func (s *Service) PreviousReading(ctx context.Context, customerID int64, month, year int) (*PreviousReading, error) {
	if err := validatePeriodQuery(customerID, month, year, s.minYear, s.maxYear); err != nil {
		return nil, err
	}
	if err := s.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	reading, found, err := s.closingReading(ctx, s.repo, customerID, month, year)
	if err != nil {
		s.logger.Error("failed to look up previous reading", "error", err, "customer_id", customerID)
		return nil, err
	}

	pm, py := PreviousPeriod(month, year)
	return &PreviousReading{
		CustomerID: customerID,
		Month:      pm,
		Year:       py,
		Reading:    reading,
		Found:      found,
	}, nil
}

func (s *Service) closingReading(ctx context.Context, repo RepositoryAPI, customerID int64, month, year int) (int64, bool, error) {
	pm, py := PreviousPeriod(month, year)
	prev, err := repo.FindUsage(ctx, customerID, pm, py)
	if err != nil {
		return 0, false, err
	}
	if prev == nil {
		return 0, false, nil
	}
	return prev.MeterEnd, true, nil
}

// Rate is the customer's tariff rate, or the configured default when the
// customer carries no tariff.
func (s *Service) Rate(c *customer.Customer) decimal.Decimal {
	if c != nil && c.Tariff != nil && c.Tariff.RatePerKWh.IsPositive() {
		return c.Tariff.RatePerKWh
	}
	return s.defaultRate
}

// Total fills the derived amounts on b from current tariff and fee state.
func (s *Service) Total(ctx context.Context, b *Bill, methodID *int64) error {
	fee, err := s.fees.AdminFee(ctx, methodID)
	if err != nil {
		return err
	}
	s.Derive(b, fee)
	return nil
}

// Derive fills the derived amounts on b for an already resolved fee. b must
// carry its customer for the tariff rate to apply.
func (s *Service) Derive(b *Bill, fee int64) {
	b.RatePerKWh = s.Rate(b.Customer)
	b.AdminFee = fee
	b.Total = ComputeTotal(b.UsageKWh, b.RatePerKWh, fee)
}

// Get loads a bill with its customer and tariff. methodID, when set, previews
// the total with that payment method's fee.
func (s *Service) Get(ctx context.Context, id int64, methodID *int64) (*Bill, error) {
	row, err := s.repo.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}

	b := FromDataModel(row)
	if err := s.Total(ctx, b, methodID); err != nil {
		s.logger.Error("failed to derive bill total", "error", err, "bill_id", id)
		return nil, err
	}
	return b, nil
}

// GetForCustomer hides bills owned by other customers behind a not-found.
func (s *Service) GetForCustomer(ctx context.Context, customerID, id int64, methodID *int64) (*Bill, error) {
	b, err := s.Get(ctx, id, methodID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		s.logger.Warn("customer requested a bill they do not own", "customer_id", customerID, "bill_id", id)
		return nil, errors.ErrBillNotFound
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Bill, int64, error) {
	if err := validateStatus(filter.Status); err != nil {
		return nil, 0, err
	}

	rows, total, err := s.repo.ListBills(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list bills", "error", err)
		return nil, 0, err
	}

	fee, err := s.fees.AdminFee(ctx, nil)
	if err != nil {
		return nil, 0, err
	}

	bills := make([]*Bill, 0, len(rows))
	for _, row := range rows {
		b := FromDataModel(row)
		s.Derive(b, fee)
		bills = append(bills, b)
	}
	return bills, total, nil
}

func (s *Service) ListForCustomer(ctx context.Context, customerID int64, filter ListFilter) ([]*Bill, int64, error) {
	filter.CustomerID = &customerID
	filter.Query = ""
	return s.List(ctx, filter)
}

// Delete removes an unpaid bill that never received a payment, along with
// the usage it was created from.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	var customerID int64
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		row, err := tx.GetBill(ctx, id)
		if err != nil {
			return err
		}
		customerID = row.CustomerID

		if row.Status != StatusUnpaid {
			return errors.ErrBillNotDeletable
		}
		n, err := tx.CountPayments(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return errors.ErrBillNotDeletable
		}

		if err := tx.DeleteBill(ctx, id); err != nil {
			return err
		}
		if row.UsageID != nil {
			return tx.DeleteUsage(ctx, *row.UsageID)
		}
		return nil
	})
	if err != nil {
		if _, ok := errors.IsAppError(err); ok {
			s.logger.Warn("bill delete refused", "error", err, "bill_id", id)
		} else {
			s.logger.Error("failed to delete bill", "error", err, "bill_id", id)
		}
		return err
	}

	s.logger.Info("bill deleted", "bill_id", id, "customer_id", customerID)
	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.NewBillDeletedEvent(actorID, id, customerID))
	}
	return nil
}

func (s *Service) requireCustomer(ctx context.Context, id int64) error {
	if _, err := s.customers.Get(ctx, id); err != nil {
		if stderrors.Is(err, errors.ErrCustomerNotFound) {
			return errors.NewValidationFieldError("customer_id", "customer does not exist", errors.ErrCodeCustomerNotFound)
		}
		return err
	}
	return nil
}
