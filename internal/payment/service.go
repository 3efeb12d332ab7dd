package payment

import (
	"context"
	"io"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/petirpay/internal"
	"github.com/frahmantamala/petirpay/internal/billing"
	"github.com/frahmantamala/petirpay/internal/core/common/validation"
	paymentDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/payment"
	"github.com/frahmantamala/petirpay/internal/core/events"
	"github.com/frahmantamala/petirpay/internal/paymentmethod"
	"github.com/frahmantamala/petirpay/internal/storage"
)

type RepositoryAPI interface {
	Transaction(ctx context.Context, fn func(repo RepositoryAPI) error) error

	GetByID(ctx context.Context, id int64) (*paymentDatamodel.Payment, error)
	List(ctx context.Context, filter ListFilter) ([]*paymentDatamodel.Payment, int64, error)
	Create(ctx context.Context, p *paymentDatamodel.Payment) error
	// CountActive counts payments on the bill that were not rejected.
	CountActive(ctx context.Context, billID int64) (int64, error)
	// Verify stamps a verdict on a payment still awaiting verification and
	// reports whether it did.
	Verify(ctx context.Context, id int64, status string, verifierID int64, at time.Time, note *string) (bool, error)
	// TransitionBill moves a bill from one status to another and reports
	// whether the bill was in the expected status.
	TransitionBill(ctx context.Context, billID int64, from, to string, paidDate *time.Time) (bool, error)
}

type BillReader interface {
	Get(ctx context.Context, id int64, methodID *int64) (*billing.Bill, error)
	Derive(b *billing.Bill, fee int64)
}

type MethodLookup interface {
	Get(ctx context.Context, id int64) (*paymentmethod.PaymentMethod, error)
	RequireActive(ctx context.Context, id int64) (*paymentmethod.PaymentMethod, error)
}

type ImageStore interface {
	SaveImage(ctx context.Context, folder string, r io.Reader) (string, error)
	Delete(ctx context.Context, relPath string) error
	URL(relPath string) string
}

type Service struct {
	repo      RepositoryAPI
	bills     BillReader
	methods   MethodLookup
	images    ImageStore
	publisher events.Publisher
	now       func() time.Time
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, bills BillReader, methods MethodLookup, images ImageStore, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		bills:     bills,
		methods:   methods,
		images:    images,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

func (s *Service) present(row *paymentDatamodel.Payment) *Payment {
	p := FromDataModel(row)
	if p == nil {
		return nil
	}
	if p.ProofPath != nil && s.images != nil {
		p.ProofURL = s.images.URL(*p.ProofPath)
	}
	// The nested bill is priced with the fee of the method this payment used.
	if p.Bill != nil {
		fee := p.AdminFee
		if p.PaymentMethod != nil {
			fee = p.PaymentMethod.AdminFee
		}
		s.bills.Derive(p.Bill, fee)
	}
	return p
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "error", err, "event_type", e.EventType())
	}
}

// Submit moves the customer's unpaid bill to awaiting confirmation. The paid
// amount is the bill total with the chosen method's fee, derived here rather
// than trusted from the request.
func (s *Service) Submit(ctx context.Context, customerID int64, dto SubmitDTO, proof io.Reader) (*Payment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	bill, err := s.bills.Get(ctx, dto.BillID, &dto.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if bill.CustomerID != customerID {
		s.logger.Warn("payment submitted for another customer's bill", "customer_id", customerID, "bill_id", dto.BillID)
		return nil, errors.ErrBillNotFound
	}
	if bill.Status == billing.StatusPaid {
		return nil, errors.ErrBillNotPayable
	}

	method, err := s.methods.RequireActive(ctx, dto.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if method.RequiresProof() && proof == nil {
		return nil, errors.ErrProofRequired
	}

	var proofPath *string
	if proof != nil {
		rel, err := s.images.SaveImage(ctx, storage.FolderPaymentProofs, proof)
		if err != nil {
			return nil, err
		}
		proofPath = &rel
	}

	row := &paymentDatamodel.Payment{
		BillID:             bill.ID,
		PaymentMethodID:    method.ID,
		PaidAmount:         bill.Total,
		AdminFee:           method.AdminFee,
		ProofPath:          proofPath,
		VerificationStatus: StatusAwaiting,
		PaidAt:             s.now(),
	}

	err = s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		if err := s.ensureNoActivePayment(ctx, tx, bill.ID); err != nil {
			return err
		}
		if err := tx.Create(ctx, row); err != nil {
			return err
		}
		ok, err := tx.TransitionBill(ctx, bill.ID, billing.StatusUnpaid, billing.StatusAwaitingConfirmation, nil)
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrBillNotPayable
		}
		return nil
	})
	if err != nil {
		if proofPath != nil {
			_ = s.images.Delete(ctx, *proofPath)
		}
		s.logFailure("submit payment", err, "bill_id", bill.ID, "customer_id", customerID)
		return nil, err
	}

	s.logger.Info("payment submitted",
		"payment_id", row.ID, "bill_id", bill.ID, "customer_id", customerID,
		"paid_amount", row.PaidAmount, "payment_method_id", method.ID)
	s.publish(ctx, events.NewPaymentSubmittedEvent(customerID, row.ID, bill.ID, row.PaidAmount))

	return s.Get(ctx, row.ID)
}

// Record registers a payment taken by staff. It is approved on entry and the
// bill is settled in the same transaction.
func (s *Service) Record(ctx context.Context, staffID int64, dto RecordDTO) (*Payment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	bill, err := s.bills.Get(ctx, dto.BillID, &dto.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if bill.Status == billing.StatusPaid {
		return nil, errors.ErrBillNotPayable
	}
	method, err := s.methods.Get(ctx, dto.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	paidAt := now
	if dto.PaidAt != nil && !dto.PaidAt.IsZero() {
		paidAt = dto.PaidAt.UTC()
	}
	row := &paymentDatamodel.Payment{
		BillID:             bill.ID,
		PaymentMethodID:    method.ID,
		PaidAmount:         bill.Total,
		AdminFee:           method.AdminFee,
		VerificationStatus: StatusApproved,
		VerifiedBy:         &staffID,
		VerifiedAt:         &now,
		Note:               dto.Note,
		RecordedBy:         &staffID,
		PaidAt:             paidAt,
	}

	err = s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		if err := s.ensureNoActivePayment(ctx, tx, bill.ID); err != nil {
			return err
		}
		if err := tx.Create(ctx, row); err != nil {
			return err
		}
		ok, err := tx.TransitionBill(ctx, bill.ID, billing.StatusUnpaid, billing.StatusPaid, &paidAt)
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrBillNotPayable
		}
		return nil
	})
	if err != nil {
		s.logFailure("record payment", err, "bill_id", bill.ID, "staff_id", staffID)
		return nil, err
	}

	s.logger.Info("payment recorded", "payment_id", row.ID, "bill_id", bill.ID, "staff_id", staffID, "paid_amount", row.PaidAmount)
	s.publish(ctx, events.NewPaymentRecordedEvent(staffID, row.ID, bill.ID, row.PaidAmount))

	return s.Get(ctx, row.ID)
}

// Approve settles the bill behind an awaiting payment; the bill's paid date
// becomes the payment's paid_at.
func (s *Service) Approve(ctx context.Context, staffID, id int64, dto VerifyDTO) (*Payment, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.verify(ctx, staffID, id, StatusApproved, dto.notePtr(), func(p *paymentDatamodel.Payment) (string, string, *time.Time) {
		paidAt := p.PaidAt
		return billing.StatusAwaitingConfirmation, billing.StatusPaid, &paidAt
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment approved", "payment_id", id, "bill_id", row.BillID, "staff_id", staffID)
	s.publish(ctx, events.NewPaymentApprovedEvent(staffID, id, row.BillID, row.PaidAmount, dto.Note))
	return s.Get(ctx, id)
}

// Reject returns the bill to unpaid. A note explaining the rejection is
// mandatory and nothing changes without one.
func (s *Service) Reject(ctx context.Context, staffID, id int64, dto VerifyDTO) (*Payment, error) {
	dto.Normalize()
	if dto.Note == "" {
		return nil, errors.ErrRejectionNoteRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.verify(ctx, staffID, id, StatusRejected, dto.notePtr(), func(*paymentDatamodel.Payment) (string, string, *time.Time) {
		return billing.StatusAwaitingConfirmation, billing.StatusUnpaid, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment rejected", "payment_id", id, "bill_id", row.BillID, "staff_id", staffID)
	s.publish(ctx, events.NewPaymentRejectedEvent(staffID, id, row.BillID, row.PaidAmount, dto.Note))
	return s.Get(ctx, id)
}

type billTransition func(p *paymentDatamodel.Payment) (from, to string, paidDate *time.Time)

func (s *Service) verify(ctx context.Context, staffID, id int64, status string, note *string, next billTransition) (*paymentDatamodel.Payment, error) {
	var row *paymentDatamodel.Payment
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		p, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p.VerificationStatus != StatusAwaiting {
			return errors.ErrInvalidPaymentStatus
		}

		ok, err := tx.Verify(ctx, id, status, staffID, s.now(), note)
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrInvalidPaymentStatus
		}

		from, to, paidDate := next(p)
		ok, err = tx.TransitionBill(ctx, p.BillID, from, to, paidDate)
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrBillNotPayable
		}
		row = p
		return nil
	})
	if err != nil {
		s.logFailure("verify payment", err, "payment_id", id, "staff_id", staffID, "verdict", status)
		return nil, err
	}
	return row, nil
}

func (s *Service) ensureNoActivePayment(ctx context.Context, tx RepositoryAPI, billID int64) error {
	n, err := tx.CountActive(ctx, billID)
	if err != nil {
		return err
	}
	if n > 0 {
		return errors.ErrActivePaymentExists
	}
	return nil
}

// logFailure keeps business rejections at warn and real failures at error.
func (s *Service) logFailure(op string, err error, args ...interface{}) {
	args = append(args, "error", err)
	if _, ok := errors.IsAppError(err); ok {
		s.logger.Warn(op+" refused", args...)
		return
	}
	s.logger.Error(op+" failed", args...)
}

func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.present(row), nil
}

// GetForCustomer hides other customers' payments behind a not-found.
func (s *Service) GetForCustomer(ctx context.Context, customerID, id int64) (*Payment, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Bill == nil || p.Bill.CustomerID != customerID {
		return nil, errors.ErrPaymentNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Payment, int64, error) {
	if filter.Status != "" {
		v := validation.NewValidator()
		v.Field("status", filter.Status).OneOf(errors.ErrCodeValidationFailed, StatusAwaiting, StatusApproved, StatusRejected)
		if err := v.Validate(); err != nil {
			return nil, 0, err
		}
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list payments", "error", err)
		return nil, 0, err
	}

	out := make([]*Payment, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.present(row))
	}
	return out, total, nil
}

// History lists a customer's own payments, newest first.
func (s *Service) History(ctx context.Context, customerID int64, filter ListFilter) ([]*Payment, int64, error) {
	filter.CustomerID = &customerID
	return s.List(ctx, filter)
}
