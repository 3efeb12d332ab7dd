package paymentmethod

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"

	errors "github.com/frahmantamala/petirpay/internal"
	paymentmethodDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/paymentmethod"
	"github.com/frahmantamala/petirpay/internal/storage"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context, activeOnly bool) ([]*paymentmethodDatamodel.PaymentMethod, error)
	GetByID(ctx context.Context, id int64) (*paymentmethodDatamodel.PaymentMethod, error)
	CheapestActive(ctx context.Context) (*paymentmethodDatamodel.PaymentMethod, error)
	Create(ctx context.Context, m *paymentmethodDatamodel.PaymentMethod) error
	Update(ctx context.Context, m *paymentmethodDatamodel.PaymentMethod) error
	Delete(ctx context.Context, id int64) error
	CountPayments(ctx context.Context, id int64) (int64, error)
}

type ImageStore interface {
	SaveImage(ctx context.Context, folder string, r io.Reader) (string, error)
	Delete(ctx context.Context, relPath string) error
	URL(relPath string) string
}

type Service struct {
	repo       RepositoryAPI
	images     ImageStore
	defaultFee int64
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, images ImageStore, defaultFee int64, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		images:     images,
		defaultFee: defaultFee,
		logger:     logger,
	}
}

func (s *Service) present(row *paymentmethodDatamodel.PaymentMethod) *PaymentMethod {
	m := FromDataModel(row)
	if m != nil && m.LogoPath != nil && s.images != nil {
		m.LogoURL = s.images.URL(*m.LogoPath)
	}
	return m
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*PaymentMethod, error) {
	rows, err := s.repo.GetAll(ctx, activeOnly)
	if err != nil {
		s.logger.Error("failed to list payment methods", "error", err)
		return nil, err
	}

	out := make([]*PaymentMethod, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.present(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*PaymentMethod, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.present(row), nil
}

// RequireActive returns the method only if customers may currently pay with it.
func (s *Service) RequireActive(ctx context.Context, id int64) (*PaymentMethod, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, errors.ErrPaymentMethodInactive
	}
	return m, nil
}

func (s *Service) Create(ctx context.Context, dto PaymentMethodDTO) (*PaymentMethod, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &paymentmethodDatamodel.PaymentMethod{
		Name:          dto.Name,
		Kind:          dto.Kind,
		AccountNumber: dto.AccountNumber,
		AccountHolder: dto.AccountHolder,
		AdminFee:      dto.AdminFee,
		IsActive:      dto.IsActive == nil || *dto.IsActive,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create payment method", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("payment method created", "payment_method_id", row.ID, "kind", row.Kind, "admin_fee", row.AdminFee)
	return s.present(row), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto PaymentMethodDTO) (*PaymentMethod, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	row.Name = dto.Name
	row.Kind = dto.Kind
	row.AccountNumber = dto.AccountNumber
	row.AccountHolder = dto.AccountHolder
	row.AdminFee = dto.AdminFee
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update payment method", "error", err, "payment_method_id", id)
		return nil, err
	}

	s.logger.Info("payment method updated", "payment_method_id", id, "admin_fee", row.AdminFee, "active", row.IsActive)
	return s.present(row), nil
}

func (s *Service) UploadLogo(ctx context.Context, id int64, r io.Reader) (*PaymentMethod, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rel, err := s.images.SaveImage(ctx, storage.FolderPaymentMethods, r)
	if err != nil {
		return nil, err
	}

	previous := row.LogoPath
	row.LogoPath = &rel
	if err := s.repo.Update(ctx, row); err != nil {
		_ = s.images.Delete(ctx, rel)
		s.logger.Error("failed to store payment method logo", "error", err, "payment_method_id", id)
		return nil, err
	}
	if previous != nil {
		if err := s.images.Delete(ctx, *previous); err != nil {
			s.logger.Warn("failed to remove previous logo", "error", err, "path", *previous)
		}
	}

	return s.present(row), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.repo.CountPayments(ctx, id)
	if err != nil {
		s.logger.Error("failed to count payments for method", "error", err, "payment_method_id", id)
		return err
	}
	if n > 0 {
		s.logger.Warn("payment method delete refused: referenced by payments", "payment_method_id", id, "payments", n)
		return errors.ErrPaymentMethodInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete payment method", "error", err, "payment_method_id", id)
		return err
	}
	if row.LogoPath != nil && s.images != nil {
		_ = s.images.Delete(ctx, *row.LogoPath)
	}

	s.logger.Info("payment method deleted", "payment_method_id", id)
	return nil
}

// AdminFee resolves the fee added to a bill total: the chosen method's fee,
// otherwise the cheapest active method, otherwise the configured default.
// An unknown method id falls through to the next rule.
func (s *Service) AdminFee(ctx context.Context, methodID *int64) (int64, error) {
	if methodID != nil {
		row, err := s.repo.GetByID(ctx, *methodID)
		switch {
		case err == nil:
			return row.AdminFee, nil
		case stderrors.Is(err, errors.ErrPaymentMethodNotFound):
			s.logger.Warn("admin fee: payment method not found, falling back", "payment_method_id", *methodID)
		default:
			return 0, err
		}
	}

	cheapest, err := s.repo.CheapestActive(ctx)
	switch {
	case err == nil:
		return cheapest.AdminFee, nil
	case stderrors.Is(err, errors.ErrPaymentMethodNotFound):
		return s.defaultFee, nil
	default:
		return 0, err
	}
}
