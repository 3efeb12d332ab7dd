package tariff

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/petirpay/internal"
	tariffDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/tariff"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*tariffDatamodel.Tariff, error)
	GetByID(ctx context.Context, id int64) (*tariffDatamodel.Tariff, error)
	GetByPowerClass(ctx context.Context, powerClass string) (*tariffDatamodel.Tariff, error)
	Create(ctx context.Context, t *tariffDatamodel.Tariff) error
	Update(ctx context.Context, t *tariffDatamodel.Tariff) error
	Delete(ctx context.Context, id int64) error
	CountCustomers(ctx context.Context, id int64) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*Tariff, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list tariffs", "error", err)
		return nil, err
	}

	tariffs := make([]*Tariff, 0, len(rows))
	for _, row := range rows {
		tariffs = append(tariffs, FromDataModel(row))
	}
	return tariffs, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Tariff, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto TariffDTO) (*Tariff, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureUniquePowerClass(ctx, dto.PowerClass, 0); err != nil {
		return nil, err
	}

	row := &tariffDatamodel.Tariff{
		PowerClass:  dto.PowerClass,
		RatePerKWh:  dto.RatePerKWh,
		Description: dto.Description,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create tariff", "error", err, "power_class", dto.PowerClass)
		return nil, err
	}

	s.logger.Info("tariff created", "tariff_id", row.ID, "power_class", row.PowerClass, "rate", row.RatePerKWh.String())
	return FromDataModel(row), nil
}

// Update changes the rate in place. Totals of existing bills follow the new
// rate because they are derived on every read.
func (s *Service) Update(ctx context.Context, id int64, dto TariffDTO) (*Tariff, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUniquePowerClass(ctx, dto.PowerClass, id); err != nil {
		return nil, err
	}

	row.PowerClass = dto.PowerClass
	row.RatePerKWh = dto.RatePerKWh
	row.Description = dto.Description
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update tariff", "error", err, "tariff_id", id)
		return nil, err
	}

	s.logger.Info("tariff updated", "tariff_id", id, "rate", row.RatePerKWh.String())
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	n, err := s.repo.CountCustomers(ctx, id)
	if err != nil {
		s.logger.Error("failed to count tariff customers", "error", err, "tariff_id", id)
		return err
	}
	if n > 0 {
		s.logger.Warn("tariff delete refused: still assigned", "tariff_id", id, "customers", n)
		return errors.ErrTariffInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete tariff", "error", err, "tariff_id", id)
		return err
	}

	s.logger.Info("tariff deleted", "tariff_id", id)
	return nil
}

func (s *Service) ensureUniquePowerClass(ctx context.Context, powerClass string, selfID int64) error {
	existing, err := s.repo.GetByPowerClass(ctx, powerClass)
	if err != nil && !stderrors.Is(err, errors.ErrTariffNotFound) {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return errors.ErrDuplicateTariff
	}
	return nil
}
