package customer

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"

	errors "github.com/frahmantamala/petirpay/internal"
	customerDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/customer"
	"github.com/frahmantamala/petirpay/internal/storage"
	"github.com/frahmantamala/petirpay/internal/tariff"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*customerDatamodel.Customer, error)
	GetByEmail(ctx context.Context, email string) (*customerDatamodel.Customer, error)
	GetByMeterNumber(ctx context.Context, meterNumber string) (*customerDatamodel.Customer, error)
	List(ctx context.Context, filter ListFilter) ([]*customerDatamodel.Customer, int64, error)
	Create(ctx context.Context, c *customerDatamodel.Customer) error
	Update(ctx context.Context, c *customerDatamodel.Customer) error
	Delete(ctx context.Context, id int64) error
	CountLedgerRecords(ctx context.Context, id int64) (int64, error)
}

type TariffLookup interface {
	Get(ctx context.Context, id int64) (*tariff.Tariff, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type ImageStore interface {
	SaveImage(ctx context.Context, folder string, r io.Reader) (string, error)
	Delete(ctx context.Context, relPath string) error
	URL(relPath string) string
}

type Service struct {
	repo    RepositoryAPI
	tariffs TariffLookup
	hasher  PasswordHasher
	images  ImageStore
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, tariffs TariffLookup, hasher PasswordHasher, images ImageStore, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		tariffs: tariffs,
		hasher:  hasher,
		images:  images,
		logger:  logger,
	}
}

func (s *Service) present(row *customerDatamodel.Customer) *Customer {
	c := FromDataModel(row)
	if c != nil && c.PhotoPath != nil && s.images != nil {
		c.PhotoURL = s.images.URL(*c.PhotoPath)
	}
	return c
}

// Register creates a customer account. It serves both the public sign-up
// and staff creating accounts.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*Customer, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkTariff(ctx, dto.TariffID); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, dto.Email, dto.MeterNumber, 0); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash customer password", "error", err)
		return nil, errors.NewInternalError("failed to register customer", err)
	}

	row := &customerDatamodel.Customer{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		MeterNumber:  dto.MeterNumber,
		Address:      dto.Address,
		Phone:        dto.Phone,
		TariffID:     dto.TariffID,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create customer", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("customer registered", "customer_id", row.ID, "meter_number", row.MeterNumber, "tariff_id", row.TariffID)
	return s.Get(ctx, row.ID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.present(row), nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Customer, int64, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list customers", "error", err)
		return nil, 0, err
	}

	out := make([]*Customer, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.present(row))
	}
	return out, total, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateDTO) (*Customer, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTariff(ctx, dto.TariffID); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, dto.Email, dto.MeterNumber, id); err != nil {
		return nil, err
	}

	row.Name = dto.Name
	row.Email = dto.Email
	row.MeterNumber = dto.MeterNumber
	row.Address = dto.Address
	row.Phone = dto.Phone
	row.TariffID = dto.TariffID
	row.Tariff = nil
	if dto.Password != "" {
		if row.PasswordHash, err = s.hasher.Hash(dto.Password); err != nil {
			return nil, errors.NewInternalError("failed to update customer", err)
		}
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update customer", "error", err, "customer_id", id)
		return nil, err
	}

	s.logger.Info("customer updated", "customer_id", id)
	return s.Get(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, dto ProfileDTO) (*Customer, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, dto.Email, row.MeterNumber, id); err != nil {
		return nil, err
	}

	row.Name = dto.Name
	row.Email = dto.Email
	row.Address = dto.Address
	row.Phone = dto.Phone
	row.Tariff = nil
	if dto.Password != "" {
		if row.PasswordHash, err = s.hasher.Hash(dto.Password); err != nil {
			return nil, errors.NewInternalError("failed to update profile", err)
		}
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update profile", "error", err, "customer_id", id)
		return nil, err
	}

	s.logger.Info("customer profile updated", "customer_id", id)
	return s.Get(ctx, id)
}

// UploadPhoto replaces the profile photo. The old file is removed only after
// the new path is persisted.
func (s *Service) UploadPhoto(ctx context.Context, id int64, r io.Reader) (*Customer, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rel, err := s.images.SaveImage(ctx, storage.FolderCustomerPhotos, r)
	if err != nil {
		s.logger.Warn("customer photo upload failed", "error", err, "customer_id", id)
		return nil, err
	}

	previous := row.PhotoPath
	row.PhotoPath = &rel
	row.Tariff = nil
	if err := s.repo.Update(ctx, row); err != nil {
		_ = s.images.Delete(ctx, rel)
		s.logger.Error("failed to store customer photo path", "error", err, "customer_id", id)
		return nil, err
	}

	if previous != nil {
		if err := s.images.Delete(ctx, *previous); err != nil {
			s.logger.Warn("failed to remove previous customer photo", "error", err, "path", *previous)
		}
	}

	s.logger.Info("customer photo updated", "customer_id", id, "path", rel)
	return s.Get(ctx, id)
}

// Delete removes a customer that owns no usage or bill records.
func (s *Service) Delete(ctx context.Context, id int64) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.repo.CountLedgerRecords(ctx, id)
	if err != nil {
		s.logger.Error("failed to count customer ledger records", "error", err, "customer_id", id)
		return err
	}
	if n > 0 {
		s.logger.Warn("customer delete refused: ledger records exist", "customer_id", id, "records", n)
		return errors.ErrCustomerInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete customer", "error", err, "customer_id", id)
		return err
	}

	if row.PhotoPath != nil && s.images != nil {
		if err := s.images.Delete(ctx, *row.PhotoPath); err != nil {
			s.logger.Warn("failed to remove customer photo", "error", err, "customer_id", id)
		}
	}

	s.logger.Info("customer deleted", "customer_id", id)
	return nil
}

func (s *Service) checkTariff(ctx context.Context, tariffID int64) error {
	if _, err := s.tariffs.Get(ctx, tariffID); err != nil {
		if stderrors.Is(err, errors.ErrTariffNotFound) {
			return errors.NewValidationFieldError("tariff_id", "tariff does not exist", errors.ErrCodeTariffNotFound)
		}
		return err
	}
	return nil
}

func (s *Service) ensureUnique(ctx context.Context, email, meterNumber string, selfID int64) error {
	byEmail, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !stderrors.Is(err, errors.ErrCustomerNotFound) {
		return err
	}
	if byEmail != nil && byEmail.ID != selfID {
		return errors.ErrDuplicateCustomer
	}

	byMeter, err := s.repo.GetByMeterNumber(ctx, meterNumber)
	if err != nil && !stderrors.Is(err, errors.ErrCustomerNotFound) {
		return err
	}
	if byMeter != nil && byMeter.ID != selfID {
		return errors.ErrDuplicateCustomer
	}
	return nil
}
