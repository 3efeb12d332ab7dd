package staff

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/petirpay/internal"
	staffDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/staff"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*staffDatamodel.Account, error)
	GetByEmail(ctx context.Context, email string) (*staffDatamodel.Account, error)
	List(ctx context.Context, limit, offset int) ([]*staffDatamodel.Account, int64, error)
	Create(ctx context.Context, a *staffDatamodel.Account) error
	Update(ctx context.Context, a *staffDatamodel.Account) error
	Delete(ctx context.Context, id int64) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Service struct {
	repo   RepositoryAPI
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Account, int64, error) {
	rows, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list staff accounts", "error", err)
		return nil, 0, err
	}

	out := make([]*Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Account, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

// Create always makes a regular staff account. Administrators are only
// provisioned by the seed command.
func (s *Service) Create(ctx context.Context, dto CreateDTO) (*Account, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, dto.Email, 0); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	row := &staffDatamodel.Account{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         RoleStaff,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create staff account", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("staff account created", "staff_id", row.ID)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateDTO) (*Account, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.Role == RoleAdministrator {
		s.logger.Warn("refused to modify administrator account", "staff_id", id)
		return nil, errors.ErrStaffProtected
	}
	if err := s.ensureEmailFree(ctx, dto.Email, id); err != nil {
		return nil, err
	}

	row.Name = dto.Name
	row.Email = dto.Email
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}
	if dto.Password != "" {
		hash, err := s.hasher.Hash(dto.Password)
		if err != nil {
			return nil, errors.NewInternalError("failed to hash password", err)
		}
		row.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update staff account", "error", err, "staff_id", id)
		return nil, err
	}

	s.logger.Info("staff account updated", "staff_id", id, "active", row.IsActive)
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if row.Role == RoleAdministrator {
		s.logger.Warn("refused to delete administrator account", "staff_id", id)
		return errors.ErrStaffProtected
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete staff account", "error", err, "staff_id", id)
		return err
	}

	s.logger.Info("staff account deleted", "staff_id", id)
	return nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, selfID int64) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != selfID:
		return errors.ErrDuplicateStaff
	case err == nil, stderrors.Is(err, errors.ErrStaffNotFound):
		return nil
	default:
		return err
	}
}
