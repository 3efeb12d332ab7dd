package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/petirpay/internal"
)

// RepositoryAPI resolves login credentials for both account kinds. Lookups
// return nil, nil when no account matches.
type RepositoryAPI interface {
	GetCredentialByEmail(ctx context.Context, kind internal.PrincipalKind, email string) (*Credential, error)
	GetCredentialByID(ctx context.Context, kind internal.PrincipalKind, id int64) (*Credential, error)
	TouchLastLogin(ctx context.Context, kind internal.PrincipalKind, id int64, at time.Time) error
}

type PasswordComparer interface {
	Compare(hash, password string) error
}

type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGenerator
	passwords      PasswordComparer
	logger         *slog.Logger
	now            func() time.Time
}

func NewService(repo RepositoryAPI, tokenGen TokenGenerator, passwords PasswordComparer, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		passwords:      passwords,
		logger:         logger,
		now:            time.Now,
	}
}

// Login checks credentials for the given account kind and issues a token pair.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, kind internal.PrincipalKind, dto LoginDTO) (AuthTokens, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	cred, err := s.repo.GetCredentialByEmail(ctx, kind, dto.Email)
	if err != nil {
		s.logger.Error("failed to load credential", "kind", kind, "error", err)
		return AuthTokens{}, err
	}
	if cred == nil {
		s.logger.Warn("login with unknown email", "kind", kind)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := s.passwords.Compare(cred.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login with wrong password", "kind", kind, "account_id", cred.ID)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if !cred.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	tokens, err := s.issue(cred)
	if err != nil {
		return AuthTokens{}, err
	}

	if err := s.repo.TouchLastLogin(ctx, kind, cred.ID, s.now().UTC()); err != nil {
		// login already succeeded, the timestamp is informational
		s.logger.Warn("failed to record last login", "account_id", cred.ID, "error", err)
	}

	s.logger.Info("login succeeded", "kind", kind, "account_id", cred.ID, "role", cred.Role)
	return tokens, nil
}

// RefreshTokens exchanges a valid refresh token for a new pair. The account is
// reloaded so deactivated staff cannot keep refreshing.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.Validate(strings.TrimSpace(refreshToken), TokenTypeRefresh)
	if err != nil {
		return AuthTokens{}, err
	}

	cred, err := s.credentialFor(ctx, claims)
	if err != nil {
		return AuthTokens{}, err
	}

	return s.issue(cred)
}

// Authenticate turns an access token into the request principal.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*internal.Principal, error) {
	claims, err := s.tokenGenerator.Validate(accessToken, TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	cred, err := s.credentialFor(ctx, claims)
	if err != nil {
		return nil, err
	}

	role, _ := RoleFor(cred.Role)
	return &internal.Principal{
		ID:           cred.ID,
		Kind:         cred.Kind,
		Email:        cred.Email,
		Name:         cred.Name,
		Role:         cred.Role,
		Capabilities: role.Capabilities,
	}, nil
}

func (s *Service) credentialFor(ctx context.Context, claims *Claims) (*Credential, error) {
	id, err := claims.PrincipalID()
	if err != nil {
		return nil, internal.ErrInvalidToken
	}

	kind := internal.PrincipalKind(claims.Kind)
	if kind != internal.PrincipalStaff && kind != internal.PrincipalCustomer {
		return nil, internal.ErrInvalidToken
	}

	cred, err := s.repo.GetCredentialByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, internal.ErrInvalidToken
	}
	if !cred.IsActive {
		return nil, internal.ErrUserInactive
	}
	return cred, nil
}

func (s *Service) issue(cred *Credential) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.Generate(cred, TokenTypeAccess)
	if err != nil {
		s.logger.Error("failed to sign access token", "account_id", cred.ID, "error", err)
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.Generate(cred, TokenTypeRefresh)
	if err != nil {
		s.logger.Error("failed to sign refresh token", "account_id", cred.ID, "error", err)
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokenGenerator.AccessTTL().Seconds()),
	}, nil
}
