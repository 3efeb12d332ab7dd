package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/petirpay/internal"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Credential is what login needs to know about either kind of account.
type Credential struct {
	ID           int64
	Kind         internal.PrincipalKind
	Email        string
	Name         string
	Role         string
	PasswordHash string
	IsActive     bool
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Claims represents JWT token claims
type Claims struct {
	Kind      string `json:"kind"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

func (c *Claims) PrincipalID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

type TokenGenerator interface {
	Generate(cred *Credential, tokenType string) (string, error)
	Validate(tokenString, tokenType string) (*Claims, error)
	AccessTTL() time.Duration
}

// Service performs authentication-related business logic.
type ServiceAPI interface {
	Login(ctx context.Context, kind internal.PrincipalKind, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	Authenticate(ctx context.Context, accessToken string) (*internal.Principal, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	Issuer             string
}

func NewJWTTokenGenerator(cfg internal.SecurityConfig) *JWTTokenGenerator {
	access, refresh := cfg.AccessTokenDuration, cfg.RefreshTokenDuration
	if access <= 0 {
		access = 15 * time.Minute
	}
	if refresh <= 0 {
		refresh = 24 * 7 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(cfg.AccessTokenSecret),
		RefreshTokenSecret: []byte(cfg.RefreshTokenSecret),
		AccessTokenTTL:     access,
		RefreshTokenTTL:    refresh,
		Issuer:             "petirpay",
	}
}

func (j *JWTTokenGenerator) AccessTTL() time.Duration {
	return j.AccessTokenTTL
}

func (j *JWTTokenGenerator) secretFor(tokenType string) ([]byte, time.Duration) {
	if tokenType == TokenTypeRefresh {
		return j.RefreshTokenSecret, j.RefreshTokenTTL
	}
	return j.AccessTokenSecret, j.AccessTokenTTL
}

func (j *JWTTokenGenerator) Generate(cred *Credential, tokenType string) (string, error) {
	secret, ttl := j.secretFor(tokenType)
	now := time.Now()

	claims := &Claims{
		Kind:      string(cred.Kind),
		Role:      cred.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   strconv.FormatInt(cred.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Validate checks signature, expiry and that the token is of the expected
// type, so a refresh token is never accepted as an access token.
func (j *JWTTokenGenerator) Validate(tokenString, tokenType string) (*Claims, error) {
	secret, _ := j.secretFor(tokenType)

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
