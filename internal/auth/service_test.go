package auth_test

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/petirpay/internal"
	"github.com/frahmantamala/petirpay/internal/auth"
	authPostgres "github.com/frahmantamala/petirpay/internal/auth/postgres"
	customerDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/customer"
	staffDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/staff"
	tariffDatamodel "github.com/frahmantamala/petirpay/internal/core/datamodel/tariff"
	"github.com/frahmantamala/petirpay/internal/core/testdb"
	"github.com/frahmantamala/petirpay/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var securityConfig = internal.SecurityConfig{
	AccessTokenSecret:    "access-secret-access-secret-access-secret",
	RefreshTokenSecret:   "refresh-secret-refresh-secret-refresh-secret",
	AccessTokenDuration:  15 * time.Minute,
	RefreshTokenDuration: 24 * time.Hour,
}

var _ = Describe("Auth Service", func() {
	var (
		db         *gorm.DB
		ctx        context.Context
		hasher     *auth.BcryptHasher
		tokens     *auth.JWTTokenGenerator
		service    *auth.Service
		staffRow   *staffDatamodel.Account
		customerID int64
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(testdb.Close, db)
		ctx = context.Background()

		hasher = auth.NewBcryptHasher(4)
		hash, err := hasher.Hash("rahasia123")
		Expect(err).NotTo(HaveOccurred())

		staffRow = &staffDatamodel.Account{
			Name: "Petugas", Email: "petugas@petirpay.id", PasswordHash: hash,
			Role: staffDatamodel.RoleStaff, IsActive: true,
		}
		Expect(db.Create(staffRow).Error).To(Succeed())

		tariff := &tariffDatamodel.Tariff{PowerClass: "R1-900VA", RatePerKWh: decimal.NewFromInt(1352)}
		Expect(db.Create(tariff).Error).To(Succeed())
		cust := &customerDatamodel.Customer{
			Name: "Budi", Email: "budi@example.com", PasswordHash: hash,
			MeterNumber: "5310001", TariffID: tariff.ID,
		}
		Expect(db.Create(cust).Error).To(Succeed())
		customerID = cust.ID

		tokens = auth.NewJWTTokenGenerator(securityConfig)
		service = auth.NewService(authPostgres.NewRepository(db), tokens, hasher, logger.Discard())
	})

	Describe("Login", func() {
		It("issues a bearer token pair for staff and records the login", func() {
			pair, err := service.Login(ctx, internal.PrincipalStaff, auth.LoginDTO{Email: " Petugas@PetirPay.id ", Password: "rahasia123"})
			Expect(err).NotTo(HaveOccurred())
			Expect(pair.AccessToken).NotTo(BeEmpty())
			Expect(pair.RefreshToken).NotTo(Equal(pair.AccessToken))
			Expect(pair.TokenType).To(Equal("Bearer"))
			Expect(pair.ExpiresIn).To(Equal(int64(900)))

			var row staffDatamodel.Account
			Expect(db.First(&row, staffRow.ID).Error).To(Succeed())
			Expect(row.LastLoginAt).NotTo(BeNil())
		})

		It("does not tell unknown emails from wrong passwords", func() {
			_, err := service.Login(ctx, internal.PrincipalStaff, auth.LoginDTO{Email: "nobody@petirpay.id", Password: "rahasia123"})
			Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(BeTrue())

			_, err = service.Login(ctx, internal.PrincipalStaff, auth.LoginDTO{Email: "petugas@petirpay.id", Password: "salah"})
			Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(BeTrue())
		})

		It("keeps staff and customer logins apart", func() {
			_, err := service.Login(ctx, internal.PrincipalCustomer, auth.LoginDTO{Email: "petugas@petirpay.id", Password: "rahasia123"})
			Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(BeTrue())

			_, err = service.Login(ctx, internal.PrincipalCustomer, auth.LoginDTO{Email: "budi@example.com", Password: "rahasia123"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses deactivated staff", func() {
			Expect(db.Model(staffRow).Update("is_active", false).Error).To(Succeed())

			_, err := service.Login(ctx, internal.PrincipalStaff, auth.LoginDTO{Email: "petugas@petirpay.id", Password: "rahasia123"})
			Expect(errors.Is(err, internal.ErrUserInactive)).To(BeTrue())
		})

		It("validates the request body", func() {
			_, err := service.Login(ctx, internal.PrincipalStaff, auth.LoginDTO{Email: "not-an-email"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})
	})

	Describe("Authenticate", func() {
		It("resolves staff capabilities from the role", func() {
			pair, err := service.Login(ctx, internal.PrincipalStaff, auth.LoginDTO{Email: "petugas@petirpay.id", Password: "rahasia123"})
			Expect(err).NotTo(HaveOccurred())

			p, err := service.Authenticate(ctx, pair.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).To(Equal(staffRow.ID))
			Expect(p.Kind).To(Equal(internal.PrincipalStaff))
			Expect(p.Can(auth.CapVerifyPayments)).To(BeTrue())
			Expect(p.Can(auth.CapManageStaff)).To(BeFalse())
		})

		It("gives customers only their own capabilities", func() {
			pair, err := service.Login(ctx, internal.PrincipalCustomer, auth.LoginDTO{Email: "budi@example.com", Password: "rahasia123"})
			Expect(err).NotTo(HaveOccurred())

			p, err := service.Authenticate(ctx, pair.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).To(Equal(customerID))
			Expect(p.IsCustomer()).To(BeTrue())
			Expect(p.Can(auth.CapSubmitPayments)).To(BeTrue())
			Expect(p.Can(auth.CapCreateBills)).To(BeFalse())
		})

		It("does not accept a refresh token as an access token", func() {
			pair, err := service.Login(ctx, internal.PrincipalStaff, auth.LoginDTO{Email: "petugas@petirpay.id", Password: "rahasia123"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Authenticate(ctx, pair.RefreshToken)
			Expect(errors.Is(err, internal.ErrInvalidToken)).To(BeTrue())
		})

		It("reports expired tokens", func() {
			expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
				Kind: "staff", Role: "staff", TokenType: auth.TokenTypeAccess,
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "1",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				},
			})
			signed, err := expired.SignedString([]byte(securityConfig.AccessTokenSecret))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Authenticate(ctx, signed)
			Expect(errors.Is(err, internal.ErrTokenExpired)).To(BeTrue())
		})

		It("stops accepting tokens once the account is deactivated", func() {
			pair, err := service.Login(ctx, internal.PrincipalStaff, auth.LoginDTO{Email: "petugas@petirpay.id", Password: "rahasia123"})
			Expect(err).NotTo(HaveOccurred())
			Expect(db.Model(staffRow).Update("is_active", false).Error).To(Succeed())

			_, err = service.Authenticate(ctx, pair.AccessToken)
			Expect(errors.Is(err, internal.ErrUserInactive)).To(BeTrue())
		})
	})

	Describe("RefreshTokens", func() {
		It("exchanges a refresh token for a new pair", func() {
			pair, err := service.Login(ctx, internal.PrincipalCustomer, auth.LoginDTO{Email: "budi@example.com", Password: "rahasia123"})
			Expect(err).NotTo(HaveOccurred())

			next, err := service.RefreshTokens(ctx, pair.RefreshToken)
			Expect(err).NotTo(HaveOccurred())

			p, err := service.Authenticate(ctx, next.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).To(Equal(customerID))
		})

		It("rejects an access token", func() {
			pair, err := service.Login(ctx, internal.PrincipalCustomer, auth.LoginDTO{Email: "budi@example.com", Password: "rahasia123"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RefreshTokens(ctx, pair.AccessToken)
			Expect(errors.Is(err, internal.ErrInvalidToken)).To(BeTrue())
		})
	})
})
