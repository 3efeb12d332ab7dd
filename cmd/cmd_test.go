package cmd

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const minimalConfig = `
database:
  source: "postgres://petirpay@localhost:5432/petirpay"
  max_open_conns: 10
  max_idle_conns: 2
  conn_max_lifetime: 30m
  conn_max_idle_time: 5m
security:
  access_token_secret: "0123456789abcdef0123456789abcdef-access"
  refresh_token_secret: "0123456789abcdef0123456789abcdef-refresh"
billing:
  default_admin_fee: 3000
`

var _ = Describe("loadConfig", func() {
	var dir string

	BeforeEach(func() {
		if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
			Skip("environment-only config is active")
		}
		dir = GinkgoT().TempDir()
	})

	writeConfig := func(body string) {
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600)).To(Succeed())
	}

	It("reads config.yml and fills the defaults", func() {
		writeConfig(minimalConfig)

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Billing.DefaultAdminFee).To(Equal(int64(3000)))
		Expect(cfg.Billing.DefaultRatePerKWh).To(Equal("1500"))
		Expect(cfg.Billing.TimeZone).To(Equal("Asia/Jakarta"))
		Expect(cfg.Server.Port).To(Equal(8080))
		Expect(cfg.Security.AccessTokenDuration).To(Equal(15 * time.Minute))
		Expect(cfg.Security.BCryptCost).To(Equal(12))
		Expect(cfg.Storage.UploadDir).To(Equal("uploads"))
	})

	It("rejects short token secrets", func() {
		writeConfig(`
database:
  source: "postgres://petirpay@localhost:5432/petirpay"
  max_open_conns: 10
  max_idle_conns: 2
security:
  access_token_secret: "short"
  refresh_token_secret: "short-too"
`)

		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("access_token_secret")))
	})

	It("fails when no config file exists", func() {
		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("error reading config")))
	})
})
