package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/petirpay/internal"
	"github.com/frahmantamala/petirpay/internal/activity"
	activityPostgres "github.com/frahmantamala/petirpay/internal/activity/postgres"
	"github.com/frahmantamala/petirpay/internal/auth"
	authPostgres "github.com/frahmantamala/petirpay/internal/auth/postgres"
	"github.com/frahmantamala/petirpay/internal/billing"
	billingPostgres "github.com/frahmantamala/petirpay/internal/billing/postgres"
	"github.com/frahmantamala/petirpay/internal/core/events"
	"github.com/frahmantamala/petirpay/internal/customer"
	customerPostgres "github.com/frahmantamala/petirpay/internal/customer/postgres"
	"github.com/frahmantamala/petirpay/internal/payment"
	paymentPostgres "github.com/frahmantamala/petirpay/internal/payment/postgres"
	"github.com/frahmantamala/petirpay/internal/paymentmethod"
	paymentmethodPostgres "github.com/frahmantamala/petirpay/internal/paymentmethod/postgres"
	"github.com/frahmantamala/petirpay/internal/report"
	reportPostgres "github.com/frahmantamala/petirpay/internal/report/postgres"
	"github.com/frahmantamala/petirpay/internal/staff"
	staffPostgres "github.com/frahmantamala/petirpay/internal/staff/postgres"
	"github.com/frahmantamala/petirpay/internal/storage"
	"github.com/frahmantamala/petirpay/internal/tariff"
	tariffPostgres "github.com/frahmantamala/petirpay/internal/tariff/postgres"
	"github.com/frahmantamala/petirpay/internal/transport"
	"github.com/frahmantamala/petirpay/internal/transport/rest"
	"github.com/frahmantamala/petirpay/internal/transport/swagger"
	"github.com/frahmantamala/petirpay/pkg/logger"
	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var openAPIPath string

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func init() {
	httpServerCmd.Flags().StringVar(&openAPIPath, "openapi", "api/openapi.yml", "OpenAPI document served at /openapi.yml (empty disables the docs)")
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	EventBus *events.EventBus
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		deps.Logger.Error("failed to set up routes", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		// let activity handlers finish writing before the pool goes away
		deps.EventBus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg, lg, db := deps.Config, deps.Logger, deps.Gorm

	if openAPIPath != "" {
		if _, err := swagger.Load(context.Background(), openAPIPath); err != nil {
			return err
		}
	}

	store, err := storage.NewLocalStore(cfg.Storage, lg)
	if err != nil {
		return fmt.Errorf("init upload store: %w", err)
	}
	images := storage.NewImages(store, cfg.Storage, lg)
	hasher := auth.NewBcryptHasher(cfg.Security.BCryptCost)

	tariffService := tariff.NewService(tariffPostgres.NewTariffRepository(db), lg)
	customerService := customer.NewService(customerPostgres.NewCustomerRepository(db), tariffService, hasher, images, lg)
	methodService := paymentmethod.NewService(paymentmethodPostgres.NewPaymentMethodRepository(db), images, cfg.Billing.DefaultAdminFee, lg)
	billingService := billing.NewService(billingPostgres.NewBillingRepository(db), customerService, methodService, deps.EventBus, cfg.Billing, lg)
	paymentService := payment.NewService(paymentPostgres.NewPaymentRepository(db), billingService, methodService, images, deps.EventBus, lg)
	staffService := staff.NewService(staffPostgres.NewStaffRepository(db), hasher, lg)
	authService := auth.NewService(authPostgres.NewRepository(db), auth.NewJWTTokenGenerator(cfg.Security), hasher, lg)
	reportService := report.NewService(reportPostgres.NewReportRepository(deps.DB), methodService, cfg.Billing, lg)
	activityService := activity.NewService(activityPostgres.NewActivityRepository(db), lg)

	activity.NewEventHandler(activityService, lg).RegisterEventHandlers(deps.EventBus)

	base := transport.NewBaseHandler(lg)
	handlers := rest.Handlers{
		Auth:          auth.NewHandler(base, authService),
		Tariff:        tariff.NewHandler(base, tariffService),
		Customer:      customer.NewHandler(base, customerService),
		PaymentMethod: paymentmethod.NewHandler(base, methodService),
		Billing:       billing.NewHandler(base, billingService),
		Payment:       payment.NewHandler(base, paymentService),
		Staff:         staff.NewHandler(base, staffService),
		Report:        report.NewHandler(base, reportService),
		Activity:      activity.NewHandler(base, activityService),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB, handlers, rest.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		UploadDir:      store.Root(),
		UploadRoute:    uploadRoute(cfg.Storage.PublicBaseURL),
		OpenAPIPath:    openAPIPath,
	}, lg)
	return nil
}

// uploadRoute mounts uploads locally only when the public URL is a path;
// an absolute URL means something else serves the files.
func uploadRoute(publicBaseURL string) string {
	if len(publicBaseURL) > 0 && publicBaseURL[0] == '/' {
		return publicBaseURL
	}
	return ""
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config:   config,
		DB:       db,
		Gorm:     gdb,
		EventBus: events.NewEventBus(lg),
		Router:   chi.NewRouter(),
		Logger:   lg,
	}, nil
}

// initDB opens the shared pgx pool used by sqlx read models and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Open(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
}
