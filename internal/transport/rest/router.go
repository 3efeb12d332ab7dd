package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/petirpay/internal/activity"
	"github.com/frahmantamala/petirpay/internal/auth"
	"github.com/frahmantamala/petirpay/internal/billing"
	"github.com/frahmantamala/petirpay/internal/customer"
	"github.com/frahmantamala/petirpay/internal/payment"
	"github.com/frahmantamala/petirpay/internal/paymentmethod"
	"github.com/frahmantamala/petirpay/internal/report"
	"github.com/frahmantamala/petirpay/internal/staff"
	"github.com/frahmantamala/petirpay/internal/tariff"
	"github.com/frahmantamala/petirpay/internal/transport/middleware"
	"github.com/frahmantamala/petirpay/internal/transport/swagger"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth          *auth.Handler
	Tariff        *tariff.Handler
	Customer      *customer.Handler
	PaymentMethod *paymentmethod.Handler
	Billing       *billing.Handler
	Payment       *payment.Handler
	Staff         *staff.Handler
	Report        *report.Handler
	Activity      *activity.Handler
}

type Options struct {
	AllowedOrigins string
	UploadDir      string
	UploadRoute    string
	OpenAPIPath    string
}

func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, h Handlers, opts Options, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	rbac := auth.NewRBACAuthorization(logger)

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)

	if opts.OpenAPIPath != "" {
		router.Get(swagger.SpecRoute, swagger.SpecHandler(opts.OpenAPIPath))
		router.Handle("/swagger/*", swagger.Handler())
	}
	if opts.UploadDir != "" && opts.UploadRoute != "" {
		router.Handle(opts.UploadRoute+"/*", http.StripPrefix(opts.UploadRoute+"/", http.FileServer(http.Dir(opts.UploadDir))))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Get("/ping", healthHandler.Ping)

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/staff/login", h.Auth.LoginStaff)
			ar.Post("/customer/login", h.Auth.LoginCustomer)
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.Post("/logout", h.Auth.Logout)
			ar.With(h.Auth.AuthMiddleware).Get("/me", h.Auth.Me)
		})

		// public catalogue used by sign-up and the payment form
		r.Post("/register", h.Customer.Register)
		r.Get("/tariffs", h.Tariff.ListTariffs)
		r.Get("/tariffs/{id}", h.Tariff.GetTariff)
		r.Get("/payment-methods", h.PaymentMethod.ListActive)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/me", func(cr chi.Router) {
				cr.Use(rbac.RequireCustomer())

				cr.Get("/", h.Customer.GetMe)
				cr.Put("/", h.Customer.UpdateMe)
				cr.Post("/photo", h.Customer.UploadMyPhoto)

				cr.Group(func(br chi.Router) {
					br.Use(rbac.Require(auth.CapViewOwnBills))
					br.Get("/bills", h.Billing.ListMyBills)
					br.Get("/bills/{id}", h.Billing.GetMyBill)
					br.Get("/payments", h.Payment.PaymentHistory)
					br.Get("/payments/{id}", h.Payment.GetMyPayment)
				})

				cr.With(rbac.Require(auth.CapSubmitPayments)).Post("/payments", h.Payment.SubmitPayment)
			})

			pr.Group(func(sr chi.Router) {
				sr.Use(rbac.RequireStaff())
				registerStaffRoutes(sr, h, rbac)
			})
		})
	})
}

func registerStaffRoutes(r chi.Router, h Handlers, rbac *auth.RBACAuthorization) {
	r.Group(func(tr chi.Router) {
		tr.Use(rbac.Require(auth.CapManageTariffs))
		tr.Post("/tariffs", h.Tariff.CreateTariff)
		tr.Put("/tariffs/{id}", h.Tariff.UpdateTariff)
		tr.Delete("/tariffs/{id}", h.Tariff.DeleteTariff)
	})

	r.Route("/admin/payment-methods", func(mr chi.Router) {
		mr.Use(rbac.Require(auth.CapManagePaymentMethods))
		mr.Get("/", h.PaymentMethod.ListAll)
		mr.Post("/", h.PaymentMethod.CreatePaymentMethod)
		mr.Get("/{id}", h.PaymentMethod.GetPaymentMethod)
		mr.Put("/{id}", h.PaymentMethod.UpdatePaymentMethod)
		mr.Post("/{id}/logo", h.PaymentMethod.UploadLogo)
		mr.Delete("/{id}", h.PaymentMethod.DeletePaymentMethod)
	})

	r.Route("/customers", func(cr chi.Router) {
		cr.Use(rbac.Require(auth.CapManageCustomers))
		cr.Get("/", h.Customer.ListCustomers)
		cr.Post("/", h.Customer.CreateCustomer)
		cr.Get("/{id}", h.Customer.GetCustomer)
		cr.Put("/{id}", h.Customer.UpdateCustomer)
		cr.Delete("/{id}", h.Customer.DeleteCustomer)
	})

	r.Route("/bills", func(br chi.Router) {
		br.Get("/", h.Billing.ListBills)
		br.Get("/{id}", h.Billing.GetBill)

		br.Group(func(cr chi.Router) {
			cr.Use(rbac.Require(auth.CapCreateBills))
			cr.Get("/previous-reading", h.Billing.PreviousReading)
			cr.Post("/", h.Billing.CreateBill)
			cr.Delete("/{id}", h.Billing.DeleteBill)
		})
	})

	r.Route("/payments", func(pr chi.Router) {
		pr.With(rbac.Require(auth.CapRecordPayments)).Post("/", h.Payment.RecordPayment)

		pr.Group(func(vr chi.Router) {
			vr.Use(rbac.Require(auth.CapVerifyPayments))
			vr.Get("/", h.Payment.ListPayments)
			vr.Get("/{id}", h.Payment.GetPayment)
			vr.Patch("/{id}/approve", h.Payment.ApprovePayment)
			vr.Patch("/{id}/reject", h.Payment.RejectPayment)
		})
	})

	r.Route("/reports", func(rr chi.Router) {
		rr.Use(rbac.Require(auth.CapViewReports))
		rr.Get("/dashboard", h.Report.GetDashboard)
		rr.Get("/revenue", h.Report.GetRevenueSeries)
		rr.Get("/bills/export", h.Report.ExportBills)
	})

	r.With(rbac.Require(auth.CapViewActivity)).Get("/activity", h.Activity.ListActivity)

	r.Route("/staff", func(ar chi.Router) {
		ar.Get("/me", h.Staff.GetCurrentStaff)

		ar.Group(func(mr chi.Router) {
			mr.Use(rbac.Require(auth.CapManageStaff))
			mr.Get("/", h.Staff.ListStaff)
			mr.Post("/", h.Staff.CreateStaff)
			mr.Get("/{id}", h.Staff.GetStaff)
			mr.Put("/{id}", h.Staff.UpdateStaff)
			mr.Delete("/{id}", h.Staff.DeleteStaff)
		})
	})
}
