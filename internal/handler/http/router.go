package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/tovfikur/attsys-sub001/internal/handler/http/middleware"
	"github.com/tovfikur/attsys-sub001/internal/pkg/jwt"
)

func NewRouter(JWTService jwt.Service, payrollHandler *PayrollHandler, env string) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attsys-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {
				// Read endpoints for any authenticated company user
				r.Get("/payslips/{id}", payrollHandler.GetPayslip)
				r.Get("/payslips/{id}/html", payrollHandler.GetPayslipHTML)
				r.Get("/employees/{employeeID}/payslips", payrollHandler.GetEmployeePayslipHistory)
				r.Get("/employees/{employeeID}/day-statuses", payrollHandler.GetEmployeeDayStatuses)

				// Management endpoints
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePayrollManager)

					r.Route("/cycles", func(r chi.Router) {
						r.Get("/", payrollHandler.ListCycles)
						r.Post("/", payrollHandler.CreateCycle)

						r.Route("/{id}", func(r chi.Router) {
							r.Get("/", payrollHandler.GetCycle)
							r.Get("/totals", payrollHandler.GetCycleTotals)
							r.Post("/run", payrollHandler.RunCycle)
							r.Post("/approve", payrollHandler.ApproveCycle)
							r.Post("/reject", payrollHandler.RejectCycle)
							r.Post("/lock", payrollHandler.LockCycle)
							r.Post("/mark-paid", payrollHandler.MarkCyclePaid)
							r.Get("/approvals", payrollHandler.ListCycleApprovals)
							r.Get("/journal", payrollHandler.GetCycleJournal)
							r.Get("/payslips", payrollHandler.ListPayslipsByCycle)
							r.Get("/bonuses", payrollHandler.ListBonusesByCycle)
							r.Post("/email-payslips", payrollHandler.EmailPayslipsForCycle)
							r.Get("/export", payrollHandler.ExportCycle)
							r.Get("/bank-transfer", payrollHandler.ExportBankTransfer)
						})
					})

					r.Route("/payslips/{id}", func(r chi.Router) {
						r.Post("/items", payrollHandler.AddPayslipItem)
						r.Post("/payments", payrollHandler.RecordPayment)
						r.Post("/email", payrollHandler.EmailPayslip)
					})

					r.Route("/components", func(r chi.Router) {
						r.Get("/", payrollHandler.ListComponents)
						r.Post("/", payrollHandler.CreateComponent)
					})

					r.Route("/structures", func(r chi.Router) {
						r.Post("/", payrollHandler.SaveSalaryStructure)
						r.Get("/{employeeID}", payrollHandler.GetSalaryHistory)
					})

					r.Route("/bonuses", func(r chi.Router) {
						r.Post("/", payrollHandler.SaveBonus)
						r.Delete("/{id}", payrollHandler.DeleteBonus)
					})

					r.Route("/loans", func(r chi.Router) {
						r.Get("/", payrollHandler.ListLoans)
						r.Post("/", payrollHandler.AddLoan)
						r.Put("/{id}/status", payrollHandler.UpdateLoanStatus)
					})

					r.Route("/tax-slabs", func(r chi.Router) {
						r.Get("/", payrollHandler.ListTaxSlabs)
						r.Post("/", payrollHandler.SaveTaxSlab)
						r.Delete("/{id}", payrollHandler.DeleteTaxSlab)
					})

					r.Route("/bank-accounts", func(r chi.Router) {
						r.Post("/", payrollHandler.SaveBankAccount)
						r.Delete("/{id}", payrollHandler.DeleteBankAccount)
						r.Get("/{employeeID}", payrollHandler.ListBankAccounts)
					})

					r.Route("/settings", func(r chi.Router) {
						r.Get("/", payrollHandler.GetSettings)
						r.Put("/", payrollHandler.SaveSettings)
					})

					r.Get("/reports/yearly-cost", payrollHandler.GetYearlyCost)
				})
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	return r
}
