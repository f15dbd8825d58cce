package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/yeonholee/hr-payroll/internal/auth"
	"github.com/yeonholee/hr-payroll/internal/department"
	"github.com/yeonholee/hr-payroll/internal/employee"
	"github.com/yeonholee/hr-payroll/internal/incentive"
	"github.com/yeonholee/hr-payroll/internal/leave"
	"github.com/yeonholee/hr-payroll/internal/payroll"
	"github.com/yeonholee/hr-payroll/internal/transport/middleware"
	"github.com/yeonholee/hr-payroll/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Auth       *auth.Handler
	Employee   *employee.Handler
	Department *department.Handler
	Leave      *leave.Handler
	Payroll    *payroll.Handler
	Incentive  *incentive.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, handlers Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	rbac := auth.NewRBACAuthorization(logger)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if handlers.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", handlers.Auth.Login)
				sr.Post("/refresh", handlers.Auth.RefreshToken)
				sr.Post("/logout", handlers.Auth.Logout)
			})
		}

		if handlers.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(handlers.Auth.AuthMiddleware)

			if handlers.Employee != nil {
				pr.Route("/employees", func(er chi.Router) {
					er.Get("/me", handlers.Employee.GetCurrentEmployee)
					er.Get("/", handlers.Employee.ListEmployees)
					er.Get("/{id}", handlers.Employee.GetEmployee)

					er.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireManageEmployees())
						mr.Post("/", handlers.Employee.CreateEmployee)
						mr.Patch("/{id}", handlers.Employee.UpdateEmployee)
						mr.Delete("/{id}", handlers.Employee.DeactivateEmployee)
					})
				})
			}

			if handlers.Department != nil {
				pr.Route("/departments", func(dr chi.Router) {
					dr.Get("/", handlers.Department.ListDepartments)
					dr.Get("/{id}", handlers.Department.GetDepartment)
					dr.Get("/headcount", handlers.Department.HeadcountSummary)
					dr.Get("/positions", handlers.Department.ListPositions)
					dr.Get("/positions/{id}", handlers.Department.GetPosition)

					dr.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireManageDepartments())
						mr.Post("/", handlers.Department.CreateDepartment)
						mr.Patch("/{id}", handlers.Department.UpdateDepartment)
						mr.Delete("/{id}", handlers.Department.DeleteDepartment)
						mr.Post("/positions", handlers.Department.CreatePosition)
						mr.Patch("/positions/{id}", handlers.Department.UpdatePosition)
					})
				})
			}

			if handlers.Leave != nil {
				pr.Route("/leave", func(lr chi.Router) {
					lr.Post("/requests", handlers.Leave.CreateRequest)
					lr.Get("/requests", handlers.Leave.GetMyRequests)
					lr.Get("/requests/{id}", handlers.Leave.GetRequest)
					lr.Post("/requests/{id}/cancel", handlers.Leave.Cancel)
					lr.Get("/balance", handlers.Leave.GetBalance)
					lr.Get("/team", handlers.Leave.TeamStatus)

					lr.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireApproveLeave())
						mr.Patch("/requests/{id}/approve", handlers.Leave.Approve)
						mr.Patch("/requests/{id}/reject", handlers.Leave.Reject)
						mr.Get("/stats", handlers.Leave.DepartmentStats)
					})
				})
			}

			if handlers.Payroll != nil {
				pr.Route("/payroll", func(py chi.Router) {
					py.Get("/records/me", handlers.Payroll.ListMine)
					py.Get("/records/{id}", handlers.Payroll.GetRecord)
					py.Get("/records/{id}/payslip", handlers.Payroll.DownloadPayslip)

					py.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireManagePayroll())
						mr.Post("/preview", handlers.Payroll.PreviewUpload)
						mr.Post("/confirm", handlers.Payroll.Confirm)
						mr.Post("/records/{id}/payslip", handlers.Payroll.UploadPayslip)
					})

					py.Group(func(vr chi.Router) {
						vr.Use(rbac.Require(auth.PermViewAllPayroll, auth.PermManagePayroll))
						vr.Get("/records", handlers.Payroll.ListMonth)
						vr.Get("/summary", handlers.Payroll.MonthlySummary)
					})
				})
			}

			if handlers.Incentive != nil {
				pr.Route("/incentive", func(ir chi.Router) {
					ir.Use(rbac.RequireManageIncentive())

					ir.Route("/formula", func(fr chi.Router) {
						fr.Post("/", handlers.Incentive.CreateFormula)
						fr.Get("/", handlers.Incentive.ListFormulas)
						fr.Get("/{id}", handlers.Incentive.GetFormula)
						fr.Patch("/{id}", handlers.Incentive.UpdateFormula)
						fr.Delete("/{id}", handlers.Incentive.DeleteFormula)
					})

					ir.Post("/validate", handlers.Incentive.Validate)
					ir.Post("/simulate", handlers.Incentive.Simulate)
					ir.Post("/batch-simulate", handlers.Incentive.BatchSimulate)

					ir.Route("/sales", func(sr chi.Router) {
						sr.Post("/", handlers.Incentive.CreateSales)
						sr.Get("/", handlers.Incentive.ListSales)
						sr.Get("/{id}", handlers.Incentive.GetSales)
						sr.Patch("/{id}", handlers.Incentive.UpdateSales)
						sr.Delete("/{id}", handlers.Incentive.DeleteSales)
					})
				})
			}
		})
	})
}
