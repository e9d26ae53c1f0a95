package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rms-backend/internal/config"
	"rms-backend/internal/domain"
	"rms-backend/internal/handler"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	auth handler.AuthHandler,
	jobOrders handler.JobOrderHandler,
	clients handler.ClientHandler,
	expenses handler.ExpenseHandler,
	branches handler.BranchHandler,
	dashboard handler.DashboardHandler,
	reports handler.ReportHandler,
	settings handler.SettingsHandler,
	logs handler.ActivityLogHandler,
	docs handler.DocsHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	auth.RegisterRoutes(r)
	docs.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		auth.RegisterProtectedRoutes(pr)
		// technician-level (technician/manager/admin)
		pr.Group(func(tr chi.Router) {
			tr.Use(RequireRole(domain.RoleAdmin, domain.RoleManager, domain.RoleTechnician))
			jobOrders.RegisterRoutes(tr)
			clients.RegisterRoutes(tr)
			branches.RegisterRoutes(tr)
			dashboard.RegisterRoutes(tr)
		})
		// manager-level (manager/admin)
		pr.Group(func(mr chi.Router) {
			mr.Use(RequireRole(domain.RoleAdmin, domain.RoleManager))
			expenses.RegisterRoutes(mr)
			reports.RegisterRoutes(mr)
			settings.RegisterRoutes(mr)
			logs.RegisterRoutes(mr)
		})
	})

	return r
}
