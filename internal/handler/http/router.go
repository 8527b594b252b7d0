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
	"github.com/minetrack/minetrack-backend-go/internal/handler/http/middleware"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/jwt"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/metrics"
)

type RouterConfig struct {
	Env         string
	CORSOrigins []string
}

func NewRouter(
	cfg RouterConfig,
	jwtService jwt.Service,
	authHandler AuthHandler,
	employeeHandler EmployeeHandler,
	deviceHandler DeviceHandler,
	eventHandler EventHandler,
	medicalHandler MedicalHandler,
	reportHandler ReportHandler,
	userHandler UserHandler,
	hikvisionHandler HikvisionHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "minetrack"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		// Device-facing endpoints: no user token. Ingest carries the device
		// API key, the webhook cannot authenticate at all.
		r.Post("/events/ingest", eventHandler.Ingest)
		r.Post("/hikvision/webhook", hikvisionHandler.Webhook)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", employeeHandler.List)
				r.Get("/{id}", employeeHandler.Get)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", employeeHandler.Create)
					r.Patch("/{id}", employeeHandler.Update)
				})
			})

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", deviceHandler.List)
				r.Get("/data-status", deviceHandler.DataStatus)
				r.Post("/{id}/power", deviceHandler.TogglePower)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", deviceHandler.Create)
					r.Patch("/{id}", deviceHandler.Update)
				})
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", eventHandler.List)
				r.Get("/paged", eventHandler.ListPaged)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/summary", reportHandler.Summary)
				r.Get("/inside-mine", reportHandler.InsideMine)
				r.Get("/tool-debts", reportHandler.ToolDebts)
				r.Get("/daily-mine-summary", reportHandler.DailyMineSummary)
				r.Get("/blocked-attempts", reportHandler.BlockedAttempts)
				r.Get("/blocked-attempts-count", reportHandler.BlockedAttemptsCount)
				r.Get("/esmo-summary", reportHandler.EsmoSummary)
				r.Get("/esmo-summary-24h", reportHandler.EsmoSummary24h)
				r.Get("/dashboard", reportHandler.Dashboard)
			})

			r.Route("/medical", func(r chi.Router) {
				r.Get("/exams", medicalHandler.ListExams)
				r.Get("/stats", medicalHandler.Stats)
				r.Post("/sync-exams", medicalHandler.SyncExams)
				r.Get("/esmo-employees", medicalHandler.EsmoEmployees)
				r.Post("/sync-employees", medicalHandler.SyncEmployees)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})

			r.Route("/hikvision", func(r chi.Router) {
				r.Get("/status", hikvisionHandler.Status)
				r.With(middleware.RequireAdmin).Post("/sync-users", hikvisionHandler.SyncUsers)
			})
		})
	})

	return r
}
