package http

import (
	"log/slog"
	"os"

	"github.com/attendx/attendx-backend-go/internal/config"
	"github.com/attendx/attendx-backend-go/internal/handler/http/middleware"
	"github.com/attendx/attendx-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(cfg *config.Config, jwtService jwt.Service, attendanceHandler AttendanceHandler, reportHandler ReportHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendx"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
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

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {

				// Employee self-service
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployee)
					r.Post("/checkin", attendanceHandler.CheckIn)
					r.Post("/checkout", attendanceHandler.CheckOut)
					r.Get("/today", attendanceHandler.Today)
					r.Get("/my-history", attendanceHandler.MyHistory)
					r.Get("/my-summary", reportHandler.MySummary)
				})

				// Manager only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/all", attendanceHandler.List)
					r.Get("/employee/{id}", attendanceHandler.EmployeeHistory)
					r.Get("/summary", reportHandler.Summary)
					r.Get("/today-status", reportHandler.TodayStatus)
					r.Get("/export", reportHandler.Export)
					r.Post("/mark-absent", attendanceHandler.MarkAbsent)
					r.Put("/{id}", attendanceHandler.Update)
				})
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.With(middleware.RequireEmployee).Get("/employee", reportHandler.EmployeeDashboard)
				r.With(middleware.RequireManager).Get("/manager", reportHandler.ManagerDashboard)
			})
		})
	})
	return r
}
