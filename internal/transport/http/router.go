package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/payment-reminder-api/internal/application/admin"
	"github.com/payment-reminder-api/internal/application/otp"
	"github.com/payment-reminder-api/internal/application/reminder"
	"github.com/payment-reminder-api/internal/application/session"
	"github.com/payment-reminder-api/internal/application/user"
	"github.com/payment-reminder-api/internal/config"
	"github.com/payment-reminder-api/internal/infrastructure/dynamo"
	"github.com/payment-reminder-api/internal/infrastructure/redisstore"
	"github.com/payment-reminder-api/internal/infrastructure/ticket"
	"github.com/payment-reminder-api/internal/transport/http/handler"
	appmiddleware "github.com/payment-reminder-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds the dependencies the router needs. OTPService and
// ReminderService are built in main because the scheduler shares them; the
// remaining services are router-local.
type Deps struct {
	UserRepo        *dynamo.UserRepo
	SessionRepo     *redisstore.SessionRepo
	Tickets         *ticket.Provider
	OTPService      otp.Service
	ReminderService reminder.Service
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	authMw := appmiddleware.Auth(deps.SessionRepo)

	userSvc := user.NewService(user.ServiceDeps{UserRepo: deps.UserRepo, Tickets: deps.Tickets})
	sessionSvc := session.NewService(deps.SessionRepo, deps.UserRepo)
	adminSvc := admin.NewService(deps.UserRepo)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(deps.OTPService, userSvc, sessionSvc, cfg.CookieSecure, cfg.SessionTTL)
	userH := handler.NewUserHandler(userSvc)
	adminH := handler.NewAdminHandler(adminSvc)
	reminderH := handler.NewReminderHandler(deps.ReminderService)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/otp/send", authH.SendOTP)
		r.With(sensitiveRL.Limit).Post("/auth/otp/verify", authH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/auth/signup", authH.Signup)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.Post("/auth/check-email", authH.CheckEmail)
		r.Post("/auth/check-phone", authH.CheckPhone)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/status", authH.Status)
			r.Get("/auth/pending-status", authH.PendingStatus)
			r.Post("/auth/logout", authH.Logout)

			r.Get("/users/me", userH.Me)
			r.Put("/users/me", userH.UpdateMe)
			r.Post("/users/me/change-password", userH.ChangePassword)
			r.Delete("/users/me", userH.DeleteMe)

			// Reminders require an approved, active account.
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireActive)
				r.Use(appmiddleware.RequireApproved)

				r.Post("/reminders", reminderH.Create)
				r.Get("/reminders", reminderH.List)
				r.Put("/reminders/{id}/status", reminderH.UpdateStatus)
				r.Delete("/reminders/{id}", reminderH.Delete)
				r.Post("/reminders/{id}/send", reminderH.Send)
			})

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireActive)
				r.Use(appmiddleware.RequireAdmin)

				r.Get("/admin/users", adminH.List)
				r.Get("/admin/users/pending", adminH.ListPending)
				r.Get("/admin/users/{id}", adminH.Get)
				r.Put("/admin/users/{id}/approve", adminH.Approve)
				r.Put("/admin/users/{id}/reject", adminH.Reject)
				r.Put("/admin/users/{id}/deactivate", adminH.Deactivate)
				r.Put("/admin/users/{id}/reactivate", adminH.Reactivate)
				r.Put("/admin/users/{id}/role", adminH.UpdateRole)
				r.Delete("/admin/users/{id}", adminH.Delete)
			})
		})
	})

	return r
}
