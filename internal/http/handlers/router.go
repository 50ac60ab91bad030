package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tripdesk/crm-backend/internal/domain"
	"github.com/tripdesk/crm-backend/pkg/middleware"
)

// NewRouter assembles the full route tree. Each role gets an identical
// surface under its own prefix; admin gets oversight endpoints on top.
// fileHandler serves stored blobs (logos, itinerary PDFs).
func NewRouter(h *Handlers, fileHandler http.Handler, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Adminid", "Employeeid", "Partnerid"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())
	r.Mount("/files", fileHandler)

	// Counter endpoint behind shared itinerary links; no auth by design of
	// the sharing flow, rate limited instead.
	r.With(h.RateLimit(60, time.Minute)).Post("/api/track-pdf", h.TrackPDF)

	r.Route("/api/admin", func(r chi.Router) {
		h.mountRole(r, domain.RoleAdmin)
		r.Group(func(r chi.Router) {
			r.Use(h.RequireRole(domain.RoleAdmin))
			r.Get("/fetch-users", h.FetchUsers)
			r.Post("/update-status", h.UpdateUserStatus)
			r.Post("/broadcast-notification", h.BroadcastNotification)
		})
	})
	r.Route("/api/employee", func(r chi.Router) {
		h.mountRole(r, domain.RoleEmployee)
	})
	r.Route("/api/partner", func(r chi.Router) {
		h.mountRole(r, domain.RolePartner)
	})

	return r
}

// mountRole registers the per-role endpoint surface: auth, profile,
// quotations, taxis, and notifications.
func (h *Handlers) mountRole(r chi.Router, role domain.Role) {
	r.With(h.RateLimit(10, time.Minute)).Post("/signup", h.SignUp(role))
	r.With(h.RateLimit(10, time.Minute)).Post("/login", h.SignIn(role))
	r.With(h.RateLimit(5, 15*time.Minute)).Post("/forgot-password", h.ForgotPassword(role))
	r.Post("/reset-password", h.ResetPassword(role))

	r.Group(func(r chi.Router) {
		r.Use(h.RequireRole(role))

		r.Get("/fetch-profile", h.FetchProfile(role))
		r.Put("/update-profile", h.UpdateProfile(role))
		r.Get("/logout", h.Logout(role))

		r.Post("/create-quotation", h.SaveQuotation(role))
		r.Put("/update-quotation", h.SaveQuotation(role))
		r.Get("/fetch-quotations", h.FetchQuotations(role))
		r.Delete("/delete-quotation/{id}", h.DeleteQuotation(role))

		r.Post("/create-taxi", h.SaveTaxi(role))
		r.Put("/update-taxi", h.SaveTaxi(role))
		r.Get("/fetch-taxis", h.FetchTaxis(role))
		r.Get("/fetch-taxi/{id}", h.FetchTaxi(role))
		r.Delete("/delete-taxi/{id}", h.DeleteTaxi(role))

		r.Get("/fetch-notifications", h.FetchNotifications(role))
		r.Post("/mark-notification-read", h.MarkNotificationRead(role))
	})
}
