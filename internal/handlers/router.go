package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitbook/backend/internal/auth"
	"github.com/splitbook/backend/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Groups        *GroupHandler
	Records       *RecordHandler
	Notifications *NotificationHandler
	Categories    *CategoryHandler
}

// NewRouter builds the HTTP router: public auth endpoints, the JWT-protected
// API, and the operational endpoints (health, metrics).
func NewRouter(h Handlers, jwtManager *auth.JWTManager, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtManager))

			r.Get("/users/me", h.Auth.Me)
			r.Put("/users/me", h.Auth.UpdateProfile)
			r.Get("/users/search", h.Auth.SearchUsers)

			r.Post("/groups", h.Groups.Create)
			r.Get("/groups", h.Groups.List)
			r.Get("/groups/{groupID}", h.Groups.Get)
			r.Put("/groups/{groupID}", h.Groups.Update)
			r.Delete("/groups/{groupID}", h.Groups.Delete)
			r.Post("/groups/{groupID}/members", h.Groups.AddMember)
			r.Delete("/groups/{groupID}/members/{userID}", h.Groups.RemoveMember)
			r.Get("/groups/{groupID}/balances", h.Groups.Balances)
			r.Get("/groups/{groupID}/records", h.Records.ListByGroup)

			r.Post("/expenses", h.Records.CreateExpense)
			r.Get("/records", h.Records.ListForUser)
			r.Get("/records/{recordID}", h.Records.Get)
			r.Put("/records/{recordID}", h.Records.UpdateExpense)
			r.Delete("/records/{recordID}", h.Records.Delete)

			r.Post("/payments", h.Records.SettleUp)
			r.Post("/payments/{recordID}/verify", h.Records.Verify)
			r.Put("/payments/{recordID}/remarks", h.Records.UpdateRemarks)
			r.Get("/payments/with/{userID}", h.Records.PaymentsBetween)

			r.Get("/notifications", h.Notifications.List)
			r.Get("/notifications/unread-count", h.Notifications.UnreadCount)
			r.Post("/notifications/{notificationID}/read", h.Notifications.MarkRead)
			r.Post("/notifications/read-all", h.Notifications.MarkAllRead)
			r.Delete("/notifications", h.Notifications.DeleteAll)
			r.Delete("/notifications/read", h.Notifications.DeleteRead)
			r.Delete("/notifications/{notificationID}", h.Notifications.Delete)

			r.Get("/categories", h.Categories.List)
			r.Post("/categories", h.Categories.Create)
			r.Put("/categories/{categoryID}", h.Categories.Update)
			r.Delete("/categories/{categoryID}", h.Categories.Delete)
		})
	})

	return r
}
