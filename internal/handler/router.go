package handler

import (
	"log/slog"
	"net/http"

	"github.com/segyhp/library-engine/pkg/response"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Health       *HealthHandler
	Books        *BookHandler
	Customers    *CustomerHandler
	Loans        *LoanHandler
	Reservations *ReservationHandler
	Passes       *PassHandler
	Users        *UserHandler
	Dashboard    *DashboardHandler
}

// NewRouter wires every route. CORS wraps the router so preflight requests
// are answered before route matching.
func NewRouter(h Handlers, logger *slog.Logger) http.Handler {
	router := mux.NewRouter()
	router.Use(response.RequestIDMiddleware, response.LoggingMiddleware(logger))
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	// Health check
	router.HandleFunc("/health", h.Health.Health).Methods("GET")
	router.HandleFunc("/health/ready", h.Health.Ready).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(IdentityMiddleware)

	api.HandleFunc("/books", h.Books.Search).Methods("GET")
	api.HandleFunc("/books", h.Books.Create).Methods("POST")
	api.HandleFunc("/books/browse", h.Books.Browse).Methods("GET")
	api.HandleFunc("/books/genres", h.Books.Genres).Methods("GET")
	api.HandleFunc("/books/{id:[0-9]+}", h.Books.Get).Methods("GET")
	api.HandleFunc("/books/{id:[0-9]+}", h.Books.Update).Methods("PUT")
	api.HandleFunc("/books/{id:[0-9]+}", h.Books.Delete).Methods("DELETE")
	api.HandleFunc("/books/{id:[0-9]+}/reservations", h.Books.Reservations).Methods("GET")

	api.HandleFunc("/customers", h.Customers.Search).Methods("GET")
	api.HandleFunc("/customers", h.Customers.Create).Methods("POST")
	api.HandleFunc("/customers/{id:[0-9]+}", h.Customers.Get).Methods("GET")
	api.HandleFunc("/customers/{id:[0-9]+}", h.Customers.Delete).Methods("DELETE")
	api.HandleFunc("/customers/{id:[0-9]+}/eligibility", h.Customers.Eligibility).Methods("GET")
	api.HandleFunc("/customers/{id:[0-9]+}/fines", h.Customers.Fines).Methods("GET")
	api.HandleFunc("/customers/{id:[0-9]+}/reservations", h.Customers.Reservations).Methods("GET")

	api.HandleFunc("/loans", h.Loans.List).Methods("GET")
	api.HandleFunc("/loans", h.Loans.Issue).Methods("POST")
	api.HandleFunc("/loans/stats", h.Loans.Stats).Methods("GET")
	api.HandleFunc("/loans/{id:[0-9]+}", h.Loans.Get).Methods("GET")
	api.HandleFunc("/loans/{id:[0-9]+}/return", h.Loans.Return).Methods("POST")
	api.HandleFunc("/loans/{id:[0-9]+}/fine", h.Loans.Fine).Methods("GET")

	api.HandleFunc("/reservations", h.Reservations.Create).Methods("POST")
	api.HandleFunc("/reservations/{id:[0-9]+}/status", h.Reservations.SetStatus).Methods("PUT")

	api.HandleFunc("/passes", h.Passes.Search).Methods("GET")
	api.HandleFunc("/passes", h.Passes.Issue).Methods("POST")
	api.HandleFunc("/passes/{id:[0-9]+}/suspend", h.Passes.Suspend).Methods("POST")
	api.HandleFunc("/passes/{id:[0-9]+}/activate", h.Passes.Activate).Methods("POST")

	api.HandleFunc("/users", h.Users.Search).Methods("GET")
	api.HandleFunc("/users", h.Users.Create).Methods("POST")
	api.HandleFunc("/users/{id:[0-9]+}/activate", h.Users.Activate).Methods("POST")
	api.HandleFunc("/users/{id:[0-9]+}/deactivate", h.Users.Deactivate).Methods("POST")

	api.HandleFunc("/profile", h.Users.Profile).Methods("GET")
	api.HandleFunc("/profile", h.Users.UpdateProfile).Methods("PUT")
	api.HandleFunc("/profile/password", h.Users.ChangePassword).Methods("PUT")

	api.HandleFunc("/dashboard", h.Dashboard.Stats).Methods("GET")

	return response.CORSMiddleware(router)
}
