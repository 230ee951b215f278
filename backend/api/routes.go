package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RouterOptions configures the middleware around the API routes
type RouterOptions struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func SetupRoutes(router *mux.Router, handlers *Handlers) {
	api := router.PathPrefix("/api/v1").Subrouter()

	// Session lifecycle
	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.HandleFunc("", handlers.CreateSession).Methods("POST")
	sessions.HandleFunc("/{sessionId}", handlers.GetSession).Methods("GET")
	sessions.HandleFunc("/{sessionId}", handlers.DeleteSession).Methods("DELETE")

	// Interaction events
	sessions.HandleFunc("/{sessionId}/click", handlers.Click).Methods("POST")
	sessions.HandleFunc("/{sessionId}/nodes/{nodeId}/select", handlers.SelectNode).Methods("POST")
	sessions.HandleFunc("/{sessionId}/communities/{index:[0-9]+}/select", handlers.SelectCommunity).Methods("POST")
	sessions.HandleFunc("/{sessionId}/focus", handlers.Focus).Methods("POST")
	sessions.HandleFunc("/{sessionId}/unselect", handlers.Unselect).Methods("POST")

	// View options
	sessions.HandleFunc("/{sessionId}/threshold", handlers.UpdateThreshold).Methods("PUT")
	sessions.HandleFunc("/{sessionId}/options", handlers.UpdateOptions).Methods("PUT")

	sessions.HandleFunc("/{sessionId}/communities/{index:[0-9]+}/breakdown", handlers.GetBreakdown).Methods("GET")

	api.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
}

// NewRouter wires the routes behind recovery, logging, rate limiting and CORS
func NewRouter(handlers *Handlers, opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	SetupRoutes(r, handlers)

	r.Use(RecoveryMiddleware)
	r.Use(LoggingMiddleware)
	if opts.RateLimitRPS > 0 {
		r.Use(NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).Middleware)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(r)
}
