package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/nileways/trip-planner/internal/api/chat"
	"github.com/nileways/trip-planner/internal/api/trip"
)

// Config contains the handlers the router mounts. ChatHandler may be nil when
// no model API key is configured; the chat routes are then not registered.
type Config struct {
	TripHandler *trip.HandlerImpl
	ChatHandler *chat.HandlerImpl
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/trips", cfg.TripHandler.BuildTrip)
		r.Post("/trips/suggestions", cfg.TripHandler.BuildSuggestions)

		if cfg.ChatHandler != nil {
			r.Post("/chat/extract", cfg.ChatHandler.Extract)
		}
	})

	return r
}
