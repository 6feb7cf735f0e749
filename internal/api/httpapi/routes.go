// Package httpapi provides the read-only HTTP surface for the dashboard.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osa030/welcomewall/internal/app/board"
)

// SetupRoutes builds the router for the dashboard API.
// The presentation layer only reads; mute is the single control surface.
func SetupRoutes(m *board.Manager) http.Handler {
	r := chi.NewRouter()

	r.Get("/api/state", GetState(m))
	r.Post("/api/mute", SetMute(m))
	r.Get("/ws", WatchHandler(m))
	r.Get("/healthz", Healthz)

	return r
}
