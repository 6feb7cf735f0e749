package httpapi

import (
	"encoding/json"
	"net/http"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/welcomewall/internal/app/board"
)

// GetState returns the board's current read-only view.
func GetState(m *board.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, m.Status())
	}
}

// muteRequest is the body of POST /api/mute.
type muteRequest struct {
	Muted bool `json:"muted"`
}

// SetMute flips the mute flag for audio and speech dispatch.
func SetMute(m *board.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req muteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		m.SetMuted(req.Muted)
		writeJSON(w, http.StatusOK, req)
	}
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Debug().Msgf("httpapi: failed to encode response: %v", err)
	}
}
