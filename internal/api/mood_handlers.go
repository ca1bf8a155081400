package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListMoods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Moods.Settings())
}

// handleGetMood resolves unknown labels to the default mood.
func (s *Server) handleGetMood(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Moods.Resolve(chi.URLParam(r, "label")))
}
