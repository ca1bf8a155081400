package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type upsertUserRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

func (s *Server) handleUpsertUser(w http.ResponseWriter, r *http.Request) {
	var req upsertUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	user, err := s.UserService.UpsertUser(r.Context(), req.ID, req.DisplayName)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.UserService.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

func (s *Server) handleUserProgress(w http.ResponseWriter, r *http.Request) {
	report, err := s.ProgressService.GetProgress(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("subjectArea"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}
