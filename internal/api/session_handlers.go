package api

import (
	"net/http"

	"github.com/certbloom/certbloom/internal/errors"
	"github.com/certbloom/certbloom/internal/services"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req services.StartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	started, err := s.SessionService.StartSession(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	status := http.StatusCreated
	if started.SessionID == "" {
		status = http.StatusOK
	}
	writeJSON(w, r, status, started)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	var req services.CompleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if req.SessionID != "" && req.SessionID != id {
		handleError(w, r, errors.NewValidationError("sessionId", "does not match the URL"))
		return
	}
	req.SessionID = id

	result, err := s.SessionService.CompleteSession(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}
