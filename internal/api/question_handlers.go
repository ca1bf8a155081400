package api

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/certbloom/certbloom/internal/errors"
	"github.com/certbloom/certbloom/internal/logger"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := s.QuestionService.GetQuestion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, q)
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	questions, err := s.QuestionService.ListQuestions(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, questions)
}

func (s *Server) handleRecategorizeQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConceptID string `json:"conceptId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	q, err := s.QuestionService.Recategorize(r.Context(), chi.URLParam(r, "id"), req.ConceptID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, q)
}

func (s *Server) handleFixAnswerKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CorrectAnswer string `json:"correctAnswer"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	q, err := s.QuestionService.FixAnswerKey(r.Context(), chi.URLParam(r, "id"), req.CorrectAnswer)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, q)
}

// handleImportQuestions accepts a text/csv body or a multipart upload in the
// "file" field.
func (s *Server) handleImportQuestions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.ImportMaxBytes)

	var src io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			handleError(w, r, importReadError(s.ImportMaxBytes, err))
			return
		}
		defer file.Close()
		src = file
	}

	data, err := io.ReadAll(src)
	if err != nil {
		handleError(w, r, importReadError(s.ImportMaxBytes, err))
		return
	}
	log.Debug("received %d bytes of csv", len(data))

	report, err := s.ImportService.ImportQuestions(r.Context(), bytes.NewReader(data))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func importReadError(limit int64, err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.NewValidationError("file", fmt.Sprintf("exceeds %d bytes", limit))
	}
	return errors.NewBadRequestError("could not read upload: " + err.Error())
}
