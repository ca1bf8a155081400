package api

import (
	"net/http"

	"github.com/certbloom/certbloom/internal/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListCertifications(w http.ResponseWriter, r *http.Request) {
	certs, err := s.ContentService.ListCertifications(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, certs)
}

func (s *Server) handleCreateCertification(w http.ResponseWriter, r *http.Request) {
	var req models.Certification
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	cert, err := s.ContentService.CreateCertification(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, cert)
}

func (s *Server) handleListDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := s.ContentService.ListDomains(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, domains)
}

func (s *Server) handleCreateDomain(w http.ResponseWriter, r *http.Request) {
	var req models.Domain
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	req.CertificationID = chi.URLParam(r, "id")
	domain, err := s.ContentService.CreateDomain(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, domain)
}

func (s *Server) handleListConcepts(w http.ResponseWriter, r *http.Request) {
	concepts, err := s.ContentService.ListConcepts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, concepts)
}

func (s *Server) handleCreateConcept(w http.ResponseWriter, r *http.Request) {
	var req models.Concept
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	req.DomainID = chi.URLParam(r, "id")
	concept, err := s.ContentService.CreateConcept(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, concept)
}

func (s *Server) handleListContentItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.ContentService.ListContentItems(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) handleCreateContentItem(w http.ResponseWriter, r *http.Request) {
	var req models.ContentItem
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	req.ConceptID = chi.URLParam(r, "id")
	item, err := s.ContentService.CreateContentItem(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, item)
}
