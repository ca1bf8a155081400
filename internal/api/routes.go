package api

import (
	"net/http"

	"github.com/certbloom/certbloom/internal/metrics"
	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.RequestTimeout > 0 {
			r.Use(timeoutMiddleware(s.RequestTimeout))
		}

		r.Post("/users", s.handleUpsertUser)
		r.Get("/users/{id}", s.handleGetUser)
		r.Get("/users/{id}/progress", s.handleUserProgress)

		r.Get("/certifications", s.handleListCertifications)
		r.Post("/certifications", s.handleCreateCertification)
		r.Get("/certifications/{id}/domains", s.handleListDomains)
		r.Post("/certifications/{id}/domains", s.handleCreateDomain)
		r.Get("/domains/{id}/concepts", s.handleListConcepts)
		r.Post("/domains/{id}/concepts", s.handleCreateConcept)
		r.Get("/concepts/{id}/content", s.handleListContentItems)
		r.Post("/concepts/{id}/content", s.handleCreateContentItem)
		r.Get("/concepts/{id}/questions", s.handleListQuestions)
		r.Get("/questions/{id}", s.handleGetQuestion)

		r.Post("/sessions", s.handleStartSession)
		r.Post("/sessions/{id}/complete", s.handleCompleteSession)

		r.Get("/mood", s.handleListMoods)
		r.Get("/mood/{label}", s.handleGetMood)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/questions/import", s.handleImportQuestions)
			r.Put("/questions/{id}/concept", s.handleRecategorizeQuestion)
			r.Put("/questions/{id}/answer", s.handleFixAnswerKey)
		})
	})
	return r
}
