package services

import (
	"context"
	"strings"
	"time"

	"github.com/certbloom/certbloom/internal/errors"
	"github.com/certbloom/certbloom/internal/logger"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/repository"
	"github.com/google/uuid"
)

// ContentService handles the certification > domain > concept > content hierarchy
type ContentService interface {
	ListCertifications(ctx context.Context) ([]models.Certification, error)
	CreateCertification(ctx context.Context, c models.Certification) (*models.Certification, error)
	ListDomains(ctx context.Context, certificationID string) ([]models.Domain, error)
	CreateDomain(ctx context.Context, d models.Domain) (*models.Domain, error)
	ListConcepts(ctx context.Context, domainID string) ([]models.Concept, error)
	CreateConcept(ctx context.Context, c models.Concept) (*models.Concept, error)
	ListContentItems(ctx context.Context, conceptID string) ([]models.ContentItem, error)
	CreateContentItem(ctx context.Context, item models.ContentItem) (*models.ContentItem, error)
	ResolveSubjectArea(ctx context.Context, subjectArea string) (string, error)
}

type contentService struct {
	contentRepo repository.ContentRepository
}

// NewContentService creates a new ContentService
func NewContentService(contentRepo repository.ContentRepository) ContentService {
	return &contentService{contentRepo: contentRepo}
}

func (s *contentService) ListCertifications(ctx context.Context) ([]models.Certification, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing certifications")

	certs, err := s.contentRepo.ListCertifications(ctx)
	if err != nil {
		log.Error("failed to list certifications: %v", err)
		return nil, errors.NewStoreUnavailableError(err)
	}
	return certs, nil
}

func (s *contentService) CreateCertification(ctx context.Context, c models.Certification) (*models.Certification, error) {
	log := logger.FromContext(ctx)
	c.Code = strings.TrimSpace(c.Code)
	c.Name = strings.TrimSpace(c.Name)
	if c.Code == "" {
		return nil, errors.NewValidationError("code", "cannot be empty")
	}
	if c.Name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	log.Debug("creating certification: id=%s code=%s", c.ID, c.Code)

	if err := s.contentRepo.InsertCertification(ctx, c); err != nil {
		return nil, insertError(ctx, "certification", err)
	}
	return &c, nil
}

func (s *contentService) ListDomains(ctx context.Context, certificationID string) ([]models.Domain, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing domains: certification_id=%s", certificationID)

	if err := s.requireCertification(ctx, certificationID); err != nil {
		return nil, err
	}
	domains, err := s.contentRepo.ListDomains(ctx, certificationID)
	if err != nil {
		log.Error("failed to list domains: %v", err)
		return nil, errors.NewStoreUnavailableError(err)
	}
	return domains, nil
}

func (s *contentService) CreateDomain(ctx context.Context, d models.Domain) (*models.Domain, error) {
	log := logger.FromContext(ctx)
	d.Code = strings.TrimSpace(d.Code)
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}
	if d.Weight < 0 || d.Weight > 1 {
		return nil, errors.NewValidationError("weight", "must lie in [0,1]")
	}
	if err := s.requireCertification(ctx, d.CertificationID); err != nil {
		return nil, err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now().UTC()
	log.Debug("creating domain: id=%s certification_id=%s", d.ID, d.CertificationID)

	if err := s.contentRepo.InsertDomain(ctx, d); err != nil {
		return nil, insertError(ctx, "domain", err)
	}
	return &d, nil
}

func (s *contentService) ListConcepts(ctx context.Context, domainID string) ([]models.Concept, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing concepts: domain_id=%s", domainID)

	if err := s.requireDomain(ctx, domainID); err != nil {
		return nil, err
	}
	concepts, err := s.contentRepo.ListConcepts(ctx, domainID)
	if err != nil {
		log.Error("failed to list concepts: %v", err)
		return nil, errors.NewStoreUnavailableError(err)
	}
	return concepts, nil
}

func (s *contentService) CreateConcept(ctx context.Context, c models.Concept) (*models.Concept, error) {
	log := logger.FromContext(ctx)
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}
	if err := s.requireDomain(ctx, c.DomainID); err != nil {
		return nil, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	log.Debug("creating concept: id=%s domain_id=%s", c.ID, c.DomainID)

	if err := s.contentRepo.InsertConcept(ctx, c); err != nil {
		return nil, insertError(ctx, "concept", err)
	}
	return &c, nil
}

func (s *contentService) ListContentItems(ctx context.Context, conceptID string) ([]models.ContentItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing content items: concept_id=%s", conceptID)

	if err := requireConcept(ctx, s.contentRepo, conceptID); err != nil {
		return nil, err
	}
	items, err := s.contentRepo.ListContentItems(ctx, conceptID)
	if err != nil {
		log.Error("failed to list content items: %v", err)
		return nil, errors.NewStoreUnavailableError(err)
	}
	return items, nil
}

func (s *contentService) CreateContentItem(ctx context.Context, item models.ContentItem) (*models.ContentItem, error) {
	log := logger.FromContext(ctx)
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return nil, errors.NewValidationError("title", "cannot be empty")
	}
	if item.Kind == "" {
		item.Kind = models.ContentKindPractice
	}
	if !models.ValidContentKind(item.Kind) {
		return nil, errors.NewValidationError("kind", "must be lesson, practice, scenario or video")
	}
	if err := requireConcept(ctx, s.contentRepo, item.ConceptID); err != nil {
		return nil, err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = time.Now().UTC()
	log.Debug("creating content item: id=%s concept_id=%s", item.ID, item.ConceptID)

	if err := s.contentRepo.InsertContentItem(ctx, item); err != nil {
		return nil, insertError(ctx, "content item", err)
	}
	return &item, nil
}

func (s *contentService) ResolveSubjectArea(ctx context.Context, subjectArea string) (string, error) {
	if strings.TrimSpace(subjectArea) == "" {
		return "", errors.NewValidationError("subjectArea", "is required")
	}
	return resolveSubjectArea(ctx, s.contentRepo, subjectArea)
}

func (s *contentService) requireCertification(ctx context.Context, id string) error {
	if id == "" {
		return errors.NewValidationError("certificationId", "is required")
	}
	cert, err := s.contentRepo.GetCertification(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get certification %s: %v", id, err)
		return errors.NewStoreUnavailableError(err)
	}
	if cert == nil {
		return errors.NewNotFoundError("certification", id)
	}
	return nil
}

func (s *contentService) requireDomain(ctx context.Context, id string) error {
	if id == "" {
		return errors.NewValidationError("domainId", "is required")
	}
	domain, err := s.contentRepo.GetDomain(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get domain %s: %v", id, err)
		return errors.NewStoreUnavailableError(err)
	}
	if domain == nil {
		return errors.NewNotFoundError("domain", id)
	}
	return nil
}

func requireConcept(ctx context.Context, content repository.ContentRepository, id string) error {
	if id == "" {
		return errors.NewValidationError("conceptId", "is required")
	}
	concept, err := content.GetConcept(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get concept %s: %v", id, err)
		return errors.NewStoreUnavailableError(err)
	}
	if concept == nil {
		return errors.NewNotFoundError("concept", id)
	}
	return nil
}

// insertError maps constraint violations to client errors.
func insertError(ctx context.Context, resource string, err error) error {
	switch {
	case repository.IsUniqueViolation(err):
		return errors.NewConflictError(resource + " already exists")
	case repository.IsForeignKeyViolation(err):
		return errors.NewValidationError("id", resource+" references a missing parent")
	}
	logger.FromContext(ctx).Error("failed to insert %s: %v", resource, err)
	return errors.NewStoreUnavailableError(err)
}
