package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/certbloom/certbloom/internal/db"
	"github.com/certbloom/certbloom/internal/logger"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/repository"
)

type contentRepository struct {
	db *db.DB
}

// NewContentRepository creates a new ContentRepository implementation
func NewContentRepository(conn *db.DB) repository.ContentRepository {
	return &contentRepository{db: conn}
}

func (r *contentRepository) ListCertifications(ctx context.Context) ([]models.Certification, error) {
	log := logger.FromContext(ctx).WithPrefix("content_repo")
	log.Debug("listing certifications")

	query, args, err := r.db.Builder().
		Select("id", "code", "name", "description", "created_at").
		From("certifications").
		OrderBy("code ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list certifications: %v", err)
		return nil, err
	}
	defer rows.Close()

	certs := []models.Certification{}
	for rows.Next() {
		var c models.Certification
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			log.Error("failed to scan certification row: %v", err)
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}

func (r *contentRepository) GetCertification(ctx context.Context, id string) (*models.Certification, error) {
	log := logger.FromContext(ctx).WithPrefix("content_repo")
	log.Debug("getting certification: id=%s", id)

	query, args, err := r.db.Builder().
		Select("id", "code", "name", "description", "created_at").
		From("certifications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var c models.Certification
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("certification not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get certification: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *contentRepository) InsertCertification(ctx context.Context, c models.Certification) error {
	log := logger.FromContext(ctx).WithPrefix("content_repo")
	log.Debug("inserting certification: code=%s", c.Code)

	query, args, err := r.db.Builder().
		Insert("certifications").
		Columns("id", "code", "name", "description", "created_at").
		Values(c.ID, c.Code, c.Name, c.Description, c.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert certification: %v", err)
		return err
	}
	return nil
}

func (r *contentRepository) ListDomains(ctx context.Context, certificationID string) ([]models.Domain, error) {
	log := logger.FromContext(ctx).WithPrefix("content_repo")
	log.Debug("listing domains: certification_id=%s", certificationID)

	query, args, err := r.db.Builder().
		Select("id", "certification_id", "code", "name", "weight", "created_at").
		From("domains").
		Where(squirrel.Eq{"certification_id": certificationID}).
		OrderBy("code ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list domains: %v", err)
		return nil, err
	}
	defer rows.Close()

	domains := []models.Domain{}
	for rows.Next() {
		var d models.Domain
		if err := rows.Scan(&d.ID, &d.CertificationID, &d.Code, &d.Name, &d.Weight, &d.CreatedAt); err != nil {
			log.Error("failed to scan domain row: %v", err)
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

func (r *contentRepository) GetDomain(ctx context.Context, id string) (*models.Domain, error) {
	log := logger.FromContext(ctx).WithPrefix("content_repo")
	log.Debug("getting domain: id=%s", id)

	query, args, err := r.db.Builder().
		Select("id", "certification_id", "code", "name", "weight", "created_at").
		From("domains").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var d models.Domain
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&d.ID, &d.CertificationID, &d.Code, &d.Name, &d.Weight, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("domain not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get domain: %v", err)
		return nil, err
	}
	return &d, nil
}

func (r *contentRepository) InsertDomain(ctx context.Context, d models.Domain) error {
	log := logger.FromContext(ctx).WithPrefix("content_repo")
	log.Debug("inserting domain: certification_id=%s code=%s", d.CertificationID, d.Code)

	query, args, err := r.db.Builder().
		Insert("domains").
		Columns("id", "certification_id", "code", "name", "weight", "created_at").
		Values(d.ID, d.CertificationID, d.Code, d.Name, d.Weight, d.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert domain: %v", err)
		return err
	}
	return nil
}

func (r *contentRepository) ListConcepts(ctx context.Context, domainID string) ([]models.Concept, error) {
	log := logger.FromContext(ctx).WithPrefix("content_repo")
	log.Debug("listing concepts: domain_id=%s", domainID)

	query, args, err := r.db.Builder().
		Select("id", "domain_id", "name", "description", "created_at").
		From("concepts").
		Where(squirrel.Eq{"domain_id": domainID}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list concepts: %v", err)
		return nil, err
	}
	defer rows.Close()

	concepts := []models.Concept{}
	for rows.Next() {
		var c models.Concept
		if err := rows.Scan(&c.ID, &c.DomainID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			log.Error("failed to scan concept row: %v", err)
			return nil, err
		}
		concepts = append(concepts, c)
	}
	return concepts, rows.Err()
}

func (r *contentRepository) GetConcept(ctx context.Context, id string) (*models.Concept, error) {
	log := logger.FromContext(ctx).WithPrefix("content_repo")
	log.Debug("getting concept: id=%s", id)

	query, args, err := r.db.Builder().
		Select("id", "domain_id", "name", "description", "created_at").
		From("concepts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var c models.Concept
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.DomainID, &c.Name, &c.Description, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("concept not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get concept: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *contentRepository) InsertConcept(ctx context.Context, c models.Concept) error {
	log := logger.FromContext(ctx).WithPrefix("content_repo")
	log.Debug("inserting concept: domain_id=%s name=%s", c.DomainID, c.Name)

	query, args, err := r.db.Builder().
		Insert("concepts").
		Columns("id", "domain_id", "name", "description", "created_at").
		Values(c.ID, c.DomainID, c.Name, c.Description, c.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert concept: %v", err)
		return err
	}
	return nil
}

func (r *contentRepository) ListContentItems(ctx context.Context, conceptID string) ([]models.ContentItem, error) {
	log := logger.FromContext(ctx).WithPrefix("content_repo")
	log.Debug("listing content items: concept_id=%s", conceptID)

	query, args, err := r.db.Builder().
		Select("id", "concept_id", "kind", "title", "body", "created_at").
		From("content_items").
		Where(squirrel.Eq{"concept_id": conceptID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list content items: %v", err)
		return nil, err
	}
	defer rows.Close()

	items := []models.ContentItem{}
	for rows.Next() {
		var it models.ContentItem
		if err := rows.Scan(&it.ID, &it.ConceptID, &it.Kind, &it.Title, &it.Body, &it.CreatedAt); err != nil {
			log.Error("failed to scan content item row: %v", err)
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *contentRepository) InsertContentItem(ctx context.Context, item models.ContentItem) error {
	log := logger.FromContext(ctx).WithPrefix("content_repo")
	log.Debug("inserting content item: concept_id=%s kind=%s", item.ConceptID, item.Kind)

	query, args, err := r.db.Builder().
		Insert("content_items").
		Columns("id", "concept_id", "kind", "title", "body", "created_at").
		Values(item.ID, item.ConceptID, item.Kind, item.Title, item.Body, item.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert content item: %v", err)
		return err
	}
	return nil
}

func (r *contentRepository) CountContentItems(ctx context.Context, conceptID string) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("content_repo")

	query, args, err := r.db.Builder().
		Select("COUNT(*)").
		From("content_items").
		Where(squirrel.Eq{"concept_id": conceptID}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		log.Error("failed to count content items: %v", err)
		return 0, err
	}
	log.Debug("concept %s has %d content items", conceptID, n)
	return n, nil
}
