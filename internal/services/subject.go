package services

import (
	"context"

	"github.com/certbloom/certbloom/internal/errors"
	"github.com/certbloom/certbloom/internal/logger"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/repository"
)

// Subject area kinds.
const (
	SubjectDomain        = "domain"
	SubjectCertification = "certification"
)

// resolveSubjectArea reports whether subjectArea names a domain or a
// certification. Domains are checked first.
func resolveSubjectArea(ctx context.Context, content repository.ContentRepository, subjectArea string) (string, error) {
	log := logger.FromContext(ctx)

	domain, err := content.GetDomain(ctx, subjectArea)
	if err != nil {
		log.Error("failed to look up domain %s: %v", subjectArea, err)
		return "", errors.NewStoreUnavailableError(err)
	}
	if domain != nil {
		return SubjectDomain, nil
	}

	cert, err := content.GetCertification(ctx, subjectArea)
	if err != nil {
		log.Error("failed to look up certification %s: %v", subjectArea, err)
		return "", errors.NewStoreUnavailableError(err)
	}
	if cert != nil {
		return SubjectCertification, nil
	}
	return "", errors.NewNotFoundError("subject area", subjectArea)
}

// requireUser returns NotFound when the user does not exist.
func requireUser(ctx context.Context, users repository.UserRepository, userID string) (*models.User, error) {
	u, err := users.Get(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get user %s: %v", userID, err)
		return nil, errors.NewStoreUnavailableError(err)
	}
	if u == nil {
		return nil, errors.NewNotFoundError("user", userID)
	}
	return u, nil
}
