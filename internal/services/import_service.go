package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/certbloom/certbloom/internal/csvimport"
	"github.com/certbloom/certbloom/internal/errors"
	"github.com/certbloom/certbloom/internal/logger"
	"github.com/certbloom/certbloom/internal/metrics"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/repository"
	"github.com/google/uuid"
)

// ImportReport summarizes a CSV import. Skipped counts rows with errors plus
// blank rows.
type ImportReport struct {
	Imported int                  `json:"imported"`
	Skipped  int                  `json:"skipped"`
	Blank    int                  `json:"blank"`
	Errors   []csvimport.RowError `json:"errors"`
}

// ImportService handles question bank imports
type ImportService interface {
	ImportQuestions(ctx context.Context, r io.Reader) (*ImportReport, error)
}

type importService struct {
	questionRepo repository.QuestionRepository
	contentRepo  repository.ContentRepository
}

// NewImportService creates a new ImportService
func NewImportService(questionRepo repository.QuestionRepository, contentRepo repository.ContentRepository) ImportService {
	return &importService{
		questionRepo: questionRepo,
		contentRepo:  contentRepo,
	}
}

// ImportQuestions parses r and inserts every valid row in one batch. Rows that
// fail to parse or name an unknown certification are skipped and reported.
func (s *importService) ImportQuestions(ctx context.Context, r io.Reader) (*ImportReport, error) {
	log := logger.FromContext(ctx).WithPrefix("import")
	log.Info("importing questions from csv")

	parsed, err := csvimport.Parse(r)
	if err != nil {
		if stderrors.Is(err, csvimport.ErrHeader) {
			return nil, errors.NewValidationError("file", err.Error())
		}
		return nil, errors.NewBadRequestError(fmt.Sprintf("unreadable csv: %v", err))
	}

	report := &ImportReport{Errors: parsed.Errors, Blank: parsed.Blank}
	known := make(map[string]bool)
	now := time.Now().UTC()
	questions := make([]models.Question, 0, len(parsed.Rows))

	for _, row := range parsed.Rows {
		certID := row.Question.CertificationID
		exists, checked := known[certID]
		if !checked {
			cert, err := s.contentRepo.GetCertification(ctx, certID)
			if err != nil {
				log.Error("failed to look up certification %s: %v", certID, err)
				return nil, errors.NewStoreUnavailableError(err)
			}
			exists = cert != nil
			known[certID] = exists
		}
		if !exists {
			report.Errors = append(report.Errors, csvimport.RowError{
				Line:   row.Line,
				Reason: fmt.Sprintf("unknown certification_id %q", certID),
			})
			continue
		}

		q := row.Question
		q.ID = uuid.NewString()
		q.CreatedAt = now
		q.UpdatedAt = now
		for i := range q.Choices {
			q.Choices[i].QuestionID = q.ID
		}
		questions = append(questions, q)
	}

	if len(questions) > 0 {
		if err := s.questionRepo.InsertBatch(ctx, questions); err != nil {
			log.Error("failed to insert %d questions: %v", len(questions), err)
			return nil, errors.NewStoreUnavailableError(err)
		}
	}

	sort.SliceStable(report.Errors, func(i, j int) bool {
		return report.Errors[i].Line < report.Errors[j].Line
	})
	if report.Errors == nil {
		report.Errors = []csvimport.RowError{}
	}
	report.Imported = len(questions)
	report.Skipped = len(report.Errors) + report.Blank

	metrics.ObserveImportRows(metrics.ImportImported, report.Imported)
	metrics.ObserveImportRows(metrics.ImportSkipped, report.Skipped)
	log.Info("import finished: imported=%d skipped=%d blank=%d", report.Imported, report.Skipped, report.Blank)
	return report, nil
}
