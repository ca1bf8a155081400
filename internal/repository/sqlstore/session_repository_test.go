package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/certbloom/certbloom/internal/db"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/repository"
	"github.com/certbloom/certbloom/internal/repository/sqlstore"
	"github.com/certbloom/certbloom/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type SessionRepositorySuite struct {
	suite.Suite
	db   *db.DB
	repo repository.SessionRepository
	q1   string
	q2   string
}

func (s *SessionRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	testutil.Seed(s.T(), s.db, 2)
	s.repo = sqlstore.NewSessionRepository(s.db)
	s.q1 = testutil.QuestionID(testutil.ConceptFraction, 0)
	s.q2 = testutil.QuestionID(testutil.ConceptFraction, 1)
}

func (s *SessionRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *SessionRepositorySuite) start(id string, at time.Time) {
	s.Require().NoError(s.repo.Create(context.Background(), models.PracticeSession{
		ID: id, UserID: testutil.UserID, SubjectArea: testutil.DomainMath, Mood: "calm", IsAdaptive: true,
		QuestionIDs: []string{s.q1, s.q2}, Status: models.SessionActive, CreatedAt: at,
	}))
}

func (s *SessionRepositorySuite) complete(id string, at time.Time, answers ...string) ([]models.Attempt, error) {
	conf := 4
	attempts := []models.Attempt{
		{UserID: testutil.UserID, QuestionID: s.q1, SessionID: id, SubmittedAnswer: answers[0], IsCorrect: answers[0] == "A", TimeSpentSeconds: 12.5, Confidence: &conf, AttemptedAt: at},
		{UserID: testutil.UserID, QuestionID: s.q2, SessionID: id, SubmittedAnswer: answers[1], IsCorrect: answers[1] == "A", AttemptedAt: at},
	}
	correct := 0
	for _, a := range attempts {
		if a.IsCorrect {
			correct++
		}
	}
	return s.repo.Complete(context.Background(), models.SessionResult{
		SessionID: id, UserID: testutil.UserID, ConceptID: testutil.ConceptFraction,
		QuestionIDs: []string{s.q1, s.q2}, Answers: answers,
		CorrectCount: correct, TotalCount: 2, ScorePercentage: correct * 50, CompletedAt: at,
	}, attempts)
}

func (s *SessionRepositorySuite) TestCreateAndGet() {
	at := time.Date(2026, 9, 3, 8, 0, 0, 0, time.UTC)
	s.start("s1", at)

	got, err := s.repo.Get(context.Background(), "s1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal([]string{s.q1, s.q2}, got.QuestionIDs)
	s.Assert().True(got.IsAdaptive)
	s.Assert().Equal(models.SessionActive, got.Status)
	s.Assert().Nil(got.CompletedAt)

	missing, err := s.repo.Get(context.Background(), "nope")
	s.Assert().NoError(err)
	s.Assert().Nil(missing)
}

func (s *SessionRepositorySuite) TestComplete_WritesAttemptsAndResultOnce() {
	ctx := context.Background()
	at := time.Date(2026, 9, 3, 8, 0, 0, 0, time.UTC)
	s.start("s1", at)

	written, err := s.complete("s1", at.Add(10*time.Minute), "A", "C")
	s.Require().NoError(err)
	s.Require().Len(written, 2)
	s.Assert().Equal(1, written[0].AttemptNumber)
	s.Assert().Greater(written[0].ID, int64(0))

	_, err = s.complete("s1", at.Add(11*time.Minute), "A", "A")
	s.Assert().ErrorIs(err, repository.ErrSessionCompleted)

	got, err := s.repo.Get(ctx, "s1")
	s.Require().NoError(err)
	s.Assert().Equal(models.SessionCompleted, got.Status)
	s.Require().NotNil(got.CompletedAt)

	res, err := s.repo.GetResult(ctx, "s1")
	s.Require().NoError(err)
	s.Require().NotNil(res)
	s.Assert().Equal([]string{"A", "C"}, res.Answers)
	s.Assert().Equal(50, res.ScorePercentage)
	s.Assert().False(res.MasteryAchieved())

	attempts, err := s.repo.ListAttempts(ctx, testutil.UserID, s.q1)
	s.Require().NoError(err)
	s.Require().Len(attempts, 1, "the rejected completion left no attempts behind")
	s.Require().NotNil(attempts[0].Confidence)
	s.Assert().Equal(4, *attempts[0].Confidence)
	s.Assert().InDelta(12.5, attempts[0].TimeSpentSeconds, 1e-9)
}

func (s *SessionRepositorySuite) TestAttemptOrdinalsGrowPerQuestion() {
	ctx := context.Background()
	at := time.Date(2026, 9, 3, 8, 0, 0, 0, time.UTC)
	s.start("s1", at)
	s.start("s2", at.Add(time.Hour))

	_, err := s.complete("s1", at.Add(time.Minute), "B", "B")
	s.Require().NoError(err)
	written, err := s.complete("s2", at.Add(time.Hour+time.Minute), "A", "A")
	s.Require().NoError(err)
	s.Assert().Equal(2, written[0].AttemptNumber)
	s.Assert().Equal(2, written[1].AttemptNumber)

	attempts, err := s.repo.ListAttempts(ctx, testutil.UserID, s.q2)
	s.Require().NoError(err)
	s.Require().Len(attempts, 2)
	s.Assert().False(attempts[0].IsCorrect)
	s.Assert().True(attempts[1].IsCorrect)

	recent, err := s.repo.RecentResults(ctx, testutil.UserID, 5)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Assert().Equal("s2", recent[0].SessionID)
	s.Assert().True(recent[0].MasteryAchieved())
}

func (s *SessionRepositorySuite) TestComplete_RejectsMismatchedResult() {
	at := time.Now()
	s.start("s1", at)

	_, err := s.repo.Complete(context.Background(), models.SessionResult{
		SessionID: "s1", UserID: testutil.UserID, QuestionIDs: []string{s.q1, s.q2}, Answers: []string{"A"}, TotalCount: 2, CompletedAt: at,
	}, nil)
	s.Assert().ErrorIs(err, models.ErrMalformedRow)
}

func TestSessionRepositorySuite(t *testing.T) {
	suite.Run(t, new(SessionRepositorySuite))
}
