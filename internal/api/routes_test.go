package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/certbloom/certbloom/internal/api"
	"github.com/certbloom/certbloom/internal/jobs"
	"github.com/certbloom/certbloom/internal/mastery"
	"github.com/certbloom/certbloom/internal/mood"
	"github.com/certbloom/certbloom/internal/repository/sqlstore"
	"github.com/certbloom/certbloom/internal/selection"
	"github.com/certbloom/certbloom/internal/services"
	"github.com/certbloom/certbloom/internal/testutil"
	"github.com/certbloom/certbloom/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	conn := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, conn) })
	testutil.Seed(t, conn, 3)

	contentRepo := sqlstore.NewContentRepository(conn)
	questionRepo := sqlstore.NewQuestionRepository(conn)
	userRepo := sqlstore.NewUserRepository(conn)
	sessionRepo := sqlstore.NewSessionRepository(conn)
	progressRepo := sqlstore.NewProgressRepository(conn)

	progressSvc := services.NewProgressService(progressRepo, contentRepo, sessionRepo, userRepo, mastery.DefaultPolicy())
	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)

	moods := mood.MustDefault()
	selector := selection.NewSelector(
		selection.NewPlannerRanker(services.NewCandidateStore(questionRepo, progressRepo), selection.DefaultPolicy()),
		questionRepo,
	)
	srv := &api.Server{
		UserService:     services.NewUserService(userRepo),
		ContentService:  services.NewContentService(contentRepo),
		QuestionService: services.NewQuestionService(questionRepo, contentRepo),
		ImportService:   services.NewImportService(questionRepo, contentRepo),
		ProgressService: progressSvc,
		SessionService: services.NewSessionService(sessionRepo, questionRepo, contentRepo, userRepo, progressSvc,
			selector, moods, jobs.NewWorkerQueue(pool, progressSvc), services.SessionLimits{Default: 5, Max: 10}),
		Moods:          moods,
		DB:             conn,
		ImportMaxBytes: 1 << 16,
		RequestTimeout: 5 * time.Second,
	}
	return srv.Routes()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type apiError struct {
	Error struct {
		Code  string `json:"code"`
		Field string `json:"field"`
	} `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, h, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/sessions", map[string]any{
		"userId":         testutil.UserID,
		"subjectArea":    testutil.DomainMath,
		"sessionLength":  4,
		"focusWeakAreas": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assertCamelCaseKeys(t, rec.Body.Bytes())
	started := decode[services.StartedSession](t, rec)
	require.NotEmpty(t, started.SessionID)
	assert.True(t, started.IsAdaptive)
	require.Len(t, started.Questions, 4)
	assert.Equal(t, mood.Calm, started.Mood.Label)

	ids := started.IDs()
	answers := []string{"A", "A", "A", "A"}
	path := "/api/sessions/" + started.SessionID + "/complete"

	rec = do(t, h, http.MethodPost, path, map[string]any{
		"userId":      testutil.UserID,
		"questionIds": ids,
		"userAnswers": answers[:2],
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "userAnswers", decode[apiError](t, rec).Error.Field)

	rec = do(t, h, http.MethodPost, path, map[string]any{
		"userId":      testutil.UserID,
		"questionIds": ids,
		"userAnswers": answers,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assertCamelCaseKeys(t, rec.Body.Bytes())
	done := decode[services.CompletedSession](t, rec)
	assert.Equal(t, 4, done.TotalQuestions)
	assert.Equal(t, 4, done.CorrectAnswers)
	assert.Equal(t, 100, done.ScorePercentage)
	assert.True(t, done.MasteryAchieved)
	assert.NotEmpty(t, done.MasteryUpdates)
	assert.Zero(t, done.DeferredUpdates)

	rec = do(t, h, http.MethodPost, path, map[string]any{
		"userId":      testutil.UserID,
		"questionIds": ids,
		"userAnswers": answers,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/users/"+testutil.UserID+"/progress?subjectArea="+testutil.DomainMath, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[services.ProgressReport](t, rec)
	assert.Equal(t, len(done.MasteryUpdates), report.Summary.Topics)
	require.Len(t, report.RecentSessions, 1)
	assert.True(t, report.RecentSessions[0].MasteryAchieved)
	assertCamelCaseKeys(t, rec.Body.Bytes())
	assert.Contains(t, rec.Body.String(), `"recentSessions"`)
	assert.Contains(t, rec.Body.String(), `"masteryAchieved":true`)
}

// assertCamelCaseKeys fails on any snake_case object key in a JSON body.
func assertCamelCaseKeys(t *testing.T, body []byte) {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal(body, &v))
	var walk func(any)
	walk = func(v any) {
		switch x := v.(type) {
		case map[string]any:
			for k, child := range x {
				assert.NotContains(t, k, "_", "key %q", k)
				walk(child)
			}
		case []any:
			for _, child := range x {
				walk(child)
			}
		}
	}
	walk(v)
}

func TestStartSession_Errors(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/sessions", map[string]any{
		"userId": testutil.UserID, "subjectArea": "nowhere",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/sessions", map[string]any{
		"userId": testutil.UserID, "subjectArea": testutil.DomainMath, "sessionLength": 50,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "sessionLength", decode[apiError](t, rec).Error.Field)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsers(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/users", map[string]any{"id": "user-2", "displayName": "Bea"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/users/user-2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/users/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[apiError](t, rec).Error.Code)
}

func TestImportAndAdminEdits(t *testing.T) {
	h := newTestServer(t)

	body := "question_text,certification_id,difficulty_level,option_a,option_b,correct_answer\n" +
		"Which is a prime?,cert-ec6,foundation,7,8,A\n" +
		"Broken row,cert-ec6,foundation,only one,,A\n"
	req := httptest.NewRequest(http.MethodPost, "/api/admin/questions/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[services.ImportReport](t, rec)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 3, report.Errors[0].Line)

	qid := testutil.QuestionID(testutil.ConceptFraction, 0)
	rec = do(t, h, http.MethodPut, "/api/admin/questions/"+qid+"/answer", map[string]string{"correctAnswer": "C"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/admin/questions/"+qid+"/answer", map[string]string{"correctAnswer": "B"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"correctAnswer":"B"`)

	rec = do(t, h, http.MethodPut, "/api/admin/questions/"+qid+"/concept", map[string]string{"conceptId": testutil.ConceptGeometry})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"conceptId":"`+testutil.ConceptGeometry+`"`)
}

func TestContentHierarchy(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/certifications/"+testutil.CertificationID+"/domains", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), testutil.DomainMath)

	rec = do(t, h, http.MethodPost, "/api/domains/"+testutil.DomainMath+"/concepts", map[string]string{"name": "Measurement"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/concepts/"+testutil.ConceptFraction+"/questions?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = do(t, h, http.MethodGet, "/api/concepts/"+testutil.ConceptFraction+"/questions?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMoodAndMetrics(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/mood/curious", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	setting := decode[mood.Setting](t, rec)
	assert.Equal(t, mood.Calm, setting.Label)
	assert.True(t, setting.Fallback)
	assert.Equal(t, 100, setting.ReviewPct+setting.NewLearningPct+setting.ApplicationPct)

	rec = do(t, h, http.MethodGet, "/api/mood", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]mood.Setting](t, rec), 5)

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "certbloom_http_requests_total")
}
