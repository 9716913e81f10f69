package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abrezinsky/awardpicks/internal/auth"
	"github.com/abrezinsky/awardpicks/internal/handlers"
	"github.com/abrezinsky/awardpicks/internal/logger"
	"github.com/abrezinsky/awardpicks/internal/repository/mock"
	"github.com/abrezinsky/awardpicks/internal/scoring"
	"github.com/abrezinsky/awardpicks/internal/services"
	"github.com/abrezinsky/awardpicks/internal/testutil"
	"github.com/abrezinsky/awardpicks/pkg/ballotfeed"
)

const testPassword = "trophy-stage-encore"

var (
	testOrder  = []string{"goty", "best-narrative", "best-indie"}
	testBallot = map[string][]string{
		"goty":           {"astro-bot", "balatro", "metaphor", "elden-ring"},
		"best-narrative": {"metaphor", "silent-hill", "senua"},
		"best-indie":     {"balatro", "animal-well", "ufo-50"},
	}
)

// testSetup wires the real services over an in-memory database
type testSetup struct {
	repo       *mock.Repository
	feed       *ballotfeed.MockClient
	handlers   *handlers.Handlers
	router     http.Handler
	authCookie *http.Cookie
}

func newTestSetup(t *testing.T, feedOpts ...ballotfeed.MockOption) *testSetup {
	t.Helper()

	base := testutil.NewTestRepository(t)
	testutil.SeedBallot(t, base, testOrder, testBallot)
	repo := mock.NewRepository(base)
	log := logger.New()
	feed := ballotfeed.NewMockClient(feedOpts...)

	settings := services.NewSettingsService(log, repo, "goty")
	category := services.NewCategoryService(log, repo, feed)
	category.SetFlagshipSource(settings)
	svc := handlers.Services{
		Category:    category,
		Users:       services.NewUserService(log, repo),
		Groups:      services.NewGroupService(log, repo, "http://picks.test"),
		Predictions: services.NewPredictionService(log, repo, settings),
		Scoring:     services.NewScoringService(log, repo, settings, scoring.DefaultConfig("goty"), services.ScoringOptions{BatchSize: 10, Workers: 2}),
		Settings:    settings,
	}
	h := handlers.New(svc, auth.New(testPassword), nil, log, nil)

	token, ok := h.Auth.Login(testPassword)
	if !ok {
		t.Fatal("test login failed")
	}

	return &testSetup{
		repo:       repo,
		feed:       feed,
		handlers:   h,
		router:     h.Router(),
		authCookie: &http.Cookie{Name: auth.CookieName, Value: token},
	}
}

// do sends a request through the router. body is JSON-encoded unless nil.
func (ts *testSetup) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// admin is do with the admin session cookie attached
func (ts *testSetup) admin(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(ts.authCookie)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[handlers.APIError](t, rec).Code
}

// createUser registers a participant through the API and returns its id
func (ts *testSetup) createUser(t *testing.T, name string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/users", handlers.UserCreateRequest{DisplayName: name})
	expectStatus(t, rec, http.StatusCreated)
	return decode[struct {
		ID string `json:"id"`
	}](t, rec).ID
}

// pick submits a global pick through the API
func (ts *testSetup) pick(t *testing.T, userID, categoryID, first, second, third string) {
	t.Helper()
	rec := ts.do(t, http.MethodPut, "/api/users/"+userID+"/picks/"+categoryID, handlers.PickSubmitRequest{
		FirstPlace: first, SecondPlace: second, ThirdPlace: third,
	})
	expectStatus(t, rec, http.StatusOK)
}

func (ts *testSetup) declare(t *testing.T, categoryID, nomineeID string) {
	t.Helper()
	rec := ts.admin(t, http.MethodPut, "/api/admin/categories/"+categoryID+"/winner", handlers.WinnerRequest{NomineeID: nomineeID})
	expectStatus(t, rec, http.StatusOK)
}
