package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/abrezinsky/awardpicks/internal/logger"
	"github.com/abrezinsky/awardpicks/internal/models"
	"github.com/abrezinsky/awardpicks/internal/repository"
	"github.com/abrezinsky/awardpicks/internal/scoring"
	"github.com/abrezinsky/awardpicks/internal/services"
	"github.com/abrezinsky/awardpicks/internal/testutil"
	"github.com/abrezinsky/awardpicks/pkg/ballotfeed"
)

// testBallot is the ballot most service tests run against
var (
	testOrder  = []string{"goty", "best-narrative", "best-indie"}
	testBallot = map[string][]string{
		"goty":           {"astro-bot", "balatro", "metaphor", "elden-ring"},
		"best-narrative": {"metaphor", "silent-hill", "senua"},
		"best-indie":     {"balatro", "animal-well", "ufo-50"},
	}
)

// recordingBroadcaster captures broadcasts for assertions
type recordingBroadcaster struct {
	mu      sync.Mutex
	status  []bool
	winners [][2]string
	scores  []services.RecomputeSummary
}

func (b *recordingBroadcaster) BroadcastVotingStatus(open bool, closeTime string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = append(b.status, open)
}

func (b *recordingBroadcaster) BroadcastWinnerDeclared(categoryID, nomineeID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.winners = append(b.winners, [2]string{categoryID, nomineeID})
}

func (b *recordingBroadcaster) BroadcastScoresUpdated(summary services.RecomputeSummary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scores = append(b.scores, summary)
}

// testServices bundles every service over one repository
type testServices struct {
	repo        repository.FullRepository
	log         logger.Logger
	broadcaster *recordingBroadcaster
	settings    *services.SettingsService
	category    *services.CategoryService
	users       *services.UserService
	groups      *services.GroupService
	predictions *services.PredictionService
	scoring     *services.ScoringService
}

func newTestServices(t *testing.T, repo repository.FullRepository) *testServices {
	t.Helper()
	log := logger.New()
	b := &recordingBroadcaster{}

	settings := services.NewSettingsService(log, repo, "goty")
	settings.SetBroadcaster(b)
	category := services.NewCategoryService(log, repo, ballotfeed.NewMockClient())
	category.SetBroadcaster(b)
	category.SetFlagshipSource(settings)
	scoringSvc := services.NewScoringService(log, repo, settings, scoring.DefaultConfig("goty"), services.ScoringOptions{BatchSize: 2, Workers: 3})
	scoringSvc.SetBroadcaster(b)

	return &testServices{
		repo:        repo,
		log:         log,
		broadcaster: b,
		settings:    settings,
		category:    category,
		users:       services.NewUserService(log, repo),
		groups:      services.NewGroupService(log, repo, "http://picks.test"),
		predictions: services.NewPredictionService(log, repo, settings),
		scoring:     scoringSvc,
	}
}

// newSeededServices returns services over a fresh database holding testBallot
func newSeededServices(t *testing.T) *testServices {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	testutil.SeedBallot(t, repo, testOrder, testBallot)
	return newTestServices(t, repo)
}

func (ts *testServices) createUser(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := ts.users.CreateUser(context.Background(), name)
	if err != nil {
		t.Fatalf("CreateUser(%q) failed: %v", name, err)
	}
	return u
}

func (ts *testServices) pick(t *testing.T, userID, scope, categoryID, first, second, third string) {
	t.Helper()
	err := ts.predictions.SubmitPick(context.Background(), userID, scope, services.PickRequest{
		CategoryID: categoryID, FirstPlace: first, SecondPlace: second, ThirdPlace: third,
	})
	if err != nil {
		t.Fatalf("SubmitPick(%s, %s, %s) failed: %v", userID, scope, categoryID, err)
	}
}

func (ts *testServices) declare(t *testing.T, categoryID, nomineeID string) {
	t.Helper()
	if err := ts.category.DeclareWinner(context.Background(), categoryID, nomineeID, ""); err != nil {
		t.Fatalf("DeclareWinner(%s, %s) failed: %v", categoryID, nomineeID, err)
	}
}
