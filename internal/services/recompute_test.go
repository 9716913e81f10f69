package services_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/abrezinsky/awardpicks/internal/models"
	"github.com/abrezinsky/awardpicks/internal/repository/mock"
	"github.com/abrezinsky/awardpicks/internal/services"
	"github.com/abrezinsky/awardpicks/internal/testutil"
)

// seedRecompute creates five users, a three-member group g1 and a few picks.
// Winners: goty=astro-bot, best-narrative=metaphor.
func seedRecompute(t *testing.T) (*mock.Repository, *testServices) {
	t.Helper()
	ctx := context.Background()
	repo := testutil.NewTestRepository(t)
	testutil.SeedBallot(t, repo, testOrder, testBallot)
	for _, id := range []string{"u1", "u2", "u3", "u4", "u5"} {
		testutil.SeedUser(t, repo, id, "User "+id)
	}
	if err := repo.CreateGroup(ctx, models.Group{ID: "g1", Name: "Pool", InviteCode: "pool1234", OwnerID: "u1"}); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	for _, id := range []string{"u2", "u3"} {
		if _, err := repo.AddMember(ctx, "g1", id); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
	}

	m := mock.NewRepository(repo)
	ts := newTestServices(t, m)

	ts.pick(t, "u1", "", "goty", "astro-bot", "", "")          // 5
	ts.pick(t, "u2", "", "goty", "balatro", "", "")            // 1
	ts.pick(t, "u2", "", "best-narrative", "metaphor", "", "") // 3
	ts.pick(t, "u3", "", "goty", "balatro", "astro-bot", "")   // 4
	ts.pick(t, "u2", "g1", "goty", "astro-bot", "", "")        // group only: 5

	ts.declare(t, "goty", "astro-bot")
	ts.declare(t, "best-narrative", "metaphor")
	return m, ts
}

func storedTotals(t *testing.T, ts *testServices, scope string) map[string]int {
	t.Helper()
	scores, err := ts.scoring.StoredScores(context.Background(), scope)
	if err != nil {
		t.Fatalf("StoredScores failed: %v", err)
	}
	out := make(map[string]int, len(scores))
	for _, s := range scores {
		out[s.UserID] = s.Total
	}
	return out
}

func TestScoringService_Recompute(t *testing.T) {
	_, ts := seedRecompute(t)
	ctx := context.Background()

	summary, err := ts.scoring.Recompute(ctx, false)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if summary.Scopes != 2 {
		t.Errorf("expected 2 scopes, got %d", summary.Scopes)
	}
	// Global: 5 users in batches of 2; group: 3 members in batches of 2
	if summary.Scored != 8 || summary.Batches != 5 {
		t.Errorf("expected 8 scored in 5 batches, got %d in %d", summary.Scored, summary.Batches)
	}
	if summary.Resumed {
		t.Error("fresh run should not report resumed")
	}

	global := storedTotals(t, ts, "global")
	want := map[string]int{"u1": 5, "u2": 4, "u3": 4, "u4": 0, "u5": 0}
	for id, total := range want {
		if global[id] != total {
			t.Errorf("global %s: expected %d, got %d", id, total, global[id])
		}
	}

	group := storedTotals(t, ts, "g1")
	wantGroup := map[string]int{"u1": 5, "u2": 5, "u3": 4}
	if len(group) != 3 {
		t.Fatalf("expected 3 group scores, got %d", len(group))
	}
	for id, total := range wantGroup {
		if group[id] != total {
			t.Errorf("g1 %s: expected %d, got %d", id, total, group[id])
		}
	}

	scores, _ := ts.scoring.StoredScores(ctx, "global")
	for _, s := range scores {
		if s.UserID == "u3" {
			if len(s.Breakdown) != 2 || s.Breakdown[0].PointsAwarded != 4 {
				t.Errorf("unexpected stored breakdown %+v", s.Breakdown)
			}
			if s.DisplayName != "User u3" {
				t.Errorf("expected display name, got %q", s.DisplayName)
			}
		}
	}

	if len(ts.broadcaster.scores) != 1 || ts.broadcaster.scores[0].Scored != 8 {
		t.Errorf("expected one scores_updated broadcast, got %+v", ts.broadcaster.scores)
	}
	cursor, _ := ts.settings.GetSetting(ctx, "recompute_cursor")
	if cursor != "" {
		t.Errorf("expected cursor cleared after success, got %q", cursor)
	}

	// Running again overwrites rather than accumulates
	if _, err := ts.scoring.Recompute(ctx, false); err != nil {
		t.Fatalf("second Recompute failed: %v", err)
	}
	if got := storedTotals(t, ts, "global")["u1"]; got != 5 {
		t.Errorf("expected u1 still 5 after rerun, got %d", got)
	}
}

func TestScoringService_Recompute_ResumesAfterFailure(t *testing.T) {
	m, ts := seedRecompute(t)
	ctx := context.Background()

	m.UpsertScoresError = stderrors.New("write limit exceeded")
	m.FailUpsertScoresAfter = 1

	summary, err := ts.scoring.Recompute(ctx, false)
	if err == nil {
		t.Fatal("expected failure on the second batch")
	}
	if summary == nil || summary.Scored != 2 || summary.Batches != 1 {
		t.Fatalf("expected one committed batch of 2, got %+v", summary)
	}
	cursor, _ := ts.settings.GetSetting(ctx, "recompute_cursor")
	if cursor != "global/u2" {
		t.Fatalf("expected cursor global/u2, got %q", cursor)
	}
	if len(ts.broadcaster.scores) != 0 {
		t.Error("failed run must not broadcast")
	}

	m.UpsertScoresError = nil
	calls := m.UpsertScoresCalls

	summary, err = ts.scoring.Recompute(ctx, true)
	if err != nil {
		t.Fatalf("resumed Recompute failed: %v", err)
	}
	if !summary.Resumed || summary.ResumedAt != "global/u2" {
		t.Errorf("expected resume from global/u2, got %+v", summary)
	}
	// u3..u5 globally (2 batches) and the three group members (2 batches)
	if summary.Scored != 6 || m.UpsertScoresCalls-calls != 4 {
		t.Errorf("expected 6 scored in 4 batches, got %d in %d", summary.Scored, m.UpsertScoresCalls-calls)
	}

	global := storedTotals(t, ts, "global")
	if len(global) != 5 {
		t.Errorf("expected all 5 global scores after resume, got %d", len(global))
	}
	if global["u3"] != 4 {
		t.Errorf("expected u3 4, got %d", global["u3"])
	}
}

func TestScoringService_Recompute_ResumeInsideGroup(t *testing.T) {
	m, ts := seedRecompute(t)
	ctx := context.Background()

	// Three global batches succeed, the first group batch succeeds, the last fails
	m.UpsertScoresError = stderrors.New("boom")
	m.FailUpsertScoresAfter = 4

	if _, err := ts.scoring.Recompute(ctx, false); err == nil {
		t.Fatal("expected failure")
	}
	cursor, _ := ts.settings.GetSetting(ctx, "recompute_cursor")
	if cursor != "g1/u2" {
		t.Fatalf("expected cursor g1/u2, got %q", cursor)
	}

	m.UpsertScoresError = nil
	summary, err := ts.scoring.Recompute(ctx, true)
	if err != nil {
		t.Fatalf("resumed Recompute failed: %v", err)
	}
	if summary.Scored != 1 || summary.Scopes != 1 {
		t.Errorf("expected only u3 in g1 left, got %+v", summary)
	}
	if got := storedTotals(t, ts, "g1")["u3"]; got != 4 {
		t.Errorf("expected g1 u3 4, got %d", got)
	}
}

func TestScoringService_Recompute_StaleCursorStartsOver(t *testing.T) {
	_, ts := seedRecompute(t)
	ctx := context.Background()

	ts.settings.SetSetting(ctx, "recompute_cursor", "deleted-group/u1")
	summary, err := ts.scoring.Recompute(ctx, true)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if summary.Resumed || summary.Scored != 8 {
		t.Errorf("expected a full run, got %+v", summary)
	}
}

func TestScoringService_Recompute_LoadError(t *testing.T) {
	m, ts := seedRecompute(t)
	m.GetPredictionsError = stderrors.New("disk full")

	if _, err := ts.scoring.Recompute(context.Background(), false); err == nil {
		t.Fatal("expected error")
	}
	if ts.scoring.IsRecomputing() {
		t.Error("running flag must reset after failure")
	}
}

func TestScoringService_Recompute_Cancelled(t *testing.T) {
	_, ts := seedRecompute(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ts.scoring.Recompute(ctx, false); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestScoringService_StartScheduler(t *testing.T) {
	_, ts := seedRecompute(t)

	sched, err := ts.scoring.StartScheduler(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("StartScheduler failed: %v", err)
	}
	defer sched.Shutdown()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ts.broadcaster.mu.Lock()
		n := len(ts.broadcaster.scores)
		ts.broadcaster.mu.Unlock()
		if n > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("scheduled recompute never ran")
}

func TestScoringService_Recompute_RejectsConcurrentRun(t *testing.T) {
	_, ts := seedRecompute(t)
	ctx := context.Background()

	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := ts.scoring.Recompute(ctx, false)
			errs <- err
		}()
	}
	var ok, busy int
	for i := 0; i < 4; i++ {
		switch err := <-errs; err {
		case nil:
			ok++
		case services.ErrRecomputeRunning:
			busy++
		default:
			t.Errorf("unexpected error %v", err)
		}
	}
	if ok == 0 || ok+busy != 4 {
		t.Errorf("expected at least one run to succeed, got %d ok and %d busy", ok, busy)
	}
}
