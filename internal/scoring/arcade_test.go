package scoring_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/abrezinsky/awardpicks/internal/scoring"
)

func numberedCategories(ids ...string) []scoring.Category {
	cats := make([]scoring.Category, len(ids))
	for i, id := range ids {
		cats[i] = scoring.Category{ID: id, Nominees: []scoring.Nominee{{ID: "win"}, {ID: "lose"}}}
	}
	return cats
}

func firstPicks(nominee string, categoryIDs ...string) scoring.PredictionSet {
	set := scoring.PredictionSet{}
	for _, id := range categoryIDs {
		set[id] = scoring.Pick{FirstPlace: nominee}
	}
	return set
}

func TestCommonCategories_Intersection(t *testing.T) {
	cats := numberedCategories("1", "2", "3", "4")
	sets := map[string]scoring.PredictionSet{
		"A": firstPicks("win", "1", "2", "3"),
		"B": firstPicks("win", "2", "3", "4"),
		"C": firstPicks("win", "2", "3"),
	}

	common := scoring.CommonCategories(sets, cats)

	var ids []string
	for _, c := range common {
		ids = append(ids, c.ID)
	}
	if !reflect.DeepEqual(ids, []string{"2", "3"}) {
		t.Errorf("expected [2 3], got %v", ids)
	}
}

func TestCommonCategories_SecondPlaceOnlyDoesNotCount(t *testing.T) {
	cats := numberedCategories("1")
	sets := map[string]scoring.PredictionSet{
		"A": firstPicks("win", "1"),
		"B": {"1": {SecondPlace: "win"}},
	}
	if common := scoring.CommonCategories(sets, cats); len(common) != 0 {
		t.Errorf("expected no common categories, got %v", common)
	}
}

func TestScoreArcade_IgnoresNonCommonCategories(t *testing.T) {
	e := scoring.New(scoring.DefaultConfig("goty"))
	cats := numberedCategories("1", "2", "3", "4")
	winners := scoring.Winners{"1": "win", "2": "win", "3": "win", "4": "win"}
	sets := map[string]scoring.PredictionSet{
		"A": firstPicks("win", "1", "2", "3"),
		"B": firstPicks("win", "2", "3", "4"),
		"C": firstPicks("win", "2", "3"),
	}

	res := e.ScoreArcade(sets, winners, cats)

	if !reflect.DeepEqual(res.CommonCategoryIDs, []string{"2", "3"}) {
		t.Errorf("expected common [2 3], got %v", res.CommonCategoryIDs)
	}
	for _, user := range []string{"A", "B", "C"} {
		score := res.Scores[user]
		if score.Total != 6 {
			t.Errorf("user %s: expected 6, got %d", user, score.Total)
		}
		for _, cs := range score.Breakdown {
			if cs.CategoryID == "1" || cs.CategoryID == "4" {
				t.Errorf("user %s: category %s should be ignored", user, cs.CategoryID)
			}
		}
	}

	// The standard score is unaffected
	if std := e.Score(sets["A"], winners, cats); std.Total != 9 {
		t.Errorf("expected standard total 9 for A, got %d", std.Total)
	}
}

func TestScoreArcade_EmptyGroup(t *testing.T) {
	e := scoring.New(scoring.DefaultConfig("goty"))

	res := e.ScoreArcade(map[string]scoring.PredictionSet{}, scoring.Winners{"1": "win"}, numberedCategories("1"))

	if len(res.CommonCategoryIDs) != 0 {
		t.Errorf("expected empty common set, got %v", res.CommonCategoryIDs)
	}
	if len(res.Scores) != 0 {
		t.Errorf("expected no scores, got %v", res.Scores)
	}

	res = e.ScoreArcade(nil, nil, nil)
	if res.CommonCategoryIDs == nil || res.Scores == nil {
		t.Error("expected non-nil empty collections")
	}
}

func TestScoreArcade_FlagshipConsolationApplies(t *testing.T) {
	e := scoring.New(scoring.DefaultConfig("goty"))
	cats := numberedCategories("goty", "2")
	winners := scoring.Winners{"goty": "win", "2": "win"}
	sets := map[string]scoring.PredictionSet{
		"A": {"goty": {FirstPlace: "lose"}, "2": {FirstPlace: "win"}},
		"B": {"goty": {FirstPlace: "win"}},
	}

	res := e.ScoreArcade(sets, winners, cats)

	if res.Scores["A"].Total != 1 {
		t.Errorf("expected consolation point for A, got %d", res.Scores["A"].Total)
	}
	if res.Scores["B"].Total != 5 {
		t.Errorf("expected 5 for B, got %d", res.Scores["B"].Total)
	}
}

func TestCompare(t *testing.T) {
	e := scoring.New(scoring.DefaultConfig("goty"))
	cats := numberedCategories("goty", "2", "3", "4")
	a := scoring.PredictionSet{
		"goty": {FirstPlace: "win"},
		"2":    {FirstPlace: "win"},
		"3":    {FirstPlace: "lose"},
		"4":    {SecondPlace: "win"},
	}
	b := scoring.PredictionSet{
		"goty": {FirstPlace: "win"},
		"2":    {FirstPlace: "lose"},
		"3":    {FirstPlace: "lose"},
		"4":    {FirstPlace: "win"},
	}

	cmp := e.Compare(a, b, cats)

	if cmp.Comparable != 3 {
		t.Errorf("expected 3 comparable, got %d", cmp.Comparable)
	}
	if cmp.Matches != 2 {
		t.Errorf("expected 2 matches, got %d", cmp.Matches)
	}
	if !cmp.FlagshipMatched {
		t.Error("expected flagship match")
	}
	want := []scoring.MatchedPair{{CategoryID: "goty", NomineeID: "win"}, {CategoryID: "3", NomineeID: "lose"}}
	if !reflect.DeepEqual(cmp.MatchedPairs, want) {
		t.Errorf("expected %v, got %v", want, cmp.MatchedPairs)
	}
	if got := cmp.Percentage(); math.Abs(got-66.666) > 0.01 {
		t.Errorf("expected ~66.67%%, got %f", got)
	}
}

func TestCompare_NothingComparable(t *testing.T) {
	e := scoring.New(scoring.DefaultConfig("goty"))

	cmp := e.Compare(scoring.PredictionSet{}, scoring.PredictionSet{"goty": {FirstPlace: "win"}}, numberedCategories("goty"))

	if cmp.Comparable != 0 || cmp.Matches != 0 {
		t.Errorf("expected 0/0, got %d/%d", cmp.Matches, cmp.Comparable)
	}
	if p := cmp.Percentage(); p != 0 || math.IsNaN(p) {
		t.Errorf("expected 0%%, got %f", p)
	}
	if cmp.FlagshipMatched {
		t.Error("expected no flagship match")
	}
}

func TestSummarize(t *testing.T) {
	e := scoring.New(scoring.DefaultConfig("goty"))
	cats := numberedCategories("goty", "2", "3", "4")
	winners := scoring.Winners{"goty": "win", "2": "win", "3": "win"}
	preds := scoring.PredictionSet{
		"goty": {FirstPlace: "win"},
		"2":    {FirstPlace: "lose", SecondPlace: "win"},
		"4":    {FirstPlace: "win"},
	}

	res := e.Score(preds, winners, cats)
	sum := e.Summarize(res, preds, winners, cats)

	if sum.Total != 7 {
		t.Errorf("expected total 7, got %d", sum.Total)
	}
	if sum.MaxPossible != 5+3+3 {
		t.Errorf("expected max 11, got %d", sum.MaxPossible)
	}
	if sum.Decided != 3 || sum.Participated != 2 || sum.Correct != 1 || sum.Podium != 2 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if sum.Accuracy != 50 {
		t.Errorf("expected 50%% accuracy, got %f", sum.Accuracy)
	}

	empty := e.Summarize(e.Score(nil, nil, cats), nil, nil, cats)
	if empty.Accuracy != 0 || empty.MaxPossible != 0 {
		t.Errorf("expected zero summary, got %+v", empty)
	}
}

func TestStandings(t *testing.T) {
	rows := scoring.Standings(map[string]scoring.ScoreResult{
		"carol": {Total: 7},
		"alice": {Total: 10},
		"bob":   {Total: 7},
		"dave":  {Total: 0},
	})

	want := []scoring.Standing{
		{Rank: 1, UserID: "alice", Total: 10},
		{Rank: 2, UserID: "bob", Total: 7},
		{Rank: 2, UserID: "carol", Total: 7},
		{Rank: 4, UserID: "dave", Total: 0},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("expected %v, got %v", want, rows)
	}

	if rows := scoring.Standings(nil); len(rows) != 0 {
		t.Errorf("expected no rows, got %v", rows)
	}
}
