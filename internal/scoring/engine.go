package scoring

// Engine scores prediction sets under one Config
type Engine struct {
	cfg Config
}

// New creates an Engine for the given configuration
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Resolve picks the prediction set that applies to a scope.
// Outside the global scope an empty group set falls back to the global set in
// full; a non-empty group set is used on its own, never merged per category.
func Resolve(scope string, global, group PredictionSet) PredictionSet {
	if scope == "" || scope == GlobalScope {
		return global
	}
	if group.IsEmpty() {
		return global
	}
	return group
}

// matchRank checks first, second and third in that order and stops at the first hit
func matchRank(p Pick, winner string) Rank {
	if winner == "" {
		return RankNone
	}
	switch winner {
	case p.FirstPlace:
		return RankFirst
	case p.SecondPlace:
		return RankSecond
	case p.ThirdPlace:
		return RankThird
	}
	return RankNone
}

// ScoreCategory scores a single pick against a single winner
func (e *Engine) ScoreCategory(categoryID string, p Pick, winner string) CategoryScore {
	table := e.cfg.TableFor(categoryID)
	cs := CategoryScore{CategoryID: categoryID}

	cs.MatchedRank = matchRank(p, winner)
	if cs.MatchedRank != RankNone {
		cs.PointsAwarded = table.Points(cs.MatchedRank)
		return cs
	}

	if e.cfg.IsFlagship(categoryID) && p.HasFirst() && table.Consolation > 0 {
		cs.PointsAwarded = table.Consolation
		cs.Consolation = true
	}
	return cs
}

// Score totals one user's resolved predictions over every decided category.
// Categories without a declared winner are skipped; a category listed twice
// is only scored once.
func (e *Engine) Score(preds PredictionSet, winners Winners, categories []Category) ScoreResult {
	res := ScoreResult{Breakdown: []CategoryScore{}}
	seen := make(map[string]struct{}, len(categories))

	for _, cat := range categories {
		if _, dup := seen[cat.ID]; dup {
			continue
		}
		seen[cat.ID] = struct{}{}

		winner := winners[cat.ID]
		if winner == "" {
			continue
		}

		cs := e.ScoreCategory(cat.ID, preds[cat.ID], winner)
		res.Total += cs.PointsAwarded
		res.Breakdown = append(res.Breakdown, cs)
	}
	return res
}

// ScoreMembers resolves and scores every member of a scope independently
func (e *Engine) ScoreMembers(scope string, members []Member, winners Winners, categories []Category) map[string]ScoreResult {
	out := make(map[string]ScoreResult, len(members))
	for _, m := range members {
		res := e.Score(Resolve(scope, m.Global, m.Group), winners, categories)
		res.UserID = m.UserID
		out[m.UserID] = res
	}
	return out
}

// MaxPossible is the best total achievable over the decided categories
func (e *Engine) MaxPossible(winners Winners, categories []Category) int {
	total := 0
	seen := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		if _, dup := seen[cat.ID]; dup {
			continue
		}
		seen[cat.ID] = struct{}{}
		if winners.Decided(cat.ID) {
			total += e.cfg.TableFor(cat.ID).Max()
		}
	}
	return total
}
