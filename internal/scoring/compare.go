package scoring

// MatchedPair is a category where two users made the same first-place pick
type MatchedPair struct {
	CategoryID string `json:"category_id"`
	NomineeID  string `json:"nominee_id"`
}

// Comparison summarises how often two users agree on first place
type Comparison struct {
	Matches         int           `json:"matches"`
	Comparable      int           `json:"comparable"`
	FlagshipMatched bool          `json:"flagship_matched"`
	MatchedPairs    []MatchedPair `json:"matched_pairs"`
}

// Percentage returns matches/comparable as 0..100, or 0 with nothing to compare
func (c Comparison) Percentage() float64 {
	return percent(c.Matches, c.Comparable)
}

// Compare counts first-place agreement between two prediction sets.
// Official results play no part.
func (e *Engine) Compare(a, b PredictionSet, categories []Category) Comparison {
	cmp := Comparison{MatchedPairs: []MatchedPair{}}
	seen := make(map[string]struct{}, len(categories))

	for _, cat := range categories {
		if _, dup := seen[cat.ID]; dup {
			continue
		}
		seen[cat.ID] = struct{}{}

		pa, pb := a[cat.ID], b[cat.ID]
		if !pa.HasFirst() || !pb.HasFirst() {
			continue
		}
		cmp.Comparable++
		if pa.FirstPlace != pb.FirstPlace {
			continue
		}
		cmp.Matches++
		cmp.MatchedPairs = append(cmp.MatchedPairs, MatchedPair{CategoryID: cat.ID, NomineeID: pa.FirstPlace})
		if e.cfg.IsFlagship(cat.ID) {
			cmp.FlagshipMatched = true
		}
	}
	return cmp
}

func percent(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) * 100 / float64(den)
}
