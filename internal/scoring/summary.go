package scoring

import "sort"

// Summary holds the caller-side denominators shown next to a score
type Summary struct {
	Total        int     `json:"total"`
	MaxPossible  int     `json:"max_possible"`
	Decided      int     `json:"decided"`      // categories with a declared winner
	Participated int     `json:"participated"` // decided categories the user made a first-place pick in
	Correct      int     `json:"correct"`      // first-place hits
	Podium       int     `json:"podium"`       // hits in any slot
	Accuracy     float64 `json:"accuracy"`     // Correct / Participated, 0..100
}

// Summarize derives accuracy figures for a score that was computed from preds
func (e *Engine) Summarize(res ScoreResult, preds PredictionSet, winners Winners, categories []Category) Summary {
	sum := Summary{
		Total:       res.Total,
		MaxPossible: e.MaxPossible(winners, categories),
	}
	for _, cs := range res.Breakdown {
		sum.Decided++
		if preds[cs.CategoryID].HasFirst() {
			sum.Participated++
		}
		if cs.MatchedRank == RankFirst {
			sum.Correct++
		}
		if cs.MatchedRank != RankNone {
			sum.Podium++
		}
	}
	sum.Accuracy = percent(sum.Correct, sum.Participated)
	return sum
}

// Standing is one leaderboard row
type Standing struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Total  int    `json:"total"`
}

// Standings orders results by total (highest first, ties by user id) and
// assigns competition ranks, so equal totals share a rank (1, 1, 3).
func Standings(results map[string]ScoreResult) []Standing {
	rows := make([]Standing, 0, len(results))
	for userID, res := range results {
		rows = append(rows, Standing{UserID: userID, Total: res.Total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].UserID < rows[j].UserID
	})
	for i := range rows {
		if i > 0 && rows[i].Total == rows[i-1].Total {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
	return rows
}
