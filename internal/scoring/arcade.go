package scoring

// ArcadeResult holds common-categories-only scores for a group
type ArcadeResult struct {
	CommonCategoryIDs []string               `json:"common_category_ids"`
	Scores            map[string]ScoreResult `json:"scores"`
}

// CommonCategories returns the categories in which every member made a
// first-place pick, in the order of the category list. No members means no
// common categories.
func CommonCategories(sets map[string]PredictionSet, categories []Category) []Category {
	common := []Category{}
	if len(sets) == 0 {
		return common
	}

	seen := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		if _, dup := seen[cat.ID]; dup {
			continue
		}
		seen[cat.ID] = struct{}{}

		everyone := true
		for _, preds := range sets {
			if !preds[cat.ID].HasFirst() {
				everyone = false
				break
			}
		}
		if everyone {
			common = append(common, cat)
		}
	}
	return common
}

// ScoreArcade scores each member over the common categories only.
// sets must already be resolved for the group's scope.
func (e *Engine) ScoreArcade(sets map[string]PredictionSet, winners Winners, categories []Category) ArcadeResult {
	common := CommonCategories(sets, categories)

	ids := make([]string, len(common))
	for i, c := range common {
		ids[i] = c.ID
	}

	scores := make(map[string]ScoreResult, len(sets))
	for userID, preds := range sets {
		res := e.Score(preds, winners, common)
		res.UserID = userID
		scores[userID] = res
	}
	return ArcadeResult{CommonCategoryIDs: ids, Scores: scores}
}
