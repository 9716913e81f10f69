package services

import (
	"github.com/abrezinsky/awardpicks/internal/models"
	"github.com/abrezinsky/awardpicks/internal/scoring"
)

// toScoringCategories returns the active categories in engine form
func toScoringCategories(cats []models.Category) []scoring.Category {
	out := make([]scoring.Category, 0, len(cats))
	for _, c := range cats {
		if !c.Active {
			continue
		}
		sc := scoring.Category{ID: c.ID, Name: c.Name, Nominees: make([]scoring.Nominee, 0, len(c.Nominees))}
		for _, n := range c.Nominees {
			sc.Nominees = append(sc.Nominees, scoring.Nominee{ID: n.ID, Name: n.Name, Developer: n.Developer, ImageURL: n.ImageURL})
		}
		out = append(out, sc)
	}
	return out
}

// winnersFromCategories collects the declared winners of active categories
func winnersFromCategories(cats []models.Category) scoring.Winners {
	w := make(scoring.Winners)
	for _, c := range cats {
		if c.Active && c.WinnerID != "" {
			w[c.ID] = c.WinnerID
		}
	}
	return w
}

// toPredictionSet turns stored rows into a set. Rows may span several users;
// callers pass rows for one user and one scope.
func toPredictionSet(preds []models.Prediction) scoring.PredictionSet {
	set := make(scoring.PredictionSet, len(preds))
	for _, p := range preds {
		set[p.CategoryID] = scoring.Pick{FirstPlace: p.FirstPlace, SecondPlace: p.SecondPlace, ThirdPlace: p.ThirdPlace}
	}
	return set
}

// groupPredictionsByUser splits a multi-user result into per-user sets
func groupPredictionsByUser(preds []models.Prediction) map[string]scoring.PredictionSet {
	out := make(map[string]scoring.PredictionSet)
	for _, p := range preds {
		set, ok := out[p.UserID]
		if !ok {
			set = make(scoring.PredictionSet)
			out[p.UserID] = set
		}
		set[p.CategoryID] = scoring.Pick{FirstPlace: p.FirstPlace, SecondPlace: p.SecondPlace, ThirdPlace: p.ThirdPlace}
	}
	return out
}
