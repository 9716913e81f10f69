// Package scoring computes prediction scores against official award results.
//
// Everything in this package is pure: functions read their inputs and return
// fresh values, so an Engine can be shared across goroutines.
package scoring

import "encoding/json"

// GlobalScope is the implicit scope every user belongs to
const GlobalScope = "global"

// Nominee is a candidate within a category
type Nominee struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Developer string `json:"developer,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// Category is one voted contest
type Category struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Nominees []Nominee `json:"nominees"`
}

// Pick is one user's ranked prediction for one category.
// An empty string means the slot was not filled.
type Pick struct {
	FirstPlace  string `json:"first_place,omitempty"`
	SecondPlace string `json:"second_place,omitempty"`
	ThirdPlace  string `json:"third_place,omitempty"`
}

// IsEmpty reports whether no slot is set
func (p Pick) IsEmpty() bool {
	return p.FirstPlace == "" && p.SecondPlace == "" && p.ThirdPlace == ""
}

// HasFirst reports whether a first-place pick was made
func (p Pick) HasFirst() bool {
	return p.FirstPlace != ""
}

// PredictionSet maps category id to the user's pick in one scope
type PredictionSet map[string]Pick

// IsEmpty reports whether the set carries no usable pick at all
func (s PredictionSet) IsEmpty() bool {
	for _, p := range s {
		if !p.IsEmpty() {
			return false
		}
	}
	return true
}

// Winners maps category id to the officially declared winning nominee id
type Winners map[string]string

// Decided reports whether a winner has been declared for the category
func (w Winners) Decided(categoryID string) bool {
	return w[categoryID] != ""
}

// Rank is the prediction slot that matched the winner
type Rank int

const (
	RankNone Rank = iota
	RankFirst
	RankSecond
	RankThird
)

// MarshalJSON encodes RankNone as null and the others as 1, 2 or 3
func (r Rank) MarshalJSON() ([]byte, error) {
	if r == RankNone {
		return []byte("null"), nil
	}
	return json.Marshal(int(r))
}

// UnmarshalJSON accepts null or 1..3
func (r *Rank) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = RankNone
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n < int(RankFirst) || n > int(RankThird) {
		*r = RankNone
		return nil
	}
	*r = Rank(n)
	return nil
}

// CategoryScore is the per-category line of a score breakdown
type CategoryScore struct {
	CategoryID    string `json:"category_id"`
	MatchedRank   Rank   `json:"matched_rank"`
	PointsAwarded int    `json:"points_awarded"`
	Consolation   bool   `json:"consolation,omitempty"`
}

// ScoreResult is a user's total for one scope
type ScoreResult struct {
	UserID    string          `json:"user_id,omitempty"`
	Total     int             `json:"total"`
	Breakdown []CategoryScore `json:"breakdown"`
}

// Member pairs a user with both of their prediction sets for scope resolution
type Member struct {
	UserID string
	Global PredictionSet
	Group  PredictionSet
}
