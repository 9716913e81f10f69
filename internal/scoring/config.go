package scoring

import "fmt"

// PointTable maps a matched rank to the points it awards in one category.
// Consolation is paid when nothing matched but a first-place pick was made.
type PointTable struct {
	First       int `json:"first"`
	Second      int `json:"second"`
	Third       int `json:"third"`
	Consolation int `json:"consolation"`
}

// Points returns the points for a matched rank (RankNone returns 0)
func (t PointTable) Points(r Rank) int {
	switch r {
	case RankFirst:
		return t.First
	case RankSecond:
		return t.Second
	case RankThird:
		return t.Third
	default:
		return 0
	}
}

// Max returns the best possible award from this table
func (t PointTable) Max() int {
	best := t.First
	for _, p := range []int{t.Second, t.Third, t.Consolation} {
		if p > best {
			best = p
		}
	}
	return best
}

func (t PointTable) validate(name string) error {
	if t.First < 0 || t.Second < 0 || t.Third < 0 || t.Consolation < 0 {
		return fmt.Errorf("%s point table has negative values", name)
	}
	return nil
}

// Config holds the event-specific scoring policy
type Config struct {
	FlagshipCategoryID string     `json:"flagship_category_id"`
	Flagship           PointTable `json:"flagship"`
	Ordinary           PointTable `json:"ordinary"`
}

// DefaultFlagshipTable is the flagship point table used when none is configured
var DefaultFlagshipTable = PointTable{First: 5, Second: 4, Third: 3, Consolation: 1}

// DefaultOrdinaryTable is the point table for every non-flagship category
var DefaultOrdinaryTable = PointTable{First: 3, Second: 2, Third: 1, Consolation: 0}

// DefaultConfig returns the standard point tables for the given flagship category
func DefaultConfig(flagshipCategoryID string) Config {
	return Config{
		FlagshipCategoryID: flagshipCategoryID,
		Flagship:           DefaultFlagshipTable,
		Ordinary:           DefaultOrdinaryTable,
	}
}

// Validate checks the configuration is usable
func (c Config) Validate() error {
	if c.FlagshipCategoryID == "" {
		return fmt.Errorf("flagship category id is required")
	}
	if err := c.Flagship.validate("flagship"); err != nil {
		return err
	}
	return c.Ordinary.validate("ordinary")
}

// IsFlagship reports whether categoryID is the configured flagship category
func (c Config) IsFlagship(categoryID string) bool {
	return categoryID != "" && categoryID == c.FlagshipCategoryID
}

// TableFor returns the point table that applies to a category
func (c Config) TableFor(categoryID string) PointTable {
	if c.IsFlagship(categoryID) {
		return c.Flagship
	}
	return c.Ordinary
}

// ValidateFlagship checks that the flagship id matches exactly one category.
func (c Config) ValidateFlagship(categories []Category) error {
	matches := 0
	for _, cat := range categories {
		if cat.ID == c.FlagshipCategoryID {
			matches++
		}
	}
	switch matches {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("flagship category %q not found", c.FlagshipCategoryID)
	default:
		return fmt.Errorf("flagship category %q appears %d times", c.FlagshipCategoryID, matches)
	}
}
