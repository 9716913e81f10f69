package services

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/abrezinsky/awardpicks/internal/errors"
	"github.com/abrezinsky/awardpicks/internal/logger"
	"github.com/abrezinsky/awardpicks/internal/models"
	"github.com/abrezinsky/awardpicks/internal/repository"
	"github.com/abrezinsky/awardpicks/internal/scoring"
)

// Leaderboard modes
const (
	ModeStandard = "standard"
	ModeArcade   = "arcade"
)

// ScoringOptions tunes the bulk recompute
type ScoringOptions struct {
	BatchSize int
	Workers   int
}

// ScoringService runs every score calculation through one scoring.Engine:
// leaderboards, personal results, comparisons and the bulk recompute.
type ScoringService struct {
	log         logger.Logger
	repo        repository.FullRepository
	settings    SettingsServicer
	tables      scoring.Config
	opts        ScoringOptions
	broadcaster Broadcaster
	running     atomic.Bool
}

// NewScoringService creates a new ScoringService. tables supplies the point
// tables; the flagship id is read from settings on every call so admins can
// change it at runtime.
func NewScoringService(log logger.Logger, repo repository.FullRepository, settings SettingsServicer, tables scoring.Config, opts ScoringOptions) *ScoringService {
	if opts.BatchSize < 1 {
		opts.BatchSize = 400
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &ScoringService{log: log, repo: repo, settings: settings, tables: tables, opts: opts}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *ScoringService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// ballot is the scoring input shared by every user in one calculation
type ballot struct {
	engine     *scoring.Engine
	categories []scoring.Category
	winners    scoring.Winners
}

func (s *ScoringService) loadBallot(ctx context.Context) (*ballot, error) {
	flagship, err := s.settings.GetFlagshipCategoryID(ctx)
	if err != nil {
		return nil, err
	}
	cfg := s.tables
	cfg.FlagshipCategoryID = flagship

	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	categories := toScoringCategories(cats)
	if len(categories) > 0 {
		if err := cfg.ValidateFlagship(categories); err != nil {
			s.log.Warn("Flagship rules not in effect", "flagship", flagship, "error", err)
		}
	}
	return &ballot{
		engine:     scoring.New(cfg),
		categories: categories,
		winners:    winnersFromCategories(cats),
	}, nil
}

// LeaderboardEntry is one row of a leaderboard
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	Total         int    `json:"total"`
	UsingFallback bool   `json:"using_fallback,omitempty"`
}

// Leaderboard is a ranked scope
type Leaderboard struct {
	Scope             string             `json:"scope"`
	Mode              string             `json:"mode"`
	Decided           int                `json:"decided"`
	MaxPossible       int                `json:"max_possible"`
	CommonCategoryIDs []string           `json:"common_category_ids,omitempty"`
	Entries           []LeaderboardEntry `json:"entries"`
}

// scopeMembers loads everyone who is ranked in scope, with both prediction sets
func (s *ScoringService) scopeMembers(ctx context.Context, scope string) ([]scoring.Member, map[string]string, error) {
	names := make(map[string]string)
	var ids []string

	if scope == scoring.GlobalScope {
		users, err := s.repo.ListUsers(ctx)
		if err != nil {
			return nil, nil, err
		}
		for _, u := range users {
			ids = append(ids, u.ID)
			names[u.ID] = u.DisplayName
		}
	} else {
		if _, err := s.repo.GetGroup(ctx, scope); err != nil {
			return nil, nil, notFoundOr(err, "group %q not found", scope)
		}
		members, err := s.repo.ListMembers(ctx, scope)
		if err != nil {
			return nil, nil, err
		}
		for _, m := range members {
			ids = append(ids, m.UserID)
			names[m.UserID] = m.DisplayName
		}
	}

	if len(ids) == 0 {
		return []scoring.Member{}, names, nil
	}

	globalRows, err := s.repo.ListPredictionsForUsers(ctx, ids, scoring.GlobalScope)
	if err != nil {
		return nil, nil, err
	}
	global := groupPredictionsByUser(globalRows)

	group := map[string]scoring.PredictionSet{}
	if scope != scoring.GlobalScope {
		groupRows, err := s.repo.ListPredictionsForUsers(ctx, ids, scope)
		if err != nil {
			return nil, nil, err
		}
		group = groupPredictionsByUser(groupRows)
	}

	members := make([]scoring.Member, 0, len(ids))
	for _, id := range ids {
		members = append(members, scoring.Member{UserID: id, Global: global[id], Group: group[id]})
	}
	return members, names, nil
}

// Leaderboard ranks everyone in a scope. mode is ModeStandard (default) or,
// for groups only, ModeArcade, which only counts categories every member picked.
func (s *ScoringService) Leaderboard(ctx context.Context, scope, mode string) (*Leaderboard, error) {
	scope = normalizeScope(scope)
	if mode == "" {
		mode = ModeStandard
	}
	if mode != ModeStandard && mode != ModeArcade {
		return nil, errors.Validationf("unknown leaderboard mode %q", mode)
	}
	if mode == ModeArcade && scope == scoring.GlobalScope {
		return nil, errors.Validation("arcade mode is only available for groups")
	}

	b, err := s.loadBallot(ctx)
	if err != nil {
		return nil, err
	}
	members, names, err := s.scopeMembers(ctx, scope)
	if err != nil {
		return nil, err
	}

	board := &Leaderboard{
		Scope:       scope,
		Mode:        mode,
		Decided:     len(b.winners),
		MaxPossible: b.engine.MaxPossible(b.winners, b.categories),
		Entries:     []LeaderboardEntry{},
	}

	fallback := make(map[string]bool, len(members))
	for _, m := range members {
		fallback[m.UserID] = scope != scoring.GlobalScope && m.Group.IsEmpty()
	}

	var results map[string]scoring.ScoreResult
	if mode == ModeArcade {
		sets := make(map[string]scoring.PredictionSet, len(members))
		for _, m := range members {
			sets[m.UserID] = scoring.Resolve(scope, m.Global, m.Group)
		}
		arcade := b.engine.ScoreArcade(sets, b.winners, b.categories)
		board.CommonCategoryIDs = arcade.CommonCategoryIDs
		results = arcade.Scores
		common := make([]scoring.Category, 0, len(arcade.CommonCategoryIDs))
		for _, c := range b.categories {
			for _, id := range arcade.CommonCategoryIDs {
				if c.ID == id {
					common = append(common, c)
					break
				}
			}
		}
		board.MaxPossible = b.engine.MaxPossible(b.winners, common)
	} else {
		results = b.engine.ScoreMembers(scope, members, b.winners, b.categories)
	}

	for _, st := range scoring.Standings(results) {
		board.Entries = append(board.Entries, LeaderboardEntry{
			Rank:          st.Rank,
			UserID:        st.UserID,
			DisplayName:   names[st.UserID],
			Total:         st.Total,
			UsingFallback: fallback[st.UserID],
		})
	}
	return board, nil
}

// PersonalResults is one user's detailed score in a scope
type PersonalResults struct {
	UserID        string                  `json:"user_id"`
	Scope         string                  `json:"scope"`
	Rank          int                     `json:"rank"`
	Participants  int                     `json:"participants"`
	UsingFallback bool                    `json:"using_fallback"`
	Summary       scoring.Summary         `json:"summary"`
	Breakdown     []scoring.CategoryScore `json:"breakdown"`
}

// PersonalResults scores a user in a scope and places them among its members
func (s *ScoringService) PersonalResults(ctx context.Context, userID, scope string) (*PersonalResults, error) {
	scope = normalizeScope(scope)
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, notFoundOr(err, "user %q not found", userID)
	}

	b, err := s.loadBallot(ctx)
	if err != nil {
		return nil, err
	}
	members, _, err := s.scopeMembers(ctx, scope)
	if err != nil {
		return nil, err
	}

	var me *scoring.Member
	for i := range members {
		if members[i].UserID == userID {
			me = &members[i]
			break
		}
	}
	if me == nil {
		return nil, errors.Forbiddenf("user %q is not a member of group %q", userID, scope)
	}

	results := b.engine.ScoreMembers(scope, members, b.winners, b.categories)
	mine := results[userID]
	preds := scoring.Resolve(scope, me.Global, me.Group)

	out := &PersonalResults{
		UserID:        userID,
		Scope:         scope,
		Participants:  len(members),
		UsingFallback: scope != scoring.GlobalScope && me.Group.IsEmpty(),
		Summary:       b.engine.Summarize(mine, preds, b.winners, b.categories),
		Breakdown:     mine.Breakdown,
	}
	for _, st := range scoring.Standings(results) {
		if st.UserID == userID {
			out.Rank = st.Rank
			break
		}
	}
	return out, nil
}

// Compatibility is how often two users agree on first place
type Compatibility struct {
	UserA string `json:"user_a"`
	UserB string `json:"user_b"`
	scoring.Comparison
	Percentage float64 `json:"percentage"`
}

// Compare measures first-place agreement between two users' global picks
func (s *ScoringService) Compare(ctx context.Context, userA, userB string) (*Compatibility, error) {
	for _, id := range []string{userA, userB} {
		if _, err := s.repo.GetUser(ctx, id); err != nil {
			return nil, notFoundOr(err, "user %q not found", id)
		}
	}

	b, err := s.loadBallot(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListPredictionsForUsers(ctx, []string{userA, userB}, scoring.GlobalScope)
	if err != nil {
		return nil, err
	}
	sets := groupPredictionsByUser(rows)

	cmp := b.engine.Compare(sets[userA], sets[userB], b.categories)
	return &Compatibility{
		UserA:      userA,
		UserB:      userB,
		Comparison: cmp,
		Percentage: cmp.Percentage(),
	}, nil
}

// StoredScore is a persisted score with its decoded breakdown
type StoredScore struct {
	models.StoredScore
	Breakdown []scoring.CategoryScore `json:"breakdown"`
}

// StoredScores returns the scores written by the last recompute for a scope
func (s *ScoringService) StoredScores(ctx context.Context, scope string) ([]StoredScore, error) {
	scope = normalizeScope(scope)
	rows, err := s.repo.ListScores(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := make([]StoredScore, 0, len(rows))
	for _, row := range rows {
		item := StoredScore{StoredScore: row, Breakdown: []scoring.CategoryScore{}}
		if row.Breakdown != "" {
			if err := json.Unmarshal([]byte(row.Breakdown), &item.Breakdown); err != nil {
				s.log.Warn("Unreadable stored breakdown", "user_id", row.UserID, "scope", scope, "error", err)
			}
		}
		out = append(out, item)
	}
	return out, nil
}
