package services

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"

	"github.com/abrezinsky/awardpicks/internal/errors"
	"github.com/abrezinsky/awardpicks/internal/logger"
	"github.com/abrezinsky/awardpicks/internal/models"
	"github.com/abrezinsky/awardpicks/internal/repository"
	"github.com/abrezinsky/awardpicks/internal/scoring"
)

// PredictionServiceRepository defines the repository methods needed by PredictionService
type PredictionServiceRepository interface {
	repository.PredictionRepository
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// PredictionService handles a user's picks in the global scope and in groups
type PredictionService struct {
	log      logger.Logger
	repo     PredictionServiceRepository
	settings SettingsServicer
}

// NewPredictionService creates a new PredictionService
func NewPredictionService(log logger.Logger, repo PredictionServiceRepository, settings SettingsServicer) *PredictionService {
	return &PredictionService{log: log, repo: repo, settings: settings}
}

// BallotState is what a user sees when editing picks in one scope
type BallotState struct {
	Scope      string            `json:"scope"`
	VotingOpen bool              `json:"voting_open"`
	Categories []models.Category `json:"categories"`
	// Picks are the rows stored in this scope
	Picks scoring.PredictionSet `json:"picks"`
	// Effective is what scoring will use after the group fallback
	Effective     scoring.PredictionSet `json:"effective"`
	UsingFallback bool                  `json:"using_fallback"`
}

// PickRequest is one category pick submitted by a user
type PickRequest struct {
	CategoryID  string `json:"category_id"`
	FirstPlace  string `json:"first_place"`
	SecondPlace string `json:"second_place"`
	ThirdPlace  string `json:"third_place"`
}

func (r PickRequest) pick() scoring.Pick {
	return scoring.Pick{
		FirstPlace:  strings.TrimSpace(r.FirstPlace),
		SecondPlace: strings.TrimSpace(r.SecondPlace),
		ThirdPlace:  strings.TrimSpace(r.ThirdPlace),
	}
}

// normalizeScope maps the empty scope to the global one
func normalizeScope(scope string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return scoring.GlobalScope
	}
	return scope
}

// checkScopeAccess makes sure the user exists and, for a group scope, belongs to the group
func (s *PredictionService) checkScopeAccess(ctx context.Context, userID, scope string) error {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return notFoundOr(err, "user %q not found", userID)
	}
	if scope == scoring.GlobalScope {
		return nil
	}
	if _, err := s.repo.GetGroup(ctx, scope); err != nil {
		return notFoundOr(err, "group %q not found", scope)
	}
	ok, err := s.repo.IsMember(ctx, scope, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Forbiddenf("user %q is not a member of group %q", userID, scope)
	}
	return nil
}

// GetBallot returns the active ballot together with the user's picks in scope
func (s *PredictionService) GetBallot(ctx context.Context, userID, scope string) (*BallotState, error) {
	scope = normalizeScope(scope)
	if err := s.checkScopeAccess(ctx, userID, scope); err != nil {
		return nil, err
	}

	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]models.Category, 0, len(cats))
	for _, c := range cats {
		if c.Active {
			active = append(active, c)
		}
	}

	open, err := s.settings.IsVotingOpen(ctx)
	if err != nil {
		return nil, err
	}

	global, err := s.loadSet(ctx, userID, scoring.GlobalScope)
	if err != nil {
		return nil, err
	}

	state := &BallotState{
		Scope:      scope,
		VotingOpen: open,
		Categories: active,
		Picks:      global,
		Effective:  global,
	}
	if scope != scoring.GlobalScope {
		group, err := s.loadSet(ctx, userID, scope)
		if err != nil {
			return nil, err
		}
		state.Picks = group
		state.Effective = scoring.Resolve(scope, global, group)
		state.UsingFallback = group.IsEmpty()
	}
	return state, nil
}

func (s *PredictionService) loadSet(ctx context.Context, userID, scope string) (scoring.PredictionSet, error) {
	rows, err := s.repo.GetPredictions(ctx, userID, scope)
	if err != nil {
		return nil, err
	}
	return toPredictionSet(rows), nil
}

// SubmitPick saves one category pick for a user in a scope. An empty pick
// removes the stored row.
func (s *PredictionService) SubmitPick(ctx context.Context, userID, scope string, req PickRequest) error {
	scope = normalizeScope(scope)

	open, err := s.settings.IsVotingOpen(ctx)
	if err != nil {
		return err
	}
	if !open {
		return ErrVotingClosed
	}

	if err := s.checkScopeAccess(ctx, userID, scope); err != nil {
		return err
	}
	return s.savePick(ctx, userID, scope, req)
}

// savePick validates one pick against its category and writes it
func (s *PredictionService) savePick(ctx context.Context, userID, scope string, req PickRequest) error {
	cat, err := s.repo.GetCategory(ctx, req.CategoryID)
	if err != nil {
		return notFoundOr(err, "category %q not found", req.CategoryID)
	}
	if !cat.Active {
		return errors.Validationf("category %q is not open for picks", cat.ID)
	}
	if cat.WinnerID != "" {
		return ErrCategoryLocked
	}

	pick := req.pick()
	if err := validatePick(cat, pick); err != nil {
		return err
	}

	if pick.IsEmpty() {
		err := s.repo.DeletePrediction(ctx, userID, cat.ID, scope)
		if err != nil && err != repository.ErrNotFound {
			return err
		}
		return nil
	}

	err = s.repo.SavePrediction(ctx, models.Prediction{
		UserID:      userID,
		CategoryID:  cat.ID,
		Scope:       scope,
		FirstPlace:  pick.FirstPlace,
		SecondPlace: pick.SecondPlace,
		ThirdPlace:  pick.ThirdPlace,
	})
	if err != nil {
		return err
	}
	s.log.Debug("Pick saved", "user_id", userID, "scope", scope, "category_id", cat.ID)
	return nil
}

// ImportResult reports how a pick import went
type ImportResult struct {
	Imported int `json:"imported"`
	// Rejected maps category ids to the reason their pick was not saved
	Rejected map[string]string `json:"rejected"`
}

// ImportPicks saves picks from a loosely typed document keyed by category id,
// such as a spreadsheet export. Each pick is checked like SubmitPick; a pick
// that fails those checks is reported in Rejected and the rest still import.
func (s *PredictionService) ImportPicks(ctx context.Context, userID, scope string, docs map[string]any) (*ImportResult, error) {
	scope = normalizeScope(scope)

	open, err := s.settings.IsVotingOpen(ctx)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, ErrVotingClosed
	}
	if err := s.checkScopeAccess(ctx, userID, scope); err != nil {
		return nil, err
	}

	set := scoring.PredictionSetFromDocuments(docs)
	if len(set) == 0 {
		return nil, errors.Validation("document contains no usable picks")
	}

	catIDs := make([]string, 0, len(set))
	for id := range set {
		catIDs = append(catIDs, id)
	}
	sort.Strings(catIDs)

	result := &ImportResult{Rejected: map[string]string{}}
	for _, catID := range catIDs {
		p := set[catID]
		err := s.savePick(ctx, userID, scope, PickRequest{
			CategoryID:  catID,
			FirstPlace:  p.FirstPlace,
			SecondPlace: p.SecondPlace,
			ThirdPlace:  p.ThirdPlace,
		})
		if err == nil {
			result.Imported++
			continue
		}
		if !isPickRejection(err) {
			return nil, err
		}
		result.Rejected[catID] = err.Error()
	}

	s.log.Info("Picks imported", "user_id", userID, "scope", scope, "imported", result.Imported, "rejected", len(result.Rejected))
	return result, nil
}

// isPickRejection reports whether err came from checking the pick rather than from storage
func isPickRejection(err error) bool {
	var svcErr *ServiceError
	if stderrors.As(err, &svcErr) {
		return true
	}
	return errors.KindOf(err) != errors.ErrInternal
}

// validatePick rejects nominees from other categories and the same nominee in two places
func validatePick(cat *models.Category, pick scoring.Pick) error {
	seen := make(map[string]bool, 3)
	for _, id := range []string{pick.FirstPlace, pick.SecondPlace, pick.ThirdPlace} {
		if id == "" {
			continue
		}
		if !hasNominee(cat, id) {
			return errors.Validationf("nominee %q is not in category %q", id, cat.ID)
		}
		if seen[id] {
			return ErrDuplicateNominee
		}
		seen[id] = true
	}
	return nil
}

// ClearGroupPicks drops a user's group-scoped picks so the group falls back
// to their global picks again. Returns the number of rows removed.
func (s *PredictionService) ClearGroupPicks(ctx context.Context, userID, groupID string) (int64, error) {
	scope := normalizeScope(groupID)
	if scope == scoring.GlobalScope {
		return 0, errors.Validation("a group id is required")
	}

	open, err := s.settings.IsVotingOpen(ctx)
	if err != nil {
		return 0, err
	}
	if !open {
		return 0, ErrVotingClosed
	}

	if err := s.checkScopeAccess(ctx, userID, scope); err != nil {
		return 0, err
	}
	n, err := s.repo.ClearScope(ctx, userID, scope)
	if err != nil {
		return 0, err
	}
	s.log.Info("Group picks cleared", "user_id", userID, "group_id", scope, "rows", n)
	return n, nil
}
