package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/abrezinsky/awardpicks/internal/errors"
	"github.com/abrezinsky/awardpicks/internal/logger"
	"github.com/abrezinsky/awardpicks/internal/models"
	"github.com/abrezinsky/awardpicks/internal/repository"
	"github.com/abrezinsky/awardpicks/internal/scoring"
	"github.com/abrezinsky/awardpicks/pkg/ballotfeed"
)

// CategoryServiceRepository defines the repository methods needed by CategoryService
type CategoryServiceRepository interface {
	repository.CategoryRepository
	repository.SettingsRepository
}

// CategoryService handles ballot business logic: categories, nominees and results
type CategoryService struct {
	log         logger.Logger
	repo        CategoryServiceRepository
	client      ballotfeed.Client
	broadcaster Broadcaster
	flagship    FlagshipSource
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(log logger.Logger, repo CategoryServiceRepository, client ballotfeed.Client) *CategoryService {
	return &CategoryService{log: log, repo: repo, client: client}
}

// SetBroadcaster sets the broadcaster used when winners are declared
func (s *CategoryService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetFlagshipSource sets where the current flagship id is read from.
// Without one only the stored setting is consulted.
func (s *CategoryService) SetFlagshipSource(src FlagshipSource) {
	s.flagship = src
}

// flagshipID returns the flagship id in effect, or "" when none is known
func (s *CategoryService) flagshipID(ctx context.Context) (string, error) {
	if s.flagship != nil {
		return s.flagship.GetFlagshipCategoryID(ctx)
	}
	id, err := s.repo.GetSetting(ctx, settingFlagship)
	if err != nil && err != repository.ErrNotFound {
		return "", err
	}
	return id, nil
}

// Category represents a category for create/update operations
type Category struct {
	ID           string
	Name         string
	Description  string
	DisplayOrder int
	Active       bool
}

// Nominee represents a nominee for create/update operations
type Nominee struct {
	ID           string
	Name         string
	Developer    string
	ImageURL     string
	DisplayOrder int
}

// SyncResult contains the result of a ballot feed sync
type SyncResult struct {
	Status            string `json:"status"`
	Message           string `json:"message,omitempty"`
	CategoriesCreated int    `json:"categories_created"`
	CategoriesUpdated int    `json:"categories_updated"`
	NomineesCreated   int    `json:"nominees_created"`
	NomineesUpdated   int    `json:"nominees_updated"`
	WinnersDeclared   int    `json:"winners_declared"`
	WinnersSkipped    int    `json:"winners_skipped"`
	FlagshipWarning   string `json:"flagship_warning,omitempty"`
}

// ListCategories returns the active ballot in display order
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	all, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]models.Category, 0, len(all))
	for _, c := range all {
		if c.Active {
			active = append(active, c)
		}
	}
	return active, nil
}

// ListAllCategories returns every category including inactive ones
func (s *CategoryService) ListAllCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

// GetCategory returns one category with nominees
func (s *CategoryService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	cat, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "category %q not found", id)
	}
	return cat, nil
}

// CreateCategory creates a category. The id is derived from the name when not supplied.
func (s *CategoryService) CreateCategory(ctx context.Context, cat Category) (*models.Category, error) {
	name := strings.TrimSpace(cat.Name)
	if name == "" {
		return nil, errors.Validation("category name is required")
	}
	id := makeID(cat.ID, name)
	if id == "" {
		return nil, errors.Validationf("cannot derive an id from %q", name)
	}

	m := models.Category{ID: id, Name: name, Description: cat.Description, DisplayOrder: cat.DisplayOrder, Active: cat.Active}
	if err := s.repo.CreateCategory(ctx, m); err != nil {
		if err == repository.ErrDuplicate {
			return nil, errors.Conflictf("category %q already exists", id)
		}
		return nil, err
	}
	s.log.Info("Category created", "id", id, "name", name)
	m.Nominees = []models.Nominee{}
	return &m, nil
}

// UpdateCategory updates a category's details
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, cat Category) error {
	if strings.TrimSpace(cat.Name) == "" {
		return errors.Validation("category name is required")
	}
	err := s.repo.UpdateCategory(ctx, models.Category{
		ID: id, Name: strings.TrimSpace(cat.Name), Description: cat.Description, DisplayOrder: cat.DisplayOrder, Active: cat.Active,
	})
	return notFoundOr(err, "category %q not found", id)
}

// DeleteCategory removes a category with its nominees, result and picks.
// The flagship category cannot be deleted while it is the flagship.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	flagship, err := s.flagshipID(ctx)
	if err != nil {
		return err
	}
	if flagship != "" && flagship == id {
		return errors.Conflictf("category %q is the flagship category; choose another flagship first", id)
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return notFoundOr(err, "category %q not found", id)
	}
	s.log.Info("Category deleted", "id", id)
	return nil
}

// AddNominee adds a nominee to a category
func (s *CategoryService) AddNominee(ctx context.Context, categoryID string, n Nominee) (*models.Nominee, error) {
	name := strings.TrimSpace(n.Name)
	if name == "" {
		return nil, errors.Validation("nominee name is required")
	}
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	id := makeID(n.ID, name)
	if id == "" {
		return nil, errors.Validationf("cannot derive an id from %q", name)
	}

	m := models.Nominee{ID: id, CategoryID: categoryID, Name: name, Developer: n.Developer, ImageURL: n.ImageURL, DisplayOrder: n.DisplayOrder}
	if err := s.repo.CreateNominee(ctx, m); err != nil {
		if err == repository.ErrDuplicate {
			return nil, errors.Conflictf("nominee %q already exists in %q", id, categoryID)
		}
		return nil, err
	}
	return &m, nil
}

// UpdateNominee updates a nominee's details
func (s *CategoryService) UpdateNominee(ctx context.Context, categoryID, nomineeID string, n Nominee) error {
	if strings.TrimSpace(n.Name) == "" {
		return errors.Validation("nominee name is required")
	}
	err := s.repo.UpdateNominee(ctx, models.Nominee{
		ID: nomineeID, CategoryID: categoryID, Name: strings.TrimSpace(n.Name), Developer: n.Developer, ImageURL: n.ImageURL, DisplayOrder: n.DisplayOrder,
	})
	return notFoundOr(err, "nominee %q not found in %q", nomineeID, categoryID)
}

// DeleteNominee removes a nominee from a category
func (s *CategoryService) DeleteNominee(ctx context.Context, categoryID, nomineeID string) error {
	err := s.repo.DeleteNominee(ctx, categoryID, nomineeID)
	return notFoundOr(err, "nominee %q not found in %q", nomineeID, categoryID)
}

// DeclareWinner records the official winner of a category and notifies clients.
// The winner must be one of the category's nominees.
func (s *CategoryService) DeclareWinner(ctx context.Context, categoryID, nomineeID, note string) error {
	cat, err := s.GetCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	nomineeID = strings.TrimSpace(nomineeID)
	if !hasNominee(cat, nomineeID) {
		return errors.Validationf("nominee %q is not in category %q", nomineeID, categoryID)
	}
	if err := s.repo.SetWinner(ctx, categoryID, nomineeID, note); err != nil {
		return err
	}

	s.log.Info("Winner declared", "category", categoryID, "nominee", nomineeID)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastWinnerDeclared(categoryID, nomineeID)
	}
	return nil
}

// ClearWinner removes a declared winner. Clients are sent an empty nominee.
func (s *CategoryService) ClearWinner(ctx context.Context, categoryID string) error {
	if err := s.repo.ClearWinner(ctx, categoryID); err != nil {
		return notFoundOr(err, "no winner declared for %q", categoryID)
	}
	s.log.Info("Winner cleared", "category", categoryID)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastWinnerDeclared(categoryID, "")
	}
	return nil
}

// ListWinners returns every declared result
func (s *CategoryService) ListWinners(ctx context.Context) ([]models.OfficialResult, error) {
	winners, err := s.repo.ListWinners(ctx)
	if err != nil {
		return nil, err
	}
	if winners == nil {
		winners = []models.OfficialResult{}
	}
	return winners, nil
}

// SeedMockCategories seeds the built-in sample ballot. Existing categories are
// refreshed rather than duplicated.
func (s *CategoryService) SeedMockCategories(ctx context.Context) (int, error) {
	result, err := s.applyBallot(ctx, ballotfeed.DefaultMockBallot())
	if err != nil {
		return 0, err
	}
	return result.CategoriesCreated, nil
}

// SyncFromFeed pulls the ballot and declared winners from a ballot feed.
// An empty feedURL uses the stored one.
func (s *CategoryService) SyncFromFeed(ctx context.Context, feedURL string) (*SyncResult, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		stored, err := s.repo.GetSetting(ctx, settingFeedURL)
		if err != nil && err != repository.ErrNotFound {
			return nil, err
		}
		feedURL = stored
	}
	if feedURL == "" && s.client.BaseURL() == "" {
		return nil, ErrNoFeedURL
	}
	if feedURL != "" {
		s.client.SetBaseURL(feedURL)
		if err := s.repo.SetSetting(ctx, settingFeedURL, feedURL); err != nil {
			return nil, fmt.Errorf("failed to save feed URL: %w", err)
		}
	}

	ballot, err := s.client.FetchBallot(ctx)
	if err != nil {
		return &SyncResult{
			Status:  "error",
			Message: fmt.Sprintf("Failed to fetch ballot: %v", err),
		}, nil
	}
	s.log.Info("Fetched ballot from feed", "categories", len(ballot.Categories))

	result, err := s.applyBallot(ctx, ballot)
	if err != nil {
		return nil, err
	}

	doc, err := s.client.FetchWinners(ctx)
	if err != nil {
		result.Status = "partial"
		result.Message = fmt.Sprintf("Ballot synced but winners could not be fetched: %v", err)
		return result, nil
	}
	if err := s.applyWinners(ctx, scoring.WinnersFromDocument(doc), result); err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("Synced %d categories and %d winners",
		result.CategoriesCreated+result.CategoriesUpdated, result.WinnersDeclared)
	return result, nil
}

// applyBallot upserts categories and nominees from a feed document
func (s *CategoryService) applyBallot(ctx context.Context, ballot *ballotfeed.BallotResponse) (*SyncResult, error) {
	result := &SyncResult{Status: "success"}

	for i, fc := range ballot.Categories {
		id := makeID(fc.ID.String(), fc.Name)
		if id == "" {
			s.log.Warn("Skipping feed category without usable id", "name", fc.Name)
			continue
		}
		order := fc.Order
		if order == 0 {
			order = i + 1
		}
		created, err := s.repo.UpsertCategory(ctx, models.Category{
			ID: id, Name: strings.TrimSpace(fc.Name), Description: fc.Description, DisplayOrder: order, Active: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upsert category %q: %w", id, err)
		}
		if created {
			result.CategoriesCreated++
		} else {
			result.CategoriesUpdated++
		}

		for j, fn := range fc.Nominees {
			nomID := makeID(fn.ID.String(), fn.Name)
			if nomID == "" {
				continue
			}
			created, err := s.repo.UpsertNominee(ctx, models.Nominee{
				ID: nomID, CategoryID: id, Name: strings.TrimSpace(fn.Name), Developer: fn.Developer, ImageURL: fn.ImageURL, DisplayOrder: j + 1,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to upsert nominee %q in %q: %w", nomID, id, err)
			}
			if created {
				result.NomineesCreated++
			} else {
				result.NomineesUpdated++
			}
		}
	}

	if ballot.Event != "" {
		if err := s.repo.SetSetting(ctx, settingEventName, ballot.Event); err != nil {
			return nil, err
		}
	}

	warning, err := s.checkFlagship(ctx)
	if err != nil {
		return nil, err
	}
	result.FlagshipWarning = warning
	return result, nil
}

// checkFlagship reports when the flagship id does not match exactly one category
func (s *CategoryService) checkFlagship(ctx context.Context) (string, error) {
	flagship, err := s.flagshipID(ctx)
	if err != nil || flagship == "" {
		return "", err
	}
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return "", err
	}
	cfg := scoring.Config{FlagshipCategoryID: flagship}
	if err := cfg.ValidateFlagship(toScoringCategories(cats)); err != nil {
		s.log.Warn("Ballot does not match flagship category", "flagship", flagship, "error", err)
		return err.Error(), nil
	}
	return "", nil
}

// applyWinners declares winners that match the ballot and skips the rest
func (s *CategoryService) applyWinners(ctx context.Context, winners scoring.Winners, result *SyncResult) error {
	if len(winners) == 0 {
		return nil
	}
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]*models.Category, len(cats))
	for i := range cats {
		byID[cats[i].ID] = &cats[i]
	}

	for catID, nomineeID := range winners {
		cat, ok := byID[catID]
		if !ok || !hasNominee(cat, nomineeID) {
			s.log.Warn("Skipping feed winner not on ballot", "category", catID, "nominee", nomineeID)
			result.WinnersSkipped++
			continue
		}
		if cat.WinnerID == nomineeID {
			continue
		}
		if err := s.DeclareWinner(ctx, catID, nomineeID, "ballot feed"); err != nil {
			return err
		}
		result.WinnersDeclared++
	}
	return nil
}

func hasNominee(cat *models.Category, nomineeID string) bool {
	if nomineeID == "" {
		return false
	}
	for _, n := range cat.Nominees {
		if n.ID == nomineeID {
			return true
		}
	}
	return false
}

// makeID returns the supplied id trimmed, or a slug of name when it is blank
func makeID(id, name string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return slug.Make(name)
}
