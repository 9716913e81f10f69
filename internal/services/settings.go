package services

import (
	"context"
	"strings"
	"time"

	"github.com/abrezinsky/awardpicks/internal/errors"
	"github.com/abrezinsky/awardpicks/internal/logger"
	"github.com/abrezinsky/awardpicks/internal/models"
	"github.com/abrezinsky/awardpicks/internal/repository"
	"github.com/abrezinsky/awardpicks/internal/scoring"
)

// Setting keys
const (
	settingVotingOpen      = "voting_open"
	settingVotingCloseTime = "voting_close_time"
	settingFlagship        = "flagship_category_id"
	settingEventName       = "event_name"
	settingFeedURL         = "ballot_feed_url"
	settingRecomputeCursor = "recompute_cursor"
)

// Broadcaster defines the interface for broadcasting messages to clients
type Broadcaster interface {
	BroadcastVotingStatus(open bool, closeTime string)
	BroadcastWinnerDeclared(categoryID, nomineeID string)
	BroadcastScoresUpdated(summary RecomputeSummary)
}

// SettingsServiceRepository defines the repository methods needed by SettingsService
type SettingsServiceRepository interface {
	repository.SettingsRepository
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// SettingsService handles settings-related business logic
type SettingsService struct {
	log             logger.Logger
	repo            SettingsServiceRepository
	broadcaster     Broadcaster
	defaultFlagship string
}

// NewSettingsService creates a new SettingsService. defaultFlagship is used
// until an admin stores a different flagship category id.
func NewSettingsService(log logger.Logger, repo SettingsServiceRepository, defaultFlagship string) *SettingsService {
	return &SettingsService{log: log, repo: repo, defaultFlagship: defaultFlagship}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *SettingsService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// IsVotingOpen checks if voting is currently open
func (s *SettingsService) IsVotingOpen(ctx context.Context) (bool, error) {
	value, err := s.repo.GetSetting(ctx, settingVotingOpen)
	if err != nil {
		if err == repository.ErrNotFound {
			return true, nil // Default to open if setting doesn't exist
		}
		return false, err
	}
	return value == "true", nil
}

// SetVotingOpen sets the voting open status
func (s *SettingsService) SetVotingOpen(ctx context.Context, open bool) error {
	value := "false"
	if open {
		value = "true"
	}
	return s.repo.SetSetting(ctx, settingVotingOpen, value)
}

// GetSetting retrieves an arbitrary setting, "" when unset
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	value, err := s.repo.GetSetting(ctx, key)
	if err == repository.ErrNotFound {
		return "", nil
	}
	return value, err
}

// SetSetting saves an arbitrary setting
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

// GetVotingCloseTime returns the scheduled close time, or the zero time
func (s *SettingsService) GetVotingCloseTime(ctx context.Context) (time.Time, error) {
	value, err := s.GetSetting(ctx, settingVotingCloseTime)
	if err != nil || value == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, nil // Invalid value, treat as no timer
	}
	return t, nil
}

// ClearTimer clears the voting timer
func (s *SettingsService) ClearTimer(ctx context.Context) error {
	return s.repo.SetSetting(ctx, settingVotingCloseTime, "")
}

// GetFlagshipCategoryID returns the stored flagship id or the configured default
func (s *SettingsService) GetFlagshipCategoryID(ctx context.Context) (string, error) {
	value, err := s.GetSetting(ctx, settingFlagship)
	if err != nil {
		return "", err
	}
	if value == "" {
		return s.defaultFlagship, nil
	}
	return value, nil
}

// SetFlagshipCategoryID stores the flagship id. Once a ballot exists the id
// must match exactly one category.
func (s *SettingsService) SetFlagshipCategoryID(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.Validation("flagship category id is required")
	}
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(cats) > 0 {
		cfg := scoring.Config{FlagshipCategoryID: id}
		if err := cfg.ValidateFlagship(toScoringCategories(cats)); err != nil {
			return errors.Wrap(err, errors.ErrValidation, "invalid flagship category")
		}
	}
	return s.repo.SetSetting(ctx, settingFlagship, id)
}

// GetEventName returns the display name of the awards event
func (s *SettingsService) GetEventName(ctx context.Context) (string, error) {
	return s.GetSetting(ctx, settingEventName)
}

// GetFeedURL returns the stored ballot feed URL
func (s *SettingsService) GetFeedURL(ctx context.Context) (string, error) {
	return s.GetSetting(ctx, settingFeedURL)
}

// AllSettings returns commonly used settings as a map
func (s *SettingsService) AllSettings(ctx context.Context) (map[string]interface{}, error) {
	settings := make(map[string]interface{})

	votingOpen, err := s.IsVotingOpen(ctx)
	if err != nil {
		return nil, err
	}
	settings["voting_open"] = votingOpen

	closeTime, _ := s.GetSetting(ctx, settingVotingCloseTime)
	settings["voting_close_time"] = closeTime

	flagship, _ := s.GetFlagshipCategoryID(ctx)
	settings["flagship_category_id"] = flagship

	eventName, _ := s.GetEventName(ctx)
	settings["event_name"] = eventName

	feedURL, _ := s.GetFeedURL(ctx)
	settings["ballot_feed_url"] = feedURL

	return settings, nil
}

// GetStats retrieves participation statistics including voting_open status
func (s *SettingsService) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	votingOpen, _ := s.IsVotingOpen(ctx)
	stats["voting_open"] = votingOpen
	return stats, nil
}

// OpenVoting opens voting and broadcasts the status change
func (s *SettingsService) OpenVoting(ctx context.Context) error {
	if err := s.SetVotingOpen(ctx, true); err != nil {
		return err
	}
	s.log.Info("Voting opened")
	s.broadcast(true, "")
	return nil
}

// CloseVoting closes voting, clears the timer, and broadcasts the status change
func (s *SettingsService) CloseVoting(ctx context.Context) error {
	if err := s.SetVotingOpen(ctx, false); err != nil {
		return err
	}
	if err := s.ClearTimer(ctx); err != nil {
		s.log.Warn("Failed to clear voting timer", "error", err)
	}
	s.log.Info("Voting closed")
	s.broadcast(false, "")
	return nil
}

// StartVotingTimer opens voting and schedules it to close after the given minutes
func (s *SettingsService) StartVotingTimer(ctx context.Context, minutes int) (string, error) {
	if minutes <= 0 || minutes > 60 {
		return "", ErrInvalidTimerMinutes
	}

	closeTime := time.Now().Add(time.Duration(minutes) * time.Minute)
	closeTimeStr := closeTime.Format(time.RFC3339)

	if err := s.SetSetting(ctx, settingVotingCloseTime, closeTimeStr); err != nil {
		return "", err
	}
	if err := s.SetVotingOpen(ctx, true); err != nil {
		return "", err
	}

	s.log.Info("Voting timer started", "minutes", minutes, "close_time", closeTimeStr)
	s.broadcast(true, closeTimeStr)
	return closeTimeStr, nil
}

// Settings represents application settings for update operations.
// Empty fields are left unchanged.
type Settings struct {
	EventName          string
	FlagshipCategoryID string
	BallotFeedURL      string
}

// UpdateSettings updates multiple settings at once
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	if settings.FlagshipCategoryID != "" {
		if err := s.SetFlagshipCategoryID(ctx, settings.FlagshipCategoryID); err != nil {
			return err
		}
	}
	if settings.EventName != "" {
		if err := s.SetSetting(ctx, settingEventName, strings.TrimSpace(settings.EventName)); err != nil {
			return err
		}
	}
	if settings.BallotFeedURL != "" {
		if err := s.SetSetting(ctx, settingFeedURL, strings.TrimSpace(settings.BallotFeedURL)); err != nil {
			return err
		}
	}
	return nil
}

// ResetTablesResult contains the result of a database reset
type ResetTablesResult struct {
	Tables  []string `json:"tables"`
	Message string   `json:"message"`
}

// ValidTables defines which tables can be reset
var ValidTables = map[string]bool{
	"predictions": true, "scores": true, "official_results": true, "groups": true,
	"users": true, "categories": true, "settings": true,
}

// tableNames maps reset names to storage tables
var tableNames = map[string]string{
	"groups": "prediction_groups",
}

// resetDependents lists tables whose rows must go before the key is cleared
var resetDependents = map[string][]string{
	"users":      {"scores", "predictions"},
	"groups":     {"scores", "predictions"},
	"categories": {"scores", "predictions", "official_results"},
}

// ResetTables validates and resets the specified database tables
func (s *SettingsService) ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error) {
	if len(tables) == 0 {
		return nil, ErrNoTablesSpecified
	}

	for _, table := range tables {
		if !ValidTables[table] {
			return nil, &InvalidTableError{Table: table}
		}
	}

	// Dependents first, each table once
	var tablesToReset []string
	for _, table := range tables {
		for _, dep := range resetDependents[table] {
			if !containsString(tablesToReset, dep) {
				tablesToReset = append(tablesToReset, dep)
			}
		}
	}
	for _, table := range tables {
		if !containsString(tablesToReset, table) {
			tablesToReset = append(tablesToReset, table)
		}
	}

	for _, table := range tablesToReset {
		name := table
		if mapped, ok := tableNames[table]; ok {
			name = mapped
		}
		if err := s.repo.ClearTable(ctx, name); err != nil {
			return nil, err
		}
	}

	// Close voting if picks or settings were reset. Done afterwards so a
	// cleared settings table does not fall back to open.
	if containsString(tablesToReset, "predictions") || containsString(tablesToReset, "settings") {
		if err := s.SetVotingOpen(ctx, false); err != nil {
			return nil, err
		}
		s.ClearTimer(ctx)
	}

	s.log.Warn("Tables reset", "tables", tablesToReset)
	return &ResetTablesResult{
		Tables:  tablesToReset,
		Message: "Successfully deleted data from tables",
	}, nil
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// broadcast sends voting status to all connected clients
func (s *SettingsService) broadcast(open bool, closeTime string) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastVotingStatus(open, closeTime)
	}
}
