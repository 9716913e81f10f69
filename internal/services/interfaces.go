package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/abrezinsky/awardpicks/internal/models"
)

// CategoryServicer defines the interface for ballot operations
type CategoryServicer interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListAllCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, cat Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, cat Category) error
	DeleteCategory(ctx context.Context, id string) error
	AddNominee(ctx context.Context, categoryID string, n Nominee) (*models.Nominee, error)
	UpdateNominee(ctx context.Context, categoryID, nomineeID string, n Nominee) error
	DeleteNominee(ctx context.Context, categoryID, nomineeID string) error
	DeclareWinner(ctx context.Context, categoryID, nomineeID, note string) error
	ClearWinner(ctx context.Context, categoryID string) error
	ListWinners(ctx context.Context) ([]models.OfficialResult, error)
	SeedMockCategories(ctx context.Context) (int, error)
	SyncFromFeed(ctx context.Context, feedURL string) (*SyncResult, error)
	SetBroadcaster(b Broadcaster)
	SetFlagshipSource(src FlagshipSource)
}

// FlagshipSource supplies the flagship category id currently in effect
type FlagshipSource interface {
	GetFlagshipCategoryID(ctx context.Context) (string, error)
}

// UserServicer defines the interface for participant operations
type UserServicer interface {
	CreateUser(ctx context.Context, displayName string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	RenameUser(ctx context.Context, id, displayName string) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// GroupServicer defines the interface for group operations
type GroupServicer interface {
	CreateGroup(ctx context.Context, ownerID, name string) (*models.Group, error)
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error)
	JoinGroup(ctx context.Context, userID, code string) (*JoinResult, error)
	LeaveGroup(ctx context.Context, groupID, userID string) error
	DeleteGroup(ctx context.Context, groupID, requesterID string) error
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)
	RequireMember(ctx context.Context, groupID, userID string) error
	InviteURL(group *models.Group) string
	GenerateInviteQR(ctx context.Context, groupID string) ([]byte, error)
	SetBaseURL(baseURL string)
}

// PredictionServicer defines the interface for pick operations
type PredictionServicer interface {
	GetBallot(ctx context.Context, userID, scope string) (*BallotState, error)
	SubmitPick(ctx context.Context, userID, scope string, req PickRequest) error
	ImportPicks(ctx context.Context, userID, scope string, docs map[string]any) (*ImportResult, error)
	ClearGroupPicks(ctx context.Context, userID, groupID string) (int64, error)
}

// ScoringServicer defines the interface for score calculations
type ScoringServicer interface {
	Leaderboard(ctx context.Context, scope, mode string) (*Leaderboard, error)
	PersonalResults(ctx context.Context, userID, scope string) (*PersonalResults, error)
	Compare(ctx context.Context, userA, userB string) (*Compatibility, error)
	StoredScores(ctx context.Context, scope string) ([]StoredScore, error)
	Recompute(ctx context.Context, resume bool) (*RecomputeSummary, error)
	IsRecomputing() bool
	StartScheduler(interval time.Duration) (gocron.Scheduler, error)
	SetBroadcaster(b Broadcaster)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	IsVotingOpen(ctx context.Context) (bool, error)
	SetVotingOpen(ctx context.Context, open bool) error
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetVotingCloseTime(ctx context.Context) (time.Time, error)
	ClearTimer(ctx context.Context) error
	GetFlagshipCategoryID(ctx context.Context) (string, error)
	SetFlagshipCategoryID(ctx context.Context, id string) error
	GetEventName(ctx context.Context) (string, error)
	GetFeedURL(ctx context.Context) (string, error)
	AllSettings(ctx context.Context) (map[string]interface{}, error)
	OpenVoting(ctx context.Context) error
	CloseVoting(ctx context.Context) error
	StartVotingTimer(ctx context.Context, minutes int) (string, error)
	UpdateSettings(ctx context.Context, settings Settings) error
	ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error)
	GetStats(ctx context.Context) (map[string]interface{}, error)
	SetBroadcaster(b Broadcaster)
}

// Ensure concrete types implement interfaces
var (
	_ CategoryServicer   = (*CategoryService)(nil)
	_ UserServicer       = (*UserService)(nil)
	_ GroupServicer      = (*GroupService)(nil)
	_ PredictionServicer = (*PredictionService)(nil)
	_ ScoringServicer    = (*ScoringService)(nil)
	_ SettingsServicer   = (*SettingsService)(nil)
)
