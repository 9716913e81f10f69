package repository

import (
	"context"

	"github.com/abrezinsky/awardpicks/internal/models"
)

// CategoryRepository defines ballot data operations: categories, nominees and official results
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, cat models.Category) error
	UpdateCategory(ctx context.Context, cat models.Category) error
	UpsertCategory(ctx context.Context, cat models.Category) (created bool, err error)
	DeleteCategory(ctx context.Context, id string) error
	CreateNominee(ctx context.Context, n models.Nominee) error
	UpdateNominee(ctx context.Context, n models.Nominee) error
	UpsertNominee(ctx context.Context, n models.Nominee) (created bool, err error)
	DeleteNominee(ctx context.Context, categoryID, nomineeID string) error
	SetWinner(ctx context.Context, categoryID, nomineeID, note string) error
	ClearWinner(ctx context.Context, categoryID string) error
	ListWinners(ctx context.Context) ([]models.OfficialResult, error)
}

// UserRepository defines user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUserName(ctx context.Context, id, displayName string) error
	ListUsers(ctx context.Context) ([]models.User, error)
	ListUserIDsAfter(ctx context.Context, afterID string, limit int) ([]string, error)
	CountUsers(ctx context.Context) (int, error)
}

// GroupRepository defines group and membership data operations
type GroupRepository interface {
	CreateGroup(ctx context.Context, group models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error)
	DeleteGroup(ctx context.Context, id string) error
	AddMember(ctx context.Context, groupID, userID string) (added bool, err error)
	RemoveMember(ctx context.Context, groupID, userID string) error
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)
}

// PredictionRepository defines prediction data operations
type PredictionRepository interface {
	SavePrediction(ctx context.Context, p models.Prediction) error
	DeletePrediction(ctx context.Context, userID, categoryID, scope string) error
	ClearScope(ctx context.Context, userID, scope string) (int64, error)
	GetPredictions(ctx context.Context, userID, scope string) ([]models.Prediction, error)
	ListPredictionsForUsers(ctx context.Context, userIDs []string, scope string) ([]models.Prediction, error)
	CountPredictions(ctx context.Context, scope string) (int, error)
}

// ScoreRepository defines persisted score operations
type ScoreRepository interface {
	UpsertScores(ctx context.Context, scores []models.StoredScore) error
	ListScores(ctx context.Context, scope string) ([]models.StoredScore, error)
	GetScore(ctx context.Context, userID, scope string) (*models.StoredScore, error)
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetStats(ctx context.Context) (map[string]interface{}, error)
	ClearTable(ctx context.Context, table string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	CategoryRepository
	UserRepository
	GroupRepository
	PredictionRepository
	ScoreRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
