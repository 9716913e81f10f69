package mock

import (
	"context"

	"github.com/abrezinsky/awardpicks/internal/models"
	"github.com/abrezinsky/awardpicks/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.UpsertScoresError = errors.New("database error")
//	svc := services.NewScoringService(log, mockRepo, settings, tables, opts)
//	_, err := svc.Recompute(ctx, false)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Category Errors =====
	ListCategoriesError error
	GetCategoryError    error
	CreateCategoryError error
	UpsertCategoryError error
	UpsertNomineeError  error
	CreateNomineeError  error
	SetWinnerError      error
	ClearWinnerError    error
	ListWinnersError    error

	// ===== User Errors =====
	CreateUserError       error
	GetUserError          error
	ListUsersError        error
	ListUserIDsAfterError error

	// ===== Group Errors =====
	CreateGroupError          error
	GetGroupError             error
	GetGroupByInviteCodeError error
	ListGroupsForUserError    error
	AddMemberError            error
	RemoveMemberError         error
	IsMemberError             error
	ListMembersError          error

	// ===== Prediction Errors =====
	SavePredictionError          error
	ClearScopeError              error
	GetPredictionsError          error
	ListPredictionsForUsersError error

	// ===== Score Errors =====
	UpsertScoresError error
	ListScoresError   error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error
	GetStatsError   error
	ClearTableError error

	// UpsertScoresCalls counts batches written, successful or not
	UpsertScoresCalls int
	// FailUpsertScoresAfter makes UpsertScores fail once this many batches
	// have succeeded. Zero disables it.
	FailUpsertScoresAfter int
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Category Methods =====

func (m *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	if m.ListCategoriesError != nil {
		return nil, m.ListCategoriesError
	}
	return m.FullRepository.ListCategories(ctx)
}

func (m *Repository) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	if m.GetCategoryError != nil {
		return nil, m.GetCategoryError
	}
	return m.FullRepository.GetCategory(ctx, id)
}

func (m *Repository) CreateCategory(ctx context.Context, cat models.Category) error {
	if m.CreateCategoryError != nil {
		return m.CreateCategoryError
	}
	return m.FullRepository.CreateCategory(ctx, cat)
}

func (m *Repository) UpsertCategory(ctx context.Context, cat models.Category) (bool, error) {
	if m.UpsertCategoryError != nil {
		return false, m.UpsertCategoryError
	}
	return m.FullRepository.UpsertCategory(ctx, cat)
}

func (m *Repository) UpsertNominee(ctx context.Context, n models.Nominee) (bool, error) {
	if m.UpsertNomineeError != nil {
		return false, m.UpsertNomineeError
	}
	return m.FullRepository.UpsertNominee(ctx, n)
}

func (m *Repository) CreateNominee(ctx context.Context, n models.Nominee) error {
	if m.CreateNomineeError != nil {
		return m.CreateNomineeError
	}
	return m.FullRepository.CreateNominee(ctx, n)
}

func (m *Repository) SetWinner(ctx context.Context, categoryID, nomineeID, note string) error {
	if m.SetWinnerError != nil {
		return m.SetWinnerError
	}
	return m.FullRepository.SetWinner(ctx, categoryID, nomineeID, note)
}

func (m *Repository) ClearWinner(ctx context.Context, categoryID string) error {
	if m.ClearWinnerError != nil {
		return m.ClearWinnerError
	}
	return m.FullRepository.ClearWinner(ctx, categoryID)
}

func (m *Repository) ListWinners(ctx context.Context) ([]models.OfficialResult, error) {
	if m.ListWinnersError != nil {
		return nil, m.ListWinnersError
	}
	return m.FullRepository.ListWinners(ctx)
}

// ===== User Methods =====

func (m *Repository) CreateUser(ctx context.Context, user models.User) error {
	if m.CreateUserError != nil {
		return m.CreateUserError
	}
	return m.FullRepository.CreateUser(ctx, user)
}

func (m *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	if m.GetUserError != nil {
		return nil, m.GetUserError
	}
	return m.FullRepository.GetUser(ctx, id)
}

func (m *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	if m.ListUsersError != nil {
		return nil, m.ListUsersError
	}
	return m.FullRepository.ListUsers(ctx)
}

func (m *Repository) ListUserIDsAfter(ctx context.Context, afterID string, limit int) ([]string, error) {
	if m.ListUserIDsAfterError != nil {
		return nil, m.ListUserIDsAfterError
	}
	return m.FullRepository.ListUserIDsAfter(ctx, afterID, limit)
}

// ===== Group Methods =====

func (m *Repository) CreateGroup(ctx context.Context, group models.Group) error {
	if m.CreateGroupError != nil {
		return m.CreateGroupError
	}
	return m.FullRepository.CreateGroup(ctx, group)
}

func (m *Repository) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	if m.GetGroupError != nil {
		return nil, m.GetGroupError
	}
	return m.FullRepository.GetGroup(ctx, id)
}

func (m *Repository) GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	if m.GetGroupByInviteCodeError != nil {
		return nil, m.GetGroupByInviteCodeError
	}
	return m.FullRepository.GetGroupByInviteCode(ctx, code)
}

func (m *Repository) ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error) {
	if m.ListGroupsForUserError != nil {
		return nil, m.ListGroupsForUserError
	}
	return m.FullRepository.ListGroupsForUser(ctx, userID)
}

func (m *Repository) AddMember(ctx context.Context, groupID, userID string) (bool, error) {
	if m.AddMemberError != nil {
		return false, m.AddMemberError
	}
	return m.FullRepository.AddMember(ctx, groupID, userID)
}

func (m *Repository) RemoveMember(ctx context.Context, groupID, userID string) error {
	if m.RemoveMemberError != nil {
		return m.RemoveMemberError
	}
	return m.FullRepository.RemoveMember(ctx, groupID, userID)
}

func (m *Repository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	if m.IsMemberError != nil {
		return false, m.IsMemberError
	}
	return m.FullRepository.IsMember(ctx, groupID, userID)
}

func (m *Repository) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	if m.ListMembersError != nil {
		return nil, m.ListMembersError
	}
	return m.FullRepository.ListMembers(ctx, groupID)
}

// ===== Prediction Methods =====

func (m *Repository) SavePrediction(ctx context.Context, p models.Prediction) error {
	if m.SavePredictionError != nil {
		return m.SavePredictionError
	}
	return m.FullRepository.SavePrediction(ctx, p)
}

func (m *Repository) ClearScope(ctx context.Context, userID, scope string) (int64, error) {
	if m.ClearScopeError != nil {
		return 0, m.ClearScopeError
	}
	return m.FullRepository.ClearScope(ctx, userID, scope)
}

func (m *Repository) GetPredictions(ctx context.Context, userID, scope string) ([]models.Prediction, error) {
	if m.GetPredictionsError != nil {
		return nil, m.GetPredictionsError
	}
	return m.FullRepository.GetPredictions(ctx, userID, scope)
}

func (m *Repository) ListPredictionsForUsers(ctx context.Context, userIDs []string, scope string) ([]models.Prediction, error) {
	if m.ListPredictionsForUsersError != nil {
		return nil, m.ListPredictionsForUsersError
	}
	return m.FullRepository.ListPredictionsForUsers(ctx, userIDs, scope)
}

// ===== Score Methods =====

func (m *Repository) UpsertScores(ctx context.Context, scores []models.StoredScore) error {
	m.UpsertScoresCalls++
	if m.UpsertScoresError != nil {
		if m.FailUpsertScoresAfter == 0 || m.UpsertScoresCalls > m.FailUpsertScoresAfter {
			return m.UpsertScoresError
		}
	}
	return m.FullRepository.UpsertScores(ctx, scores)
}

func (m *Repository) ListScores(ctx context.Context, scope string) ([]models.StoredScore, error) {
	if m.ListScoresError != nil {
		return nil, m.ListScoresError
	}
	return m.FullRepository.ListScores(ctx, scope)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	if m.GetStatsError != nil {
		return nil, m.GetStatsError
	}
	return m.FullRepository.GetStats(ctx)
}

func (m *Repository) ClearTable(ctx context.Context, table string) error {
	if m.ClearTableError != nil {
		return m.ClearTableError
	}
	return m.FullRepository.ClearTable(ctx, table)
}
