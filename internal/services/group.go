package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/awardpicks/internal/errors"
	"github.com/abrezinsky/awardpicks/internal/logger"
	"github.com/abrezinsky/awardpicks/internal/models"
	"github.com/abrezinsky/awardpicks/internal/repository"
)

// Invite codes avoid look-alike characters so they can be read aloud
const (
	inviteAlphabet   = "23456789abcdefghjkmnpqrstuvwxyz"
	inviteCodeLength = 8
	maxCodeAttempts  = 10
)

// GroupServiceRepository defines the repository methods needed by GroupService
type GroupServiceRepository interface {
	repository.GroupRepository
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// GroupService handles private prediction groups
type GroupService struct {
	log     logger.Logger
	repo    GroupServiceRepository
	baseURL string
	newID   func() string
	newCode func() (string, error)
}

// NewGroupService creates a new GroupService. baseURL prefixes invite links.
func NewGroupService(log logger.Logger, repo GroupServiceRepository, baseURL string) *GroupService {
	return &GroupService{
		log:     log,
		repo:    repo,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		newID:   uuid.NewString,
		newCode: func() (string, error) {
			return gonanoid.Generate(inviteAlphabet, inviteCodeLength)
		},
	}
}

// SetBaseURL changes the prefix used for invite links
func (s *GroupService) SetBaseURL(baseURL string) {
	s.baseURL = strings.TrimSuffix(baseURL, "/")
}

// CreateGroup creates a group owned by ownerID, who becomes its first member
func (s *GroupService) CreateGroup(ctx context.Context, ownerID, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("group name is required")
	}
	if _, err := s.repo.GetUser(ctx, ownerID); err != nil {
		return nil, notFoundOr(err, "user %q not found", ownerID)
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}
		group := models.Group{ID: s.newID(), Name: name, InviteCode: code, OwnerID: ownerID}
		err = s.repo.CreateGroup(ctx, group)
		if err == nil {
			s.log.Info("Group created", "group_id", group.ID, "owner", ownerID)
			return s.repo.GetGroup(ctx, group.ID)
		}
		if err != repository.ErrDuplicate {
			return nil, err
		}
		s.log.Debug("Invite code collision, retrying", "attempt", attempt)
	}
	return nil, fmt.Errorf("failed to generate unique invite code after %d attempts", maxCodeAttempts)
}

// GetGroup returns a group by id
func (s *GroupService) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	group, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "group %q not found", id)
	}
	return group, nil
}

// GetGroupByInviteCode returns the group an invite code belongs to
func (s *GroupService) GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	group, err := s.repo.GetGroupByInviteCode(ctx, code)
	if err != nil {
		return nil, notFoundOr(err, "invite code %q not found", code)
	}
	return group, nil
}

// ListGroupsForUser returns the groups a user belongs to
func (s *GroupService) ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error) {
	groups, err := s.repo.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

// JoinResult reports the outcome of joining a group
type JoinResult struct {
	Group  *models.Group `json:"group"`
	Joined bool          `json:"joined"` // false when already a member
}

// JoinGroup enrolls a user through an invite code. Joining twice is harmless.
func (s *GroupService) JoinGroup(ctx context.Context, userID, code string) (*JoinResult, error) {
	group, err := s.GetGroupByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, notFoundOr(err, "user %q not found", userID)
	}
	added, err := s.repo.AddMember(ctx, group.ID, userID)
	if err != nil {
		return nil, err
	}
	if added {
		s.log.Info("User joined group", "group_id", group.ID, "user_id", userID)
		group.MemberCount++
	}
	return &JoinResult{Group: group, Joined: added}, nil
}

// LeaveGroup removes a member together with their group-scoped picks.
// The owner cannot leave.
func (s *GroupService) LeaveGroup(ctx context.Context, groupID, userID string) error {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID == userID {
		return ErrOwnerCannotLeave
	}
	if err := s.repo.RemoveMember(ctx, groupID, userID); err != nil {
		return notFoundOr(err, "user %q is not a member of %q", userID, groupID)
	}
	s.log.Info("User left group", "group_id", groupID, "user_id", userID)
	return nil
}

// DeleteGroup removes a group. Only its owner may do so.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, requesterID string) error {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != requesterID {
		return errors.Forbidden("only the group owner can delete the group")
	}
	if err := s.repo.DeleteGroup(ctx, groupID); err != nil {
		return notFoundOr(err, "group %q not found", groupID)
	}
	s.log.Info("Group deleted", "group_id", groupID)
	return nil
}

// ListMembers returns a group's members
func (s *GroupService) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []models.GroupMember{}
	}
	return members, nil
}

// RequireMember returns a Forbidden error unless userID belongs to groupID
func (s *GroupService) RequireMember(ctx context.Context, groupID, userID string) error {
	ok, err := s.repo.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Forbiddenf("user %q is not a member of group %q", userID, groupID)
	}
	return nil
}

// InviteURL returns the link a new member opens to join
func (s *GroupService) InviteURL(group *models.Group) string {
	return fmt.Sprintf("%s/join/%s", s.baseURL, group.InviteCode)
}

// GenerateInviteQR renders the invite link of a group as a PNG QR code
func (s *GroupService) GenerateInviteQR(ctx context.Context, groupID string) ([]byte, error) {
	if s.baseURL == "" {
		return nil, errors.Validation("base URL is not configured")
	}
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(s.InviteURL(group), qrcode.Medium, 256)
}
