package services_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/abrezinsky/awardpicks/internal/errors"
	"github.com/abrezinsky/awardpicks/internal/logger"
	"github.com/abrezinsky/awardpicks/internal/repository/mock"
	"github.com/abrezinsky/awardpicks/internal/services"
	"github.com/abrezinsky/awardpicks/internal/testutil"
)

func TestGroupService_CreateGroup(t *testing.T) {
	ts := newTestServices(t, testutil.NewTestRepository(t))
	ctx := context.Background()
	owner := ts.createUser(t, "Ana")

	g, err := ts.groups.CreateGroup(ctx, owner.ID, "  Office Pool ")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if g.Name != "Office Pool" {
		t.Errorf("expected trimmed name, got %q", g.Name)
	}
	if g.OwnerID != owner.ID {
		t.Errorf("expected owner %s, got %s", owner.ID, g.OwnerID)
	}
	if len(g.InviteCode) != 8 {
		t.Errorf("expected 8 character invite code, got %q", g.InviteCode)
	}
	if strings.ContainsAny(g.InviteCode, "01ilo") {
		t.Errorf("invite code %q contains look-alike characters", g.InviteCode)
	}
	if g.MemberCount != 1 {
		t.Errorf("expected owner counted as member, got %d", g.MemberCount)
	}

	if err := ts.groups.RequireMember(ctx, g.ID, owner.ID); err != nil {
		t.Errorf("owner should be a member: %v", err)
	}
}

func TestGroupService_CreateGroup_Validation(t *testing.T) {
	ts := newTestServices(t, testutil.NewTestRepository(t))
	ctx := context.Background()
	owner := ts.createUser(t, "Ana")

	if _, err := ts.groups.CreateGroup(ctx, owner.ID, " "); !errors.IsKind(err, errors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := ts.groups.CreateGroup(ctx, "missing", "Pool"); !errors.IsKind(err, errors.ErrNotFound) {
		t.Errorf("expected not found for unknown owner, got %v", err)
	}
}

func TestGroupService_JoinAndLeave(t *testing.T) {
	ts := newSeededServices(t)
	ctx := context.Background()
	owner := ts.createUser(t, "Ana")
	member := ts.createUser(t, "Ben")

	g, err := ts.groups.CreateGroup(ctx, owner.ID, "Pool")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// Codes are matched case-insensitively and trimmed
	res, err := ts.groups.JoinGroup(ctx, member.ID, "  "+strings.ToUpper(g.InviteCode)+" ")
	if err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}
	if !res.Joined || res.Group.MemberCount != 2 {
		t.Errorf("expected joined with 2 members, got %+v", res)
	}

	// Joining again is harmless
	res, err = ts.groups.JoinGroup(ctx, member.ID, g.InviteCode)
	if err != nil {
		t.Fatalf("second JoinGroup failed: %v", err)
	}
	if res.Joined {
		t.Error("expected Joined=false for an existing member")
	}

	members, err := ts.groups.ListMembers(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	groups, err := ts.groups.ListGroupsForUser(ctx, member.ID)
	if err != nil {
		t.Fatalf("ListGroupsForUser failed: %v", err)
	}
	if len(groups) != 1 || groups[0].ID != g.ID {
		t.Errorf("expected member to see the group, got %+v", groups)
	}

	// Leaving drops the group-scoped picks
	ts.pick(t, member.ID, g.ID, "goty", "balatro", "", "")
	if err := ts.groups.LeaveGroup(ctx, g.ID, member.ID); err != nil {
		t.Fatalf("LeaveGroup failed: %v", err)
	}
	preds, _ := ts.repo.GetPredictions(ctx, member.ID, g.ID)
	if len(preds) != 0 {
		t.Errorf("expected group picks removed, got %d", len(preds))
	}
	if err := ts.groups.RequireMember(ctx, g.ID, member.ID); !errors.IsKind(err, errors.ErrForbidden) {
		t.Errorf("expected forbidden after leaving, got %v", err)
	}

	if err := ts.groups.LeaveGroup(ctx, g.ID, member.ID); !errors.IsKind(err, errors.ErrNotFound) {
		t.Errorf("expected not found leaving twice, got %v", err)
	}
	if err := ts.groups.LeaveGroup(ctx, g.ID, owner.ID); err != services.ErrOwnerCannotLeave {
		t.Errorf("expected ErrOwnerCannotLeave, got %v", err)
	}
}

func TestGroupService_JoinGroup_Errors(t *testing.T) {
	ts := newTestServices(t, testutil.NewTestRepository(t))
	ctx := context.Background()
	owner := ts.createUser(t, "Ana")
	g, _ := ts.groups.CreateGroup(ctx, owner.ID, "Pool")

	if _, err := ts.groups.JoinGroup(ctx, owner.ID, "nope"); !errors.IsKind(err, errors.ErrNotFound) {
		t.Errorf("expected not found for bad code, got %v", err)
	}
	if _, err := ts.groups.JoinGroup(ctx, "ghost", g.InviteCode); !errors.IsKind(err, errors.ErrNotFound) {
		t.Errorf("expected not found for unknown user, got %v", err)
	}
}

func TestGroupService_DeleteGroup(t *testing.T) {
	ts := newTestServices(t, testutil.NewTestRepository(t))
	ctx := context.Background()
	owner := ts.createUser(t, "Ana")
	other := ts.createUser(t, "Ben")
	g, _ := ts.groups.CreateGroup(ctx, owner.ID, "Pool")

	if err := ts.groups.DeleteGroup(ctx, g.ID, other.ID); !errors.IsKind(err, errors.ErrForbidden) {
		t.Errorf("expected forbidden for non-owner, got %v", err)
	}
	if err := ts.groups.DeleteGroup(ctx, g.ID, owner.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if _, err := ts.groups.GetGroup(ctx, g.ID); !errors.IsKind(err, errors.ErrNotFound) {
		t.Errorf("expected group gone, got %v", err)
	}
	if _, err := ts.groups.ListMembers(ctx, g.ID); !errors.IsKind(err, errors.ErrNotFound) {
		t.Errorf("expected not found listing members of deleted group, got %v", err)
	}
}

func TestGroupService_InviteQR(t *testing.T) {
	ts := newTestServices(t, testutil.NewTestRepository(t))
	ctx := context.Background()
	owner := ts.createUser(t, "Ana")
	g, _ := ts.groups.CreateGroup(ctx, owner.ID, "Pool")

	if url := ts.groups.InviteURL(g); url != "http://picks.test/join/"+g.InviteCode {
		t.Errorf("unexpected invite URL %q", url)
	}

	png, err := ts.groups.GenerateInviteQR(ctx, g.ID)
	if err != nil {
		t.Fatalf("GenerateInviteQR failed: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected PNG data")
	}

	if _, err := ts.groups.GenerateInviteQR(ctx, "missing"); !errors.IsKind(err, errors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	ts.groups.SetBaseURL("")
	if _, err := ts.groups.GenerateInviteQR(ctx, g.ID); err == nil {
		t.Error("expected error without a base URL")
	}

	ts.groups.SetBaseURL("https://picks.example/")
	if url := ts.groups.InviteURL(g); url != "https://picks.example/join/"+g.InviteCode {
		t.Errorf("expected trailing slash trimmed, got %q", url)
	}
}

func TestGroupService_RepositoryErrors(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewTestRepository(t)
	testutil.SeedUser(t, repo, "u1", "Ana")
	m := mock.NewRepository(repo)
	svc := services.NewGroupService(logger.New(), m, "http://picks.test")

	m.CreateGroupError = stderrors.New("disk full")
	if _, err := svc.CreateGroup(ctx, "u1", "Pool"); err == nil || err.Error() != "disk full" {
		t.Errorf("expected disk full, got %v", err)
	}
	m.CreateGroupError = nil

	g, err := svc.CreateGroup(ctx, "u1", "Pool")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	m.IsMemberError = stderrors.New("locked")
	if err := svc.RequireMember(ctx, g.ID, "u1"); err == nil {
		t.Error("expected IsMember error")
	}

	m.AddMemberError = stderrors.New("locked")
	if _, err := svc.JoinGroup(ctx, "u1", g.InviteCode); err == nil {
		t.Error("expected AddMember error")
	}

	m.ListGroupsForUserError = stderrors.New("locked")
	if _, err := svc.ListGroupsForUser(ctx, "u1"); err == nil {
		t.Error("expected ListGroupsForUser error")
	}
}
