package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/awardpicks/internal/models"
	"github.com/abrezinsky/awardpicks/internal/services"
)

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]string{"status": "ok"})
}

// ==================== Event ====================

func (h *Handlers) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	open, err := h.Settings.IsVotingOpen(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	resp := StatusResponse{VotingOpen: open}
	resp.EventName, _ = h.Settings.GetEventName(ctx)
	resp.FlagshipCategoryID, _ = h.Settings.GetFlagshipCategoryID(ctx)
	if closeTime, err := h.Settings.GetVotingCloseTime(ctx); err == nil && !closeTime.IsZero() {
		resp.CloseTime = closeTime.Format(time.RFC3339)
	}
	respondOK(w, resp)
}

func (h *Handlers) handleGetBallot(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Category.ListCategories(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, categories)
}

func (h *Handlers) handleGetWinners(w http.ResponseWriter, r *http.Request) {
	winners, err := h.Category.ListWinners(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, winners)
}

// ==================== Users ====================

func (h *Handlers) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, err := h.Users.CreateUser(r.Context(), req.DisplayName)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, user)
}

func (h *Handlers) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, user)
}

func (h *Handlers) handleRenameUser(w http.ResponseWriter, r *http.Request) {
	var req UserRenameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	ctx := r.Context()
	id := chi.URLParam(r, "userID")
	if err := h.Users.RenameUser(ctx, id, req.DisplayName); err != nil {
		respondError(w, err)
		return
	}
	user, err := h.Users.GetUser(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, user)
}

func (h *Handlers) handleListUserGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Groups.ListGroupsForUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]GroupResponse, 0, len(groups))
	for i := range groups {
		out = append(out, h.groupResponse(&groups[i]))
	}
	respondOK(w, out)
}

// ==================== Picks ====================

func (h *Handlers) handleGetPicks(w http.ResponseWriter, r *http.Request) {
	state, err := h.Predictions.GetBallot(r.Context(), chi.URLParam(r, "userID"), scopeParam(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, state)
}

func (h *Handlers) handleSubmitPick(w http.ResponseWriter, r *http.Request) {
	var req PickSubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	scope := scopeParam(r)
	pick := services.PickRequest{
		CategoryID:  chi.URLParam(r, "categoryID"),
		FirstPlace:  req.FirstPlace,
		SecondPlace: req.SecondPlace,
		ThirdPlace:  req.ThirdPlace,
	}
	if err := h.Predictions.SubmitPick(ctx, userID, scope, pick); err != nil {
		respondError(w, err)
		return
	}

	state, err := h.Predictions.GetBallot(ctx, userID, scope)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, state)
}

func (h *Handlers) handleImportPicks(w http.ResponseWriter, r *http.Request) {
	var req PickImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Predictions.ImportPicks(r.Context(), chi.URLParam(r, "userID"), scopeParam(r), req.Picks)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

func (h *Handlers) handleClearGroupPicks(w http.ResponseWriter, r *http.Request) {
	n, err := h.Predictions.ClearGroupPicks(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ClearPicksResponse{Cleared: n})
}

// ==================== Scores ====================

func (h *Handlers) handleGlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.respondLeaderboard(w, r, "")
}

func (h *Handlers) handleGroupLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.respondLeaderboard(w, r, chi.URLParam(r, "groupID"))
}

func (h *Handlers) respondLeaderboard(w http.ResponseWriter, r *http.Request, scope string) {
	board, err := h.Scoring.Leaderboard(r.Context(), scope, r.URL.Query().Get("mode"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, board)
}

func (h *Handlers) handlePersonalResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.Scoring.PersonalResults(r.Context(), chi.URLParam(r, "userID"), scopeParam(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, results)
}

func (h *Handlers) handleCompare(w http.ResponseWriter, r *http.Request) {
	cmp, err := h.Scoring.Compare(r.Context(), chi.URLParam(r, "userA"), chi.URLParam(r, "userB"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, cmp)
}

// ==================== Groups ====================

func (h *Handlers) groupResponse(g *models.Group) GroupResponse {
	return GroupResponse{Group: g, InviteURL: h.Groups.InviteURL(g)}
}

func (h *Handlers) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	g, err := h.Groups.CreateGroup(r.Context(), req.OwnerID, req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, h.groupResponse(g))
}

func (h *Handlers) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.Groups.GetGroup(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, h.groupResponse(g))
}

func (h *Handlers) handleGetInvite(w http.ResponseWriter, r *http.Request) {
	g, err := h.Groups.GetGroupByInviteCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, h.groupResponse(g))
}

func (h *Handlers) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupJoinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	res, err := h.Groups.JoinGroup(r.Context(), req.UserID, req.InviteCode)
	if err != nil {
		respondError(w, err)
		return
	}
	resp := JoinResponse{Group: h.groupResponse(res.Group), Joined: res.Joined}
	if res.Joined {
		respondCreated(w, resp)
		return
	}
	respondOK(w, resp)
}

func (h *Handlers) handleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Groups.LeaveGroup(r.Context(), chi.URLParam(r, "groupID"), req.UserID); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Left group")
}

func (h *Handlers) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	requester := r.URL.Query().Get("user_id")
	if requester == "" {
		respondError(w, BadRequest("Missing user_id parameter"))
		return
	}

	if err := h.Groups.DeleteGroup(r.Context(), chi.URLParam(r, "groupID"), requester); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Groups.ListMembers(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, members)
}

func (h *Handlers) handleGroupQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Groups.GenerateInviteQR(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}
