package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/awardpicks/internal/services"
)

// ==================== Ballot ====================

func (h *Handlers) handleAdminListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Category.ListAllCategories(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, categories)
}

func (h *Handlers) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	cat, err := h.Category.CreateCategory(r.Context(), categoryFromRequest(req, true))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, cat)
}

func (h *Handlers) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	ctx := r.Context()
	id := chi.URLParam(r, "id")
	current, err := h.Category.GetCategory(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Category.UpdateCategory(ctx, id, categoryFromRequest(req, current.Active)); err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.Category.GetCategory(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, updated)
}

// categoryFromRequest fills Active from the request when present
func categoryFromRequest(req CategoryRequest, defaultActive bool) services.Category {
	active := defaultActive
	if req.Active != nil {
		active = *req.Active
	}
	return services.Category{
		ID:           req.ID,
		Name:         req.Name,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
		Active:       active,
	}
}

func (h *Handlers) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Category.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func nomineeFromRequest(req NomineeRequest) services.Nominee {
	return services.Nominee{
		ID:           req.ID,
		Name:         req.Name,
		Developer:    req.Developer,
		ImageURL:     req.ImageURL,
		DisplayOrder: req.DisplayOrder,
	}
}

func (h *Handlers) handleAddNominee(w http.ResponseWriter, r *http.Request) {
	var req NomineeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	n, err := h.Category.AddNominee(r.Context(), chi.URLParam(r, "id"), nomineeFromRequest(req))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, n)
}

func (h *Handlers) handleUpdateNominee(w http.ResponseWriter, r *http.Request) {
	var req NomineeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	err := h.Category.UpdateNominee(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "nomineeID"), nomineeFromRequest(req))
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Nominee updated")
}

func (h *Handlers) handleDeleteNominee(w http.ResponseWriter, r *http.Request) {
	if err := h.Category.DeleteNominee(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "nomineeID")); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Official Results ====================

func (h *Handlers) handleDeclareWinner(w http.ResponseWriter, r *http.Request) {
	var req WinnerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.NomineeID == "" {
		respondError(w, BadRequest("nominee_id is required"))
		return
	}

	categoryID := chi.URLParam(r, "id")
	if err := h.Category.DeclareWinner(r.Context(), categoryID, req.NomineeID, req.Note); err != nil {
		respondError(w, err)
		return
	}
	h.Log.Info("Winner declared", "category", categoryID, "nominee", req.NomineeID)
	respondSuccess(w, "Winner declared")
}

func (h *Handlers) handleClearWinner(w http.ResponseWriter, r *http.Request) {
	if err := h.Category.ClearWinner(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleSyncFeed(w http.ResponseWriter, r *http.Request) {
	var req FeedSyncRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, err)
			return
		}
	}

	result, err := h.Category.SyncFromFeed(r.Context(), req.FeedURL)
	if err != nil {
		respondError(w, err)
		return
	}
	if result.Status == "error" {
		respondJSON(w, http.StatusBadGateway, result)
		return
	}
	respondOK(w, result)
}

// ==================== Scores ====================

func (h *Handlers) handleRecompute(w http.ResponseWriter, r *http.Request) {
	var req RecomputeRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, err)
			return
		}
	}

	summary, err := h.Scoring.Recompute(r.Context(), req.Resume)
	if err != nil {
		if summary != nil {
			// Partial progress is kept; the response says how far it got
			h.Log.Error("Recompute failed", "error", err, "scored", summary.Scored)
		}
		respondError(w, err)
		return
	}
	respondOK(w, summary)
}

func (h *Handlers) handleRecomputeStatus(w http.ResponseWriter, r *http.Request) {
	respondOK(w, RecomputeStatusResponse{Running: h.Scoring.IsRecomputing()})
}

func (h *Handlers) handleStoredScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.Scoring.StoredScores(r.Context(), scopeParam(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, scores)
}

// ==================== Voting Control ====================

func (h *Handlers) handleSetVotingStatus(w http.ResponseWriter, r *http.Request) {
	var req VotingStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	var err error
	if req.Open {
		err = h.Settings.OpenVoting(r.Context())
	} else {
		err = h.Settings.CloseVoting(r.Context())
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, VotingStatusResponse{Open: req.Open})
}

func (h *Handlers) handleSetVotingTimer(w http.ResponseWriter, r *http.Request) {
	var req VotingTimerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	closeTime, err := h.Settings.StartVotingTimer(r.Context(), req.Minutes)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, VotingTimerResponse{CloseTime: closeTime, Minutes: req.Minutes})
}

// ==================== Settings ====================

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.AllSettings(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, settings)
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	settings := services.Settings{
		EventName:          req.EventName,
		FlagshipCategoryID: req.FlagshipCategoryID,
		BallotFeedURL:      req.BallotFeedURL,
	}
	if err := h.Settings.UpdateSettings(r.Context(), settings); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Settings updated")
}

func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Settings.GetStats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stats)
}

func (h *Handlers) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, users)
}

// ==================== Database Management ====================

func (h *Handlers) handleResetDatabase(w http.ResponseWriter, r *http.Request) {
	var req DatabaseResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Settings.ResetTables(r.Context(), req.Tables)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ResetResponse{Message: result.Message, Tables: result.Tables})
}

func (h *Handlers) handleSeedMockData(w http.ResponseWriter, r *http.Request) {
	var req SeedMockDataRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	switch req.SeedType {
	case "ballot", "categories":
		count, err := h.Category.SeedMockCategories(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		message := fmt.Sprintf("Added %d new categories", count)
		if count == 0 {
			message = "All sample categories already exist"
		}
		respondOK(w, SeedResponse{Message: message, Added: count})
	default:
		respondError(w, services.ErrInvalidSeedType)
	}
}
