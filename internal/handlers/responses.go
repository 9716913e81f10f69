package handlers

import "github.com/abrezinsky/awardpicks/internal/models"

// StatusResponse is the public event status
type StatusResponse struct {
	EventName          string `json:"event_name"`
	VotingOpen         bool   `json:"voting_open"`
	CloseTime          string `json:"close_time,omitempty"`
	FlagshipCategoryID string `json:"flagship_category_id"`
}

// GroupResponse is a group with its shareable invite link
type GroupResponse struct {
	*models.Group
	InviteURL string `json:"invite_url,omitempty"`
}

// JoinResponse reports a join attempt
type JoinResponse struct {
	Group  GroupResponse `json:"group"`
	Joined bool          `json:"joined"`
}

// ClearPicksResponse reports how many group picks were removed
type ClearPicksResponse struct {
	Cleared int64 `json:"cleared"`
}

// SessionResponse reports the admin session state
type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Token         string `json:"token,omitempty"`
}

// VotingStatusResponse is the response for voting status changes
type VotingStatusResponse struct {
	Open bool `json:"open"`
}

// VotingTimerResponse is the response for setting a voting timer
type VotingTimerResponse struct {
	CloseTime string `json:"close_time"`
	Minutes   int    `json:"minutes"`
}

// RecomputeStatusResponse reports whether a recompute is in flight
type RecomputeStatusResponse struct {
	Running bool `json:"running"`
}

// SeedResponse reports the outcome of seeding mock data
type SeedResponse struct {
	Message string `json:"message"`
	Added   int    `json:"added"`
}

// ResetResponse reports which tables were cleared
type ResetResponse struct {
	Message string   `json:"message"`
	Tables  []string `json:"tables"`
}
