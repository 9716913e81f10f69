package handlers

// UserCreateRequest represents a request to register a participant
type UserCreateRequest struct {
	DisplayName string `json:"display_name"`
}

// UserRenameRequest represents a request to change a display name
type UserRenameRequest struct {
	DisplayName string `json:"display_name"`
}

// GroupCreateRequest represents a request to create a group
type GroupCreateRequest struct {
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
}

// GroupJoinRequest represents a request to join a group by invite code
type GroupJoinRequest struct {
	UserID     string `json:"user_id"`
	InviteCode string `json:"invite_code"`
}

// GroupMemberRequest identifies the user acting on a group
type GroupMemberRequest struct {
	UserID string `json:"user_id"`
}

// PickSubmitRequest is one category pick; the category comes from the path
type PickSubmitRequest struct {
	FirstPlace  string `json:"first_place"`
	SecondPlace string `json:"second_place"`
	ThirdPlace  string `json:"third_place"`
}

// PickImportRequest carries picks keyed by category id. Each value is an
// object with firstPlace/first_place/first style keys; ids may be numbers.
type PickImportRequest struct {
	Picks map[string]any `json:"picks"`
}

// LoginRequest represents an admin login
type LoginRequest struct {
	Password string `json:"password"`
}

// CategoryRequest represents a request to create or update a category
type CategoryRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
	Active       *bool  `json:"active"`
}

// NomineeRequest represents a request to create or update a nominee
type NomineeRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Developer    string `json:"developer"`
	ImageURL     string `json:"image_url"`
	DisplayOrder int    `json:"display_order"`
}

// WinnerRequest declares the official winner of a category
type WinnerRequest struct {
	NomineeID string `json:"nominee_id"`
	Note      string `json:"note"`
}

// FeedSyncRequest represents a request to sync the ballot from a feed.
// An empty URL falls back to the stored feed setting.
type FeedSyncRequest struct {
	FeedURL string `json:"feed_url"`
}

// RecomputeRequest starts a bulk score recompute
type RecomputeRequest struct {
	Resume bool `json:"resume"`
}

// VotingStatusRequest represents a request to set voting open/closed
type VotingStatusRequest struct {
	Open bool `json:"open"`
}

// VotingTimerRequest represents a request to start a voting timer
type VotingTimerRequest struct {
	Minutes int `json:"minutes"`
}

// SettingsUpdateRequest represents a request to update settings
type SettingsUpdateRequest struct {
	EventName          string `json:"event_name"`
	FlagshipCategoryID string `json:"flagship_category_id"`
	BallotFeedURL      string `json:"ballot_feed_url"`
}

// DatabaseResetRequest represents a request to reset database tables
type DatabaseResetRequest struct {
	Tables []string `json:"tables"`
}

// SeedMockDataRequest represents a request to seed mock data
type SeedMockDataRequest struct {
	SeedType string `json:"seed_type"`
}
