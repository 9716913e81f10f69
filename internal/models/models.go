package models

import "time"

// Category represents an award category on the ballot
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	DisplayOrder int       `json:"display_order"`
	Active       bool      `json:"active"`
	Flagship     bool      `json:"flagship"`
	Nominees     []Nominee `json:"nominees"`
	WinnerID     string    `json:"winner_id,omitempty"` // empty until declared
}

// Nominee represents a candidate within a category
type Nominee struct {
	ID           string `json:"id"`
	CategoryID   string `json:"category_id"`
	Name         string `json:"name"`
	Developer    string `json:"developer,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	DisplayOrder int    `json:"display_order"`
}

// OfficialResult is the winner declared for one category
type OfficialResult struct {
	CategoryID string    `json:"category_id"`
	NomineeID  string    `json:"nominee_id"`
	Note       string    `json:"note,omitempty"`
	DeclaredAt time.Time `json:"declared_at"`
}

// User represents a participant making predictions
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Group represents a private prediction group
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	InviteCode  string    `json:"invite_code"`
	OwnerID     string    `json:"owner_id"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroupMember is a user's membership in a group
type GroupMember struct {
	GroupID     string    `json:"group_id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Prediction is one stored pick row. Scope is "global" or a group id.
type Prediction struct {
	UserID      string    `json:"user_id"`
	CategoryID  string    `json:"category_id"`
	Scope       string    `json:"scope"`
	FirstPlace  string    `json:"first_place,omitempty"`
	SecondPlace string    `json:"second_place,omitempty"`
	ThirdPlace  string    `json:"third_place,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StoredScore is a persisted score snapshot for a user in a scope
type StoredScore struct {
	UserID      string    `json:"user_id"`
	Scope       string    `json:"scope"`
	Total       int       `json:"total"`
	Breakdown   string    `json:"-"` // JSON-encoded breakdown
	ComputedAt  time.Time `json:"computed_at"`
	DisplayName string    `json:"display_name,omitempty"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
