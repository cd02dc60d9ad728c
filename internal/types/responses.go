package types

import (
	"encoding/json"
	"time"
)

type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserSummary is the short form embedded in drift and comment payloads.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type DriftResponse struct {
	ID           uint         `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       string       `json:"status"`
	Priority     string       `json:"priority"`
	CreatedByID  uint         `json:"created_by_id"`
	AssignedToID *uint        `json:"assigned_to_id"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	ResolvedAt   *time.Time   `json:"resolved_at"`
	ClosedAt     *time.Time   `json:"closed_at"`
	CreatedBy    UserSummary  `json:"created_by"`
	AssignedTo   *UserSummary `json:"assigned_to"`
}

type DriftListItem struct {
	DriftResponse
	CommentCount int64 `json:"comment_count"`
	EventCount   int64 `json:"event_count"`
}

type CommentResponse struct {
	ID        uint        `json:"id"`
	DriftID   uint        `json:"drift_id"`
	AuthorID  uint        `json:"author_id"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Author    UserSummary `json:"author"`
}

type EventResponse struct {
	ID          uint            `json:"id"`
	DriftID     uint            `json:"drift_id"`
	UserID      uint            `json:"user_id"`
	EventType   string          `json:"event_type"`
	OldValue    json.RawMessage `json:"old_value"`
	NewValue    json.RawMessage `json:"new_value"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

type NotificationResponse struct {
	ID        uint       `json:"id"`
	UserID    uint       `json:"user_id"`
	DriftID   uint       `json:"drift_id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at"`
}
