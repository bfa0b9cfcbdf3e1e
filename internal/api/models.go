package api

import (
	"encoding/json"
	"time"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
// Login accepts either a username or an email address.
type LoginRequest struct {
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID int64 `json:"user_id"`

	// Username echoes the account's display name
	Username string `json:"username"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`
}

// UserResponse defines the profile payload for GET /auth/me.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateConversationRequest defines the payload for creating a conversation.
type CreateConversationRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// ConversationResponse pairs a conversation with its message history.
type ConversationResponse struct {
	ID        int64             `json:"id"`
	Title     string            `json:"title"`
	CreatedAt time.Time         `json:"created_at"`
	Messages  []*domain.Message `json:"messages"`
}

// SendMessageRequest defines the payload for sending a message.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

// SendMessageResponse is the 202 Accepted payload for a message send: the
// token to poll plus the initial status.
type SendMessageResponse struct {
	TaskID  uuid.UUID `json:"task_id"`
	Status  string    `json:"status"`
	Message string    `json:"message"`
}

// TaskStatusResponse is the full task state returned by the polling
// endpoint. Result is only present on completed tasks, Error only on
// failed ones.
type TaskStatusResponse struct {
	TaskID    uuid.UUID       `json:"task_id"`
	Status    string          `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewTaskStatusResponse builds the polling payload from a task row.
func NewTaskStatusResponse(task *domain.Task) TaskStatusResponse {
	resp := TaskStatusResponse{
		TaskID:    task.Token,
		Status:    string(task.Status),
		Error:     task.ErrorMessage,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
	if task.Result != "" {
		resp.Result = json.RawMessage(task.Result)
	}
	return resp
}

// UpdateAttachmentRequest defines the partial-update payload for attachment
// metadata. Omitted fields keep their current value.
type UpdateAttachmentRequest struct {
	Description *string `json:"description"`
	Tags        *string `json:"tags"`
	Shared      *bool   `json:"is_shared"`
}

// CreateFeedbackRequest defines the payload for submitting feedback.
type CreateFeedbackRequest struct {
	Type    string `json:"feedback_type" validate:"required,oneof=bug suggestion other"`
	Content string `json:"content"       validate:"required,min=1"`
}

// ListResponse is the generic paginated list envelope.
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}
