package domain

import (
	"errors"
	"time"
)

// MessageRole identifies which side of the conversation produced a message.
type MessageRole string

// Possible message roles
const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Common validation errors for Message
var (
	ErrEmptyMessageConversationID = errors.New("message conversation ID cannot be empty")
	ErrEmptyMessageContent        = errors.New("message content cannot be empty")
)

// Message is one turn within a conversation's ordered history. Messages are
// append-only; ordering for context reconstruction is by creation time
// ascending, with the row ID as a stable tiebreak.
type Message struct {
	ID             int64       `json:"id"`
	ConversationID int64       `json:"conversation_id"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	CreatedAt      time.Time   `json:"created_at"`
}

// NewMessage creates a new Message for the given conversation.
// The ID and authoritative creation time are assigned by the store on insert.
func NewMessage(conversationID int64, role MessageRole, content string) (*Message, error) {
	message := &Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}

	if err := message.Validate(); err != nil {
		return nil, err
	}

	return message, nil
}

// Validate checks if the Message has valid data.
func (m *Message) Validate() error {
	if m.ConversationID <= 0 {
		return ErrEmptyMessageConversationID
	}

	if !isValidRole(m.Role) {
		return ErrInvalidRole
	}

	if m.Content == "" {
		return ErrEmptyMessageContent
	}

	return nil
}

// isValidRole checks if the given role is a valid MessageRole.
func isValidRole(role MessageRole) bool {
	switch role {
	case RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}
