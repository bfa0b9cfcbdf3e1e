package domain

import (
	"errors"
	"time"
)

// Common validation errors for Conversation
var (
	ErrEmptyConversationUserID = errors.New("conversation user ID cannot be empty")
	ErrEmptyConversationTitle  = errors.New("conversation title cannot be empty")
)

// Conversation groups an ordered sequence of messages belonging to one user.
type Conversation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// NewConversation creates a new Conversation owned by the given user.
// The ID is assigned by the store on insert.
func NewConversation(userID int64, title string) (*Conversation, error) {
	conversation := &Conversation{
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}

	if err := conversation.Validate(); err != nil {
		return nil, err
	}

	return conversation, nil
}

// Validate checks if the Conversation has valid data.
func (c *Conversation) Validate() error {
	if c.UserID <= 0 {
		return ErrEmptyConversationUserID
	}

	if c.Title == "" {
		return ErrEmptyConversationTitle
	}

	return nil
}
