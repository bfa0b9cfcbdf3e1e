package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		conversationID int64
		role           MessageRole
		content        string
		wantErr        error
	}{
		{
			name:           "valid user message",
			conversationID: 1,
			role:           RoleUser,
			content:        "Hello there",
		},
		{
			name:           "valid assistant message",
			conversationID: 1,
			role:           RoleAssistant,
			content:        "General Kenobi.",
		},
		{
			name:    "missing conversation",
			role:    RoleUser,
			content: "Hello",
			wantErr: ErrEmptyMessageConversationID,
		},
		{
			name:           "unknown role",
			conversationID: 1,
			role:           MessageRole("system"),
			content:        "Hello",
			wantErr:        ErrInvalidRole,
		},
		{
			name:           "empty content",
			conversationID: 1,
			role:           RoleUser,
			wantErr:        ErrEmptyMessageContent,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			message, err := NewMessage(tc.conversationID, tc.role, tc.content)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.role, message.Role)
			assert.Equal(t, tc.content, message.Content)
			assert.Zero(t, message.ID)
		})
	}
}

func TestNewUser(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "valid user",
			username: "obiwan",
			email:    "obiwan@jedi.org",
			password: "$2a$10$notarealhashbutlooksenough",
		},
		{
			name:     "empty username",
			email:    "obiwan@jedi.org",
			password: "$2a$10$hash",
			wantErr:  ErrEmptyUsername,
		},
		{
			name:     "malformed email",
			username: "obiwan",
			email:    "not-an-email",
			password: "$2a$10$hash",
			wantErr:  ErrInvalidEmail,
		},
		{
			name:     "missing password hash",
			username: "obiwan",
			email:    "obiwan@jedi.org",
			wantErr:  ErrEmptyPassword,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := NewUser(tc.username, tc.email, tc.password)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.username, user.Username)
		})
	}
}

func TestNewConversation(t *testing.T) {
	t.Parallel()

	conversation, err := NewConversation(1, "Galactic politics")
	require.NoError(t, err)
	assert.Equal(t, "Galactic politics", conversation.Title)

	_, err = NewConversation(0, "title")
	assert.ErrorIs(t, err, ErrEmptyConversationUserID)

	_, err = NewConversation(1, "")
	assert.ErrorIs(t, err, ErrEmptyConversationTitle)
}

func TestNewFeedback(t *testing.T) {
	t.Parallel()

	feedback, err := NewFeedback(1, "bug", "the reply endpoint returned 500")
	require.NoError(t, err)
	assert.Equal(t, FeedbackStatusPending, feedback.Status)

	_, err = NewFeedback(1, "", "content")
	assert.ErrorIs(t, err, ErrEmptyFeedbackType)

	_, err = NewFeedback(1, "bug", "")
	assert.ErrorIs(t, err, ErrEmptyFeedbackContent)
}
