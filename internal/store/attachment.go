package store

import (
	"context"
	"database/sql"

	"github.com/converselab/converse-api/internal/domain"
)

// AttachmentFilter narrows admin attachment listings. Zero values mean
// "no constraint" for the corresponding field.
type AttachmentFilter struct {
	UserID            int64
	FileType          string
	RecognitionStatus string
	Search            string
}

// AttachmentStore defines the interface for attachment metadata persistence.
// File bytes live on disk; only metadata is stored here.
type AttachmentStore interface {
	// Create saves a new attachment record and fills in the generated ID.
	Create(ctx context.Context, attachment *domain.Attachment) error

	// GetByIDForUser retrieves an attachment only if it belongs to the given
	// user. Foreign ownership is reported as ErrAttachmentNotFound.
	GetByIDForUser(ctx context.Context, id, userID int64) (*domain.Attachment, error)

	// ListByUser retrieves attachments for a user, newest first, with
	// limit/offset pagination. Also returns the total count.
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Attachment, int, error)

	// ListAll retrieves attachments across all users matching the filter,
	// newest first, with limit/offset pagination. Also returns the total count.
	ListAll(ctx context.Context, filter AttachmentFilter, limit, offset int) ([]*domain.Attachment, int, error)

	// Update writes the mutable metadata fields (description, tags, shared
	// flag) of an attachment owned by attachment.UserID.
	// Returns ErrAttachmentNotFound if absent or foreign.
	Update(ctx context.Context, attachment *domain.Attachment) error

	// Delete removes an attachment record owned by the given user.
	// Returns ErrAttachmentNotFound if absent or foreign.
	Delete(ctx context.Context, id, userID int64) error

	// UpdateRecognitionStatus updates the recognition state of an attachment.
	UpdateRecognitionStatus(ctx context.Context, id int64, status domain.RecognitionStatus) error

	// WithTx returns a new AttachmentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AttachmentStore
}
