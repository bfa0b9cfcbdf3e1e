package domain

import (
	"errors"
	"time"
)

// RecognitionStatus tracks content recognition for an uploaded file.
type RecognitionStatus string

// Possible recognition status values
const (
	RecognitionStatusPending   RecognitionStatus = "pending"
	RecognitionStatusCompleted RecognitionStatus = "completed"
	RecognitionStatusFailed    RecognitionStatus = "failed"
)

// Common validation errors for Attachment
var (
	ErrEmptyAttachmentUserID   = errors.New("attachment user ID cannot be empty")
	ErrEmptyAttachmentFilename = errors.New("attachment filename cannot be empty")
	ErrEmptyStoredFilename     = errors.New("attachment stored filename cannot be empty")
	ErrInvalidAttachmentSize   = errors.New("attachment size must be positive")
)

// Attachment records an uploaded file. The original filename is kept for
// display; the stored filename is the unique on-disk name under the
// configured upload directory.
type Attachment struct {
	ID                int64             `json:"id"`
	UserID            int64             `json:"user_id"`
	Filename          string            `json:"filename"`
	StoredFilename    string            `json:"stored_filename"`
	FileType          string            `json:"file_type"`
	FileSize          int64             `json:"file_size"`
	Description       string            `json:"description,omitempty"`
	Tags              string            `json:"tags,omitempty"`
	Source            string            `json:"source"`
	Shared            bool              `json:"is_shared"`
	RecognitionStatus RecognitionStatus `json:"recognition_status"`
	CreatedAt         time.Time         `json:"created_at"`
}

// NewAttachment creates a new Attachment record with recognition pending.
func NewAttachment(
	userID int64,
	filename, storedFilename, fileType string,
	fileSize int64,
) (*Attachment, error) {
	attachment := &Attachment{
		UserID:            userID,
		Filename:          filename,
		StoredFilename:    storedFilename,
		FileType:          fileType,
		FileSize:          fileSize,
		Source:            "direct_upload",
		RecognitionStatus: RecognitionStatusPending,
		CreatedAt:         time.Now().UTC(),
	}

	if err := attachment.Validate(); err != nil {
		return nil, err
	}

	return attachment, nil
}

// Validate checks if the Attachment has valid data.
func (a *Attachment) Validate() error {
	if a.UserID <= 0 {
		return ErrEmptyAttachmentUserID
	}

	if a.Filename == "" {
		return ErrEmptyAttachmentFilename
	}

	if a.StoredFilename == "" {
		return ErrEmptyStoredFilename
	}

	if a.FileSize <= 0 {
		return ErrInvalidAttachmentSize
	}

	return nil
}
