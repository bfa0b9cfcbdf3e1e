package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/converselab/converse-api/internal/config"
	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/store"
	"github.com/google/uuid"
)

// sniffLen is how many leading bytes content-type detection reads.
const sniffLen = 512

// AttachmentService provides file upload, retrieval, and deletion. Files are
// stored on disk under the configured upload directory with a generated
// unique name; the database row keeps the original filename for display.
type AttachmentService interface {
	// Upload stores the file and records an attachment with recognition
	// status pending. The extension must be on the allow-list and the file
	// must fit the configured size cap.
	Upload(ctx context.Context, userID int64, filename string, file io.Reader) (*domain.Attachment, error)

	// UpdateAttachment applies a partial metadata update (description, tags,
	// shared flag) to an attachment owned by the user. Nil fields are left
	// untouched. Missing and foreign rows both return
	// store.ErrAttachmentNotFound.
	UpdateAttachment(ctx context.Context, id, userID int64, update AttachmentUpdate) (*domain.Attachment, error)

	// ListAttachments retrieves the user's attachments, newest first, with
	// the total count for pagination.
	ListAttachments(ctx context.Context, userID int64, limit, offset int) ([]*domain.Attachment, int, error)

	// GetAttachment retrieves one attachment. Missing and foreign rows both
	// return store.ErrAttachmentNotFound.
	GetAttachment(ctx context.Context, id, userID int64) (*domain.Attachment, error)

	// OpenAttachment returns the attachment row and an open handle to its
	// file for download. The caller closes the handle.
	OpenAttachment(ctx context.Context, id, userID int64) (*domain.Attachment, *os.File, error)

	// DeleteAttachment removes the attachment row and its file.
	DeleteAttachment(ctx context.Context, id, userID int64) error
}

// AttachmentUpdate carries the mutable attachment fields for a partial
// update. Nil means "leave unchanged".
type AttachmentUpdate struct {
	Description *string
	Tags        *string
	Shared      *bool
}

// Ensure AttachmentServiceImpl implements AttachmentService
var _ AttachmentService = (*AttachmentServiceImpl)(nil)

// AttachmentServiceImpl implements the AttachmentService interface
type AttachmentServiceImpl struct {
	attachmentStore store.AttachmentStore
	cfg             config.UploadConfig
	db              *sql.DB
	logger          *slog.Logger
}

// NewAttachmentService creates a new AttachmentService. The upload directory
// is created if it does not exist.
func NewAttachmentService(
	attachmentStore store.AttachmentStore,
	cfg config.UploadConfig,
	db *sql.DB,
	logger *slog.Logger,
) (*AttachmentServiceImpl, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %q: %w", cfg.Dir, err)
	}

	return &AttachmentServiceImpl{
		attachmentStore: attachmentStore,
		cfg:             cfg,
		db:              db,
		logger:          logger.With("component", "attachment_service"),
	}, nil
}

// Upload validates, stores, and records an uploaded file.
func (s *AttachmentServiceImpl) Upload(
	ctx context.Context,
	userID int64,
	filename string,
	file io.Reader,
) (*domain.Attachment, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !s.extensionAllowed(ext) {
		return nil, fmt.Errorf("%w: %s", ErrFileTypeNotAllowed, ext)
	}

	storedFilename := uuid.New().String() + ext
	storedPath := filepath.Join(s.cfg.Dir, storedFilename)

	size, fileType, err := s.writeFile(storedPath, file)
	if err != nil {
		return nil, err
	}

	attachment, err := domain.NewAttachment(userID, filename, storedFilename, fileType, size)
	if err != nil {
		s.removeFile(storedPath)
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.attachmentStore.WithTx(tx).Create(ctx, attachment)
	})
	if err != nil {
		s.removeFile(storedPath)
		s.logger.Error("failed to save attachment",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}

	s.recognize(ctx, attachment)

	s.logger.Info("attachment uploaded",
		"attachment_id", attachment.ID,
		"user_id", userID,
		"file_type", fileType,
		"file_size", size)
	return attachment, nil
}

// recognize classifies the uploaded file from its sniffed content type and
// drives the recognition status to a terminal value. Unclassifiable content
// is recorded as failed; a failed status write leaves the row pending.
func (s *AttachmentServiceImpl) recognize(ctx context.Context, attachment *domain.Attachment) {
	status := domain.RecognitionStatusCompleted
	if classifyContentType(attachment.FileType) == "" {
		status = domain.RecognitionStatusFailed
	}

	if err := s.attachmentStore.UpdateRecognitionStatus(ctx, attachment.ID, status); err != nil {
		s.logger.Error("failed to record recognition status",
			"error", err,
			"attachment_id", attachment.ID)
		return
	}
	attachment.RecognitionStatus = status

	s.logger.Info("attachment recognition finished",
		"attachment_id", attachment.ID,
		"recognition_status", status)
}

// classifyContentType maps a sniffed MIME type to a coarse category, or ""
// when the content is unclassifiable.
func classifyContentType(fileType string) string {
	mediaType := fileType
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}

	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return "image"
	case strings.HasPrefix(mediaType, "text/"):
		return "text"
	case strings.HasPrefix(mediaType, "audio/"):
		return "audio"
	case strings.HasPrefix(mediaType, "video/"):
		return "video"
	case mediaType == "application/pdf",
		mediaType == "application/zip",
		mediaType == "application/x-rar-compressed",
		mediaType == "application/msword":
		return "document"
	default:
		return ""
	}
}

// UpdateAttachment applies a partial metadata update to an owned attachment.
func (s *AttachmentServiceImpl) UpdateAttachment(
	ctx context.Context,
	id, userID int64,
	update AttachmentUpdate,
) (*domain.Attachment, error) {
	attachment, err := s.GetAttachment(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if update.Description != nil {
		attachment.Description = *update.Description
	}
	if update.Tags != nil {
		attachment.Tags = *update.Tags
	}
	if update.Shared != nil {
		attachment.Shared = *update.Shared
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.attachmentStore.WithTx(tx).Update(ctx, attachment)
	})
	if err != nil {
		if !errors.Is(err, store.ErrAttachmentNotFound) {
			s.logger.Error("failed to update attachment",
				"error", err,
				"attachment_id", id)
		}
		return nil, err
	}

	s.logger.Info("attachment metadata updated",
		"attachment_id", id,
		"user_id", userID)
	return attachment, nil
}

// writeFile streams the upload to disk, enforcing the size cap and sniffing
// the content type from the leading bytes. Returns the byte count and
// detected type.
func (s *AttachmentServiceImpl) writeFile(path string, file io.Reader) (int64, string, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			s.logger.Warn("failed to close upload file", "error", cerr, "path", path)
		}
	}()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		s.removeFile(path)
		return 0, "", fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	fileType := http.DetectContentType(head)

	if _, err := out.Write(head); err != nil {
		s.removeFile(path)
		return 0, "", fmt.Errorf("failed to write upload: %w", err)
	}

	// Copy the rest with a one-byte overrun allowance so we can tell
	// "exactly at the cap" apart from "over it".
	rest, err := io.Copy(out, io.LimitReader(file, s.cfg.MaxFileSize-int64(n)+1))
	if err != nil {
		s.removeFile(path)
		return 0, "", fmt.Errorf("failed to write upload: %w", err)
	}

	size := int64(n) + rest
	if size > s.cfg.MaxFileSize {
		s.removeFile(path)
		return 0, "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.cfg.MaxFileSize)
	}

	return size, fileType, nil
}

// ListAttachments retrieves the user's attachments, newest first.
func (s *AttachmentServiceImpl) ListAttachments(
	ctx context.Context,
	userID int64,
	limit, offset int,
) ([]*domain.Attachment, int, error) {
	items, total, err := s.attachmentStore.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list attachments",
			"error", err,
			"user_id", userID)
		return nil, 0, fmt.Errorf("failed to list attachments: %w", err)
	}
	return items, total, nil
}

// GetAttachment retrieves one attachment owned by the user.
func (s *AttachmentServiceImpl) GetAttachment(
	ctx context.Context,
	id, userID int64,
) (*domain.Attachment, error) {
	attachment, err := s.attachmentStore.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if !errors.Is(err, store.ErrAttachmentNotFound) {
			s.logger.Error("failed to retrieve attachment",
				"error", err,
				"attachment_id", id)
		}
		return nil, err
	}
	return attachment, nil
}

// OpenAttachment opens the stored file for download.
func (s *AttachmentServiceImpl) OpenAttachment(
	ctx context.Context,
	id, userID int64,
) (*domain.Attachment, *os.File, error) {
	attachment, err := s.GetAttachment(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.cfg.Dir, attachment.StoredFilename))
	if err != nil {
		s.logger.Error("attachment file missing on disk",
			"error", err,
			"attachment_id", id,
			"stored_filename", attachment.StoredFilename)
		return nil, nil, fmt.Errorf("failed to open attachment file: %w", err)
	}

	return attachment, f, nil
}

// DeleteAttachment removes the row then the file. A missing file is logged
// and tolerated; the row is gone either way.
func (s *AttachmentServiceImpl) DeleteAttachment(ctx context.Context, id, userID int64) error {
	attachment, err := s.GetAttachment(ctx, id, userID)
	if err != nil {
		return err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.attachmentStore.WithTx(tx).Delete(ctx, id, userID)
	})
	if err != nil {
		if !errors.Is(err, store.ErrAttachmentNotFound) {
			s.logger.Error("failed to delete attachment",
				"error", err,
				"attachment_id", id)
		}
		return err
	}

	s.removeFile(filepath.Join(s.cfg.Dir, attachment.StoredFilename))

	s.logger.Info("attachment deleted",
		"attachment_id", id,
		"user_id", userID)
	return nil
}

// extensionAllowed checks the extension against the configured allow-list.
func (s *AttachmentServiceImpl) extensionAllowed(ext string) bool {
	if ext == "" {
		return false
	}
	for _, allowed := range strings.Split(s.cfg.AllowedExtensions, ",") {
		if strings.EqualFold(strings.TrimSpace(allowed), ext) {
			return true
		}
	}
	return false
}

// removeFile deletes a stored file, logging failures.
func (s *AttachmentServiceImpl) removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove upload file", "error", err, "path", path)
	}
}
