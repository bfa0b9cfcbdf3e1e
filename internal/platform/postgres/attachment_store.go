package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/platform/logger"
	"github.com/converselab/converse-api/internal/store"
)

// AttachmentStore implements the store.AttachmentStore interface
// using a PostgreSQL database as the storage backend.
type AttachmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewAttachmentStore creates a new PostgreSQL implementation of the
// AttachmentStore interface.
func NewAttachmentStore(db store.DBTX, logger *slog.Logger) *AttachmentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &AttachmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "attachment_store")),
	}
}

// Ensure AttachmentStore implements store.AttachmentStore interface
var _ store.AttachmentStore = (*AttachmentStore)(nil)

const attachmentColumns = `id, user_id, filename, stored_filename, file_type, file_size,
	description, tags, source, is_shared, recognition_status, created_at`

// Create implements store.AttachmentStore.Create
func (s *AttachmentStore) Create(ctx context.Context, attachment *domain.Attachment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := attachment.Validate(); err != nil {
		log.Warn("attachment validation failed during create",
			slog.String("error", err.Error()),
			slog.Int64("user_id", attachment.UserID))
		return err
	}

	query := `
		INSERT INTO attachments (user_id, filename, stored_filename, file_type, file_size,
			description, tags, source, is_shared, recognition_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		attachment.UserID,
		attachment.Filename,
		attachment.StoredFilename,
		attachment.FileType,
		attachment.FileSize,
		attachment.Description,
		attachment.Tags,
		attachment.Source,
		attachment.Shared,
		attachment.RecognitionStatus,
		attachment.CreatedAt,
	).Scan(&attachment.ID)

	if err != nil {
		if err := mapForeignKeyViolation(err, "user", attachment.UserID); err != nil {
			return err
		}

		log.Error("failed to create attachment",
			slog.String("error", err.Error()),
			slog.Int64("user_id", attachment.UserID))
		return err
	}

	log.Info("attachment created",
		slog.Int64("attachment_id", attachment.ID),
		slog.Int64("user_id", attachment.UserID),
		slog.String("filename", attachment.Filename))
	return nil
}

// GetByIDForUser implements store.AttachmentStore.GetByIDForUser
func (s *AttachmentStore) GetByIDForUser(
	ctx context.Context,
	id, userID int64,
) (*domain.Attachment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE id = $1 AND user_id = $2`

	attachment, err := scanAttachment(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAttachmentNotFound
		}

		log.Error("failed to get attachment", slog.String("error", err.Error()))
		return nil, err
	}

	return attachment, nil
}

// ListByUser implements store.AttachmentStore.ListByUser
func (s *AttachmentStore) ListByUser(
	ctx context.Context,
	userID int64,
	limit, offset int,
) ([]*domain.Attachment, int, error) {
	filter := store.AttachmentFilter{UserID: userID}
	return s.ListAll(ctx, filter, limit, offset)
}

// ListAll implements store.AttachmentStore.ListAll.
// The WHERE clause is assembled from the non-zero filter fields.
func (s *AttachmentStore) ListAll(
	ctx context.Context,
	filter store.AttachmentFilter,
	limit, offset int,
) ([]*domain.Attachment, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var conditions []string
	var args []any

	addArg := func(value any) string {
		args = append(args, value)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.UserID > 0 {
		conditions = append(conditions, "user_id = "+addArg(filter.UserID))
	}
	if filter.FileType != "" {
		conditions = append(conditions, "file_type LIKE "+addArg("%"+filter.FileType+"%"))
	}
	if filter.RecognitionStatus != "" {
		conditions = append(conditions, "recognition_status = "+addArg(filter.RecognitionStatus))
	}
	if filter.Search != "" {
		pattern := addArg("%" + filter.Search + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(filename LIKE %[1]s OR description LIKE %[1]s OR tags LIKE %[1]s OR stored_filename LIKE %[1]s)",
			pattern,
		))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := `SELECT count(*) FROM attachments` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count attachments", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count attachments: %w", err)
	}

	query := `SELECT ` + attachmentColumns + ` FROM attachments` + where +
		` ORDER BY created_at DESC LIMIT ` + addArg(limit) + ` OFFSET ` + addArg(offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list attachments", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*domain.Attachment
	for rows.Next() {
		attachment, err := scanAttachment(rows)
		if err != nil {
			log.Error("failed to scan attachment row", slog.String("error", err.Error()))
			return nil, 0, fmt.Errorf("failed to scan attachment row: %w", err)
		}
		items = append(items, attachment)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating attachment rows: %w", err)
	}

	return items, total, nil
}

// Update implements store.AttachmentStore.Update
func (s *AttachmentStore) Update(ctx context.Context, attachment *domain.Attachment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE attachments
		SET description = $1, tags = $2, is_shared = $3
		WHERE id = $4 AND user_id = $5
	`

	res, err := s.db.ExecContext(ctx, query,
		attachment.Description,
		attachment.Tags,
		attachment.Shared,
		attachment.ID,
		attachment.UserID,
	)
	if err != nil {
		log.Error("failed to update attachment",
			slog.Int64("attachment_id", attachment.ID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update attachment: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return store.ErrAttachmentNotFound
	}

	log.Info("attachment updated",
		slog.Int64("attachment_id", attachment.ID),
		slog.Int64("user_id", attachment.UserID))
	return nil
}

// Delete implements store.AttachmentStore.Delete
func (s *AttachmentStore) Delete(ctx context.Context, id, userID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM attachments WHERE id = $1 AND user_id = $2`

	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		log.Error("failed to delete attachment",
			slog.Int64("attachment_id", id),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return store.ErrAttachmentNotFound
	}

	log.Info("attachment deleted",
		slog.Int64("attachment_id", id),
		slog.Int64("user_id", userID))
	return nil
}

// UpdateRecognitionStatus implements store.AttachmentStore.UpdateRecognitionStatus
func (s *AttachmentStore) UpdateRecognitionStatus(
	ctx context.Context,
	id int64,
	status domain.RecognitionStatus,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE attachments SET recognition_status = $1 WHERE id = $2`

	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		log.Error("failed to update recognition status",
			slog.Int64("attachment_id", id),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update recognition status: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return store.ErrAttachmentNotFound
	}

	return nil
}

// WithTx implements store.AttachmentStore.WithTx
func (s *AttachmentStore) WithTx(tx *sql.Tx) store.AttachmentStore {
	return &AttachmentStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttachment(row rowScanner) (*domain.Attachment, error) {
	var attachment domain.Attachment
	var description, tags sql.NullString

	err := row.Scan(
		&attachment.ID,
		&attachment.UserID,
		&attachment.Filename,
		&attachment.StoredFilename,
		&attachment.FileType,
		&attachment.FileSize,
		&description,
		&tags,
		&attachment.Source,
		&attachment.Shared,
		&attachment.RecognitionStatus,
		&attachment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	attachment.Description = description.String
	attachment.Tags = tags.String

	return &attachment, nil
}
