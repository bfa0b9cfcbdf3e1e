package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/store"
)

// AdminService provides cross-user queries for the admin console.
type AdminService interface {
	// ListAllAttachments retrieves attachments across all users with optional
	// filters, newest first, with the total count for pagination.
	ListAllAttachments(ctx context.Context, filter store.AttachmentFilter, limit, offset int) ([]*domain.Attachment, int, error)

	// GetUsageStats returns aggregate entity counts.
	GetUsageStats(ctx context.Context) (*store.UsageStats, error)
}

// AdminServiceImpl implements the AdminService interface
type AdminServiceImpl struct {
	attachmentStore store.AttachmentStore
	statsStore      store.StatsStore
	logger          *slog.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(
	attachmentStore store.AttachmentStore,
	statsStore store.StatsStore,
	logger *slog.Logger,
) AdminService {
	return &AdminServiceImpl{
		attachmentStore: attachmentStore,
		statsStore:      statsStore,
		logger:          logger.With("component", "admin_service"),
	}
}

// ListAllAttachments retrieves attachments across all users.
func (s *AdminServiceImpl) ListAllAttachments(
	ctx context.Context,
	filter store.AttachmentFilter,
	limit, offset int,
) ([]*domain.Attachment, int, error) {
	items, total, err := s.attachmentStore.ListAll(ctx, filter, limit, offset)
	if err != nil {
		s.logger.Error("failed to list all attachments", "error", err)
		return nil, 0, fmt.Errorf("failed to list attachments: %w", err)
	}
	return items, total, nil
}

// GetUsageStats returns aggregate entity counts.
func (s *AdminServiceImpl) GetUsageStats(ctx context.Context) (*store.UsageStats, error) {
	stats, err := s.statsStore.GetUsageStats(ctx)
	if err != nil {
		s.logger.Error("failed to load usage stats", "error", err)
		return nil, fmt.Errorf("failed to load usage stats: %w", err)
	}
	return stats, nil
}
