package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/platform/logger"
	"github.com/converselab/converse-api/internal/store"
)

// StatsStore implements the store.StatsStore interface
// using a PostgreSQL database as the storage backend.
type StatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewStatsStore creates a new PostgreSQL implementation of the StatsStore interface.
func NewStatsStore(db store.DBTX, logger *slog.Logger) *StatsStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &StatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "stats_store")),
	}
}

// Ensure StatsStore implements store.StatsStore interface
var _ store.StatsStore = (*StatsStore)(nil)

// GetUsageStats implements store.StatsStore.GetUsageStats
func (s *StatsStore) GetUsageStats(ctx context.Context) (*store.UsageStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	stats := &store.UsageStats{
		TasksByStatus: make(map[domain.TaskStatus]int64),
	}

	query := `
		SELECT
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM conversations),
			(SELECT count(*) FROM messages),
			(SELECT count(*) FROM attachments)
	`
	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.Users,
		&stats.Conversations,
		&stats.Messages,
		&stats.Attachments,
	)
	if err != nil {
		log.Error("failed to query usage counts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query usage counts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, count(*) FROM tasks GROUP BY status`)
	if err != nil {
		log.Error("failed to query task counts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query task counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var status domain.TaskStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan task count row: %w", err)
		}
		stats.TasksByStatus[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task count rows: %w", err)
	}

	return stats, nil
}
