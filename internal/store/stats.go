package store

import (
	"context"

	"github.com/converselab/converse-api/internal/domain"
)

// UsageStats aggregates row counts for the admin console.
type UsageStats struct {
	Users         int64                       `json:"users"`
	Conversations int64                       `json:"conversations"`
	Messages      int64                       `json:"messages"`
	Attachments   int64                       `json:"attachments"`
	TasksByStatus map[domain.TaskStatus]int64 `json:"tasks_by_status"`
}

// StatsStore defines read-only aggregation queries for the admin console.
type StatsStore interface {
	// GetUsageStats returns current entity counts across the whole store.
	GetUsageStats(ctx context.Context) (*UsageStats, error)
}
