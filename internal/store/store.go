package store

import (
	"context"

	"github.com/seantiz/prism/internal/model"
)

// GenerationStats holds aggregate relay statistics.
type GenerationStats struct {
	Total         int            `json:"total"`
	CountByStatus map[string]int `json:"count_by_status"`
	AvgDurationMS float64        `json:"avg_duration_ms"`
}

// Store defines the persistence operations for the generation journal.
type Store interface {
	CreateGeneration(ctx context.Context, g *model.Generation) error
	GetGeneration(ctx context.Context, id string) (*model.Generation, error)
	ListGenerations(ctx context.Context, limit, offset int) ([]*model.Generation, int, error)
	FinishGeneration(ctx context.Context, g *model.Generation) error
	GetGenerationStats(ctx context.Context) (*GenerationStats, error)
	Close() error
}
