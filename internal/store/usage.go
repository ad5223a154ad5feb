package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/capitalize-ai/investor-finder/internal/model"
)

// UsageRepository records provider calls.
type UsageRepository struct {
	db *gorm.DB
}

// Record inserts one usage row.
func (r *UsageRepository) Record(ctx context.Context, u *model.ProviderUsage) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("record provider usage: %w", err)
	}
	return nil
}

// UsageSummary aggregates calls for one provider.
type UsageSummary struct {
	Category     string  `json:"category"`
	Provider     string  `json:"provider"`
	Calls        int64   `json:"calls"`
	Failures     int64   `json:"failures"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// Summary aggregates usage recorded since the given time.
func (r *UsageRepository) Summary(ctx context.Context, since time.Time) ([]UsageSummary, error) {
	var rows []UsageSummary
	err := r.db.WithContext(ctx).Model(&model.ProviderUsage{}).
		Select("category, provider, COUNT(*) AS calls, " +
			"SUM(CASE WHEN success THEN 0 ELSE 1 END) AS failures, " +
			"AVG(latency_ms) AS avg_latency_ms").
		Where("created_at >= ?", since.UTC()).
		Group("category, provider").
		Order("category, provider").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("summarize provider usage: %w", err)
	}
	return rows, nil
}
