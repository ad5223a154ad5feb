package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/capitalize-ai/investor-finder/internal/model"
)

// SearchResultRepository stores raw search hits per conversation.
type SearchResultRepository struct {
	db *gorm.DB
}

// Save stores results for a conversation, skipping URLs it already holds.
func (r *SearchResultRepository) Save(ctx context.Context, conversationID string, results []model.SearchResult) error {
	if len(results) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var urls []string
		if err := tx.Model(&model.SearchResult{}).
			Where("conversation_id = ?", conversationID).
			Pluck("url", &urls).Error; err != nil {
			return fmt.Errorf("load search results: %w", err)
		}
		seen := make(map[string]struct{}, len(urls))
		for _, u := range urls {
			seen[u] = struct{}{}
		}

		var rows []model.SearchResult
		for _, res := range results {
			if _, ok := seen[res.URL]; ok {
				continue
			}
			seen[res.URL] = struct{}{}
			res.ID = 0
			res.ConversationID = conversationID
			rows = append(rows, res)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("save search results: %w", err)
		}
		return nil
	})
}

// Recent returns the newest n results of a conversation in insertion order.
func (r *SearchResultRepository) Recent(ctx context.Context, conversationID string, n int) ([]model.SearchResult, error) {
	var rows []model.SearchResult
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		Limit(n).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load recent search results: %w", err)
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
