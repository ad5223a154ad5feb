package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/capitalize-ai/investor-finder/internal/model"
)

// MessageRepository stores messages. Messages are only ever inserted.
type MessageRepository struct {
	db *gorm.DB
}

// Append inserts m and sets its id.
func (r *MessageRepository) Append(ctx context.Context, m *model.Message) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// History returns the last limit messages of a conversation in write order.
// A limit of zero or less returns every message.
func (r *MessageRepository) History(ctx context.Context, conversationID string, limit int) ([]model.Message, error) {
	var msgs []model.Message
	db := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID)

	if limit <= 0 {
		if err := db.Order("id ASC").Find(&msgs).Error; err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
		return msgs, nil
	}

	if err := db.Order("id DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Last returns the newest message of a conversation, or nil when it has none.
func (r *MessageRepository) Last(ctx context.Context, conversationID string) (*model.Message, error) {
	msgs, err := r.History(ctx, conversationID, 1)
	if err != nil || len(msgs) == 0 {
		return nil, err
	}
	return &msgs[0], nil
}

// Count returns how many messages a conversation holds.
func (r *MessageRepository) Count(ctx context.Context, conversationID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).Where("conversation_id = ?", conversationID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}
