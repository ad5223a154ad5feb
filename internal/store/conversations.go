package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/capitalize-ai/investor-finder/internal/apperr"
	"github.com/capitalize-ai/investor-finder/internal/model"
)

// ConversationRepository stores conversations.
type ConversationRepository struct {
	db *gorm.DB
}

// Create inserts a new conversation.
func (r *ConversationRepository) Create(ctx context.Context, c *model.Conversation) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	return nil
}

// CreateIfAbsent inserts c unless a conversation with the same id exists.
// It reports whether this call created the row.
func (r *ConversationRepository) CreateIfAbsent(ctx context.Context, c *model.Conversation) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(c)
	if res.Error != nil {
		return false, fmt.Errorf("create conversation: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Get returns the conversation with id, or a NotFound error.
func (r *ConversationRepository) Get(ctx context.Context, id string) (*model.Conversation, error) {
	var c model.Conversation
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.KindNotFound, "conversations.Get", "conversation %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &c, nil
}

// Save writes every field of c and bumps its update time.
func (r *ConversationRepository) Save(ctx context.Context, c *model.Conversation) error {
	c.UpdatedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

// Touch bumps a conversation's update time.
func (r *ConversationRepository) Touch(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]any{})
}

// UpdateSectors replaces the sectors discussed in a conversation.
func (r *ConversationRepository) UpdateSectors(ctx context.Context, id string, sectors []string) error {
	if sectors == nil {
		sectors = []string{}
	}
	// Matches what gorm's json serializer writes for the column.
	raw, err := json.Marshal(sectors)
	if err != nil {
		return err
	}
	return r.update(ctx, id, map[string]any{"sectors_discussed": string(raw)})
}

// SetInvestorPage records the page of investors last shown.
func (r *ConversationRepository) SetInvestorPage(ctx context.Context, id string, page int) error {
	return r.update(ctx, id, map[string]any{"investor_page": page})
}

func (r *ConversationRepository) update(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.Conversation{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update conversation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.KindNotFound, "conversations.Update", "conversation %s not found", id)
	}
	return nil
}

// List returns a user's conversations, most recently updated first, with
// message and investor counts filled in.
func (r *ConversationRepository) List(ctx context.Context, userID string, limit, offset int) ([]model.Conversation, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Conversation{}).Where("user_id = ?", userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count conversations: %w", err)
	}

	var convs []model.Conversation
	err := db.Order("updated_at DESC").Order("id").Limit(limit).Offset(offset).Find(&convs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list conversations: %w", err)
	}
	if len(convs) == 0 {
		return convs, total, nil
	}

	ids := make([]string, len(convs))
	for i, c := range convs {
		ids[i] = c.ID
	}

	messageCounts, err := r.countBy(ctx, &model.Message{}, ids)
	if err != nil {
		return nil, 0, err
	}
	investorCounts, err := r.countBy(ctx, &model.ConversationInvestor{}, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range convs {
		convs[i].MessageCount = messageCounts[convs[i].ID]
		convs[i].InvestorCount = investorCounts[convs[i].ID]
	}
	return convs, total, nil
}

type conversationCount struct {
	ConversationID string
	N              int64
}

func (r *ConversationRepository) countBy(ctx context.Context, table any, ids []string) (map[string]int64, error) {
	var rows []conversationCount
	err := r.db.WithContext(ctx).Model(table).
		Select("conversation_id, COUNT(*) AS n").
		Where("conversation_id IN ?", ids).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count by conversation: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ConversationID] = row.N
	}
	return out, nil
}

// Delete removes a conversation with its messages, investor links and search
// results. Investor rows are kept.
func (r *ConversationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Conversation{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete conversation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Newf(apperr.KindNotFound, "conversations.Delete", "conversation %s not found", id)
		}
		return deleteChildren(tx, []string{id})
	})
}

// DeleteOlderThan removes conversations not updated since cutoff and returns
// how many were removed.
func (r *ConversationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&model.Conversation{}).Where("updated_at < ?", cutoff.UTC()).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := deleteChildren(tx, ids); err != nil {
			return err
		}
		res := tx.Delete(&model.Conversation{}, "id IN ?", ids)
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("delete old conversations: %w", err)
	}
	return removed, nil
}

func deleteChildren(tx *gorm.DB, ids []string) error {
	for _, table := range []any{&model.Message{}, &model.ConversationInvestor{}, &model.SearchResult{}} {
		if err := tx.Where("conversation_id IN ?", ids).Delete(table).Error; err != nil {
			return fmt.Errorf("delete conversation children: %w", err)
		}
	}
	return nil
}
