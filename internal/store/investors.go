package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/capitalize-ai/investor-finder/internal/model"
)

// InvestorRepository stores investors and their conversation links.
type InvestorRepository struct {
	db *gorm.DB
}

// Save inserts inv, or merges it into an existing row matched by profile URL
// and then by lower-cased name. inv.ID is set either way.
func (r *InvestorRepository) Save(ctx context.Context, inv *model.Investor) error {
	inv.Name = strings.TrimSpace(inv.Name)
	if inv.Name == "" {
		return errors.New("save investor: empty name")
	}
	inv.NameLower = strings.ToLower(inv.Name)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findInvestor(tx, inv)
		if err != nil {
			return err
		}
		if existing == nil {
			if err := tx.Create(inv).Error; err != nil {
				return fmt.Errorf("create investor: %w", err)
			}
			return nil
		}

		mergeInto(existing, inv)
		if err := tx.Save(existing).Error; err != nil {
			return fmt.Errorf("update investor: %w", err)
		}
		*inv = *existing
		return nil
	})
}

func findInvestor(tx *gorm.DB, inv *model.Investor) (*model.Investor, error) {
	var found model.Investor
	if inv.ProfileURL != "" {
		err := tx.Where("profile_url = ?", inv.ProfileURL).First(&found).Error
		if err == nil {
			return &found, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find investor by url: %w", err)
		}
	}
	err := tx.Where("name_lower = ?", inv.NameLower).First(&found).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find investor by name: %w", err)
	}
	return &found, nil
}

// mergeInto fills empty fields of dst from src; a longer bio wins and an
// enriched record stays enriched.
func mergeInto(dst, src *model.Investor) {
	fill := func(d *string, s string) {
		if *d == "" {
			*d = s
		}
	}
	fill(&dst.Title, src.Title)
	fill(&dst.Company, src.Company)
	fill(&dst.Email, src.Email)
	fill(&dst.ProfileURL, src.ProfileURL)
	fill(&dst.Location, src.Location)
	fill(&dst.Source, src.Source)
	if len(src.Bio) > len(dst.Bio) {
		dst.Bio = src.Bio
	}
	if len(dst.InvestmentFocus) == 0 {
		dst.InvestmentFocus = src.InvestmentFocus
	}
	if src.Enriched {
		dst.Enriched = true
		dst.Source = src.Source
	}
}

// Link associates investors with a conversation, appending new links after
// existing ones. Already linked investors are skipped. It returns how many
// links were added.
func (r *InvestorRepository) Link(ctx context.Context, conversationID string, investorIDs []uint64) (int, error) {
	if len(investorIDs) == 0 {
		return 0, nil
	}
	added := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var linked []uint64
		if err := tx.Model(&model.ConversationInvestor{}).
			Where("conversation_id = ?", conversationID).
			Pluck("investor_id", &linked).Error; err != nil {
			return err
		}
		seen := make(map[uint64]struct{}, len(linked)+len(investorIDs))
		for _, id := range linked {
			seen[id] = struct{}{}
		}

		position := len(linked)
		var rows []model.ConversationInvestor
		for _, id := range investorIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			rows = append(rows, model.ConversationInvestor{
				ConversationID: conversationID,
				InvestorID:     id,
				Position:       position,
			})
			position++
		}
		if len(rows) == 0 {
			return nil
		}
		added = len(rows)
		return tx.Create(&rows).Error
	})
	if err != nil {
		return 0, fmt.Errorf("link investors: %w", err)
	}
	return added, nil
}

// ForConversation returns a conversation's investors in discovery order. A
// limit of zero or less returns all of them from offset on.
func (r *InvestorRepository) ForConversation(ctx context.Context, conversationID string, offset, limit int) ([]model.Investor, error) {
	db := r.db.WithContext(ctx).
		Joins("JOIN conversation_investors ON conversation_investors.investor_id = investors.id").
		Where("conversation_investors.conversation_id = ?", conversationID).
		Order("conversation_investors.position ASC")
	if offset > 0 {
		db = db.Offset(offset)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}

	investors := []model.Investor{}
	if err := db.Find(&investors).Error; err != nil {
		return nil, fmt.Errorf("load conversation investors: %w", err)
	}
	return investors, nil
}

// CountForConversation returns how many investors are linked to a conversation.
func (r *InvestorRepository) CountForConversation(ctx context.Context, conversationID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ConversationInvestor{}).
		Where("conversation_id = ?", conversationID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count conversation investors: %w", err)
	}
	return n, nil
}
