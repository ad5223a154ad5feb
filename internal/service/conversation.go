package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/investor-finder/internal/apperr"
	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/internal/store"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ConversationService handles conversation operations.
type ConversationService struct {
	store  *store.Store
	logger *logger.Logger
}

// NewConversationService creates a new conversation service.
func NewConversationService(st *store.Store, log *logger.Logger) *ConversationService {
	return &ConversationService{
		store:  st,
		logger: log.Named("conversations"),
	}
}

// List retrieves a user's conversations, most recently active first.
func (s *ConversationService) List(ctx context.Context, userID string, limit, offset int) (*model.ListConversationsResponse, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	convs, total, err := s.store.Conversations.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range convs {
		last, err := s.store.Messages.Last(ctx, convs[i].ID)
		if err != nil {
			return nil, err
		}
		convs[i].LastMessage = last
	}
	if convs == nil {
		convs = []model.Conversation{}
	}

	return &model.ListConversationsResponse{
		Conversations: convs,
		Total:         total,
		HasMore:       int64(offset+len(convs)) < total,
	}, nil
}

// Get retrieves a conversation with its full message history in write order
// and every investor it found.
func (s *ConversationService) Get(ctx context.Context, userID, conversationID string) (*model.ConversationDetail, error) {
	conv, err := s.owned(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.store.Messages.History(ctx, conv.ID, 0)
	if err != nil {
		return nil, err
	}
	investors, err := s.store.Investors.ForConversation(ctx, conv.ID, 0, 0)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.Message{}
	}

	conv.MessageCount = int64(len(msgs))
	conv.InvestorCount = int64(len(investors))
	if n := len(msgs); n > 0 {
		conv.LastMessage = &msgs[n-1]
	}
	return &model.ConversationDetail{
		Conversation: *conv,
		Messages:     msgs,
		Investors:    investors,
	}, nil
}

// Investors returns every investor a conversation found, in discovery order.
func (s *ConversationService) Investors(ctx context.Context, userID, conversationID string) ([]model.Investor, error) {
	conv, err := s.owned(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	return s.store.Investors.ForConversation(ctx, conv.ID, 0, 0)
}

// Delete removes a conversation together with its messages, investor links
// and search results.
func (s *ConversationService) Delete(ctx context.Context, userID, conversationID string) error {
	conv, err := s.owned(ctx, userID, conversationID)
	if err != nil {
		return err
	}
	if err := s.store.Conversations.Delete(ctx, conv.ID); err != nil {
		return err
	}
	s.logger.Info("conversation deleted", zap.String("conversation_id", conv.ID))
	return nil
}

// Cleanup removes conversations idle for longer than maxAge.
func (s *ConversationService) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	removed, err := s.store.Conversations.DeleteOlderThan(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	s.logger.Info("old conversations removed", zap.Int64("count", removed), zap.Duration("max_age", maxAge))
	return removed, nil
}

// owned loads a conversation visible to userID.
func (s *ConversationService) owned(ctx context.Context, userID, conversationID string) (*model.Conversation, error) {
	conv, err := s.store.Conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !canAccess(conv, userID) {
		return nil, apperr.Newf(apperr.KindNotFound, "conversations.Get", "conversation %s not found", conversationID)
	}
	return conv, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
