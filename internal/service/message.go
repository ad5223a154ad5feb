package service

import (
	"context"

	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/internal/store"
)

// MessageService reads conversation messages.
type MessageService struct {
	store         *store.Store
	conversations *ConversationService
}

// NewMessageService creates a new message service.
func NewMessageService(st *store.Store, conversations *ConversationService) *MessageService {
	return &MessageService{
		store:         st,
		conversations: conversations,
	}
}

// GetMessages returns the last limit messages of a conversation in write
// order. A limit of zero returns the default page.
func (s *MessageService) GetMessages(ctx context.Context, userID, conversationID string, limit int) (*model.ListMessagesResponse, error) {
	conv, err := s.conversations.owned(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	msgs, err := s.store.Messages.History(ctx, conv.ID, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Messages.Count(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return &model.ListMessagesResponse{
		Messages: msgs,
		Total:    total,
	}, nil
}
