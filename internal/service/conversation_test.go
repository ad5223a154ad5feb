package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/investor-finder/internal/apperr"
	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
)

func TestConversationLifecycle(t *testing.T) {
	h := newHarness(t, harnessOptions{}, &fakeLLM{name: "a", reply: "answer"})
	h.search.results = linkedInResults(3)
	convs := NewConversationService(h.store, logger.NewNop())
	msgs := NewMessageService(h.store, convs)
	ctx := context.Background()

	resp, err := h.chat.Handle(ctx, "u1", &model.ChatRequest{Message: "find fintech investors"})
	require.NoError(t, err)
	id := resp.ConversationID

	list, err := convs.List(ctx, "u1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	assert.False(t, list.HasMore)
	require.Len(t, list.Conversations, 1)
	require.NotNil(t, list.Conversations[0].LastMessage)
	assert.Equal(t, "answer", list.Conversations[0].LastMessage.Content)

	other, err := convs.List(ctx, "u2", 0, 0)
	require.NoError(t, err)
	assert.Zero(t, other.Total)
	assert.NotNil(t, other.Conversations)

	detail, err := convs.Get(ctx, "u1", id)
	require.NoError(t, err)
	assert.Len(t, detail.Messages, 2)
	assert.Len(t, detail.Investors, 3)
	assert.Equal(t, int64(2), detail.MessageCount)
	assert.Equal(t, []string{"fintech"}, detail.SectorsDiscussed)

	page, err := msgs.GetMessages(ctx, "u1", id, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, model.RoleAssistant, page.Messages[0].Role)

	_, err = convs.Get(ctx, "u2", id)
	assert.ErrorIs(t, err, apperr.NotFound)
	_, err = msgs.GetMessages(ctx, "u2", id, 0)
	assert.ErrorIs(t, err, apperr.NotFound)
	assert.ErrorIs(t, convs.Delete(ctx, "u2", id), apperr.NotFound)

	require.NoError(t, convs.Delete(ctx, "u1", id))
	_, err = convs.Get(ctx, "u1", id)
	assert.ErrorIs(t, err, apperr.NotFound)
	assert.ErrorIs(t, convs.Delete(ctx, "u1", id), apperr.NotFound)

	n, err := h.store.Messages.Count(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAnonymousConversationIsShared(t *testing.T) {
	h := newHarness(t, harnessOptions{}, &fakeLLM{name: "a", reply: "answer"})
	convs := NewConversationService(h.store, logger.NewNop())
	ctx := context.Background()

	resp, err := h.chat.Handle(ctx, "", &model.ChatRequest{Message: "hello there"})
	require.NoError(t, err)

	_, err = convs.Get(ctx, "someone", resp.ConversationID)
	assert.NoError(t, err)
}

func TestConversationCleanup(t *testing.T) {
	h := newHarness(t, harnessOptions{}, &fakeLLM{name: "a", reply: "answer"})
	convs := NewConversationService(h.store, logger.NewNop())
	ctx := context.Background()

	_, err := h.chat.Handle(ctx, "", &model.ChatRequest{Message: "hello there"})
	require.NoError(t, err)

	removed, err := convs.Cleanup(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)

	removed, err = convs.Cleanup(ctx, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0))
	assert.Equal(t, 5, clampLimit(5))
	assert.Equal(t, 100, clampLimit(1000))
}
