// Package service provides business logic for the investor finder.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/capitalize-ai/investor-finder/internal/apperr"
	"github.com/capitalize-ai/investor-finder/internal/events"
	"github.com/capitalize-ai/investor-finder/internal/intent"
	"github.com/capitalize-ai/investor-finder/internal/llm"
	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/internal/store"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
	"github.com/capitalize-ai/investor-finder/pkg/metrics"
	"github.com/capitalize-ai/investor-finder/pkg/tracing"
)

// Apology is the reply stored and returned when every LLM provider failed.
const Apology = "I'm sorry, I couldn't generate a response right now because no language model was available. Please try again in a few minutes."

const (
	// MaxMessageLength is the longest accepted chat message, in characters.
	MaxMessageLength = 5000

	maxTitleLength = 60
)

// ChatOptions configures the chat service.
type ChatOptions struct {
	FallbackOrder []string
	Timeout       time.Duration
	MaxTokens     int
	Temperature   float64
	HistoryLimit  int
	PageSize      int
}

// Emitter receives stream events in the order they occur.
type Emitter func(model.StreamEvent)

func (e Emitter) send(t model.StreamEventType, data any) {
	if e != nil {
		e(model.StreamEvent{Type: t, Data: data})
	}
}

// ChatService answers chat messages. It runs the investor search when a
// message asks for it, builds the model prompt from stored conversation state
// and walks the LLM fallback chain.
type ChatService struct {
	store     *store.Store
	llms      *llm.Registry
	investors *InvestorService
	cooldowns *Cooldowns
	bus       events.Publisher
	opts      ChatOptions
	order     []llm.Provider
	logger    *logger.Logger
}

// NewChatService creates a new chat service. Fallback order entries that are
// not registered LLM providers are ignored.
func NewChatService(
	st *store.Store,
	llms *llm.Registry,
	investors *InvestorService,
	cooldowns *Cooldowns,
	bus events.Publisher,
	opts ChatOptions,
	log *logger.Logger,
) *ChatService {
	log = log.Named("chat")
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 20
	}

	var order []llm.Provider
	for _, name := range opts.FallbackOrder {
		p, ok := llms.Parse(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			log.Warn("ignoring unknown provider in fallback order", zap.String("provider", name))
			continue
		}
		order = append(order, p)
	}

	return &ChatService{
		store:     st,
		llms:      llms,
		investors: investors,
		cooldowns: cooldowns,
		bus:       bus,
		opts:      opts,
		order:     order,
		logger:    log,
	}
}

// turn holds the state of one chat exchange.
type turn struct {
	start      time.Time
	userID     string
	message    string
	override   llm.Provider
	conv       *model.Conversation
	paging     bool
	exhausted  bool
	investors  []model.Investor
	total      int64
	pagination *model.Pagination
}

// completion is the outcome of the fallback chain.
type completion struct {
	provider llm.Provider
	resp     *llm.CompletionResponse
	// partial is set when a stream failed after chunks were forwarded.
	partial bool
}

// Handle answers one chat message.
func (s *ChatService) Handle(ctx context.Context, userID string, req *model.ChatRequest) (*model.ChatResponse, error) {
	ctx, span := tracing.Tracer("service").Start(ctx, "chat.handle")
	defer span.End()

	t, err := s.prepare(ctx, userID, req, nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("conversation.id", t.conv.ID))

	creq, err := s.buildRequest(ctx, t)
	if err != nil {
		return nil, err
	}

	comp, err := s.complete(ctx, t, creq, nil)
	reply, errorKind := "", ""
	switch {
	case err == nil:
		reply = comp.resp.Content
	case errors.Is(err, apperr.AllProvidersExhausted):
		reply, errorKind = Apology, string(apperr.KindAllProvidersExhausted)
		span.SetStatus(codes.Error, "all providers failed")
	default:
		return nil, err
	}

	msg, err := s.persistReply(ctx, t, reply, comp, errorKind)
	if err != nil {
		return nil, err
	}
	return s.response(t, msg, comp, errorKind), nil
}

// HandleStream answers one chat message, emitting progress, investors and
// reply chunks as they become available. Errors returned before any event was
// emitted mean the request was rejected; later failures are reported through
// an error event.
func (s *ChatService) HandleStream(ctx context.Context, userID string, req *model.ChatRequest, emit Emitter) error {
	ctx, span := tracing.Tracer("service").Start(ctx, "chat.stream")
	defer span.End()

	t, err := s.prepare(ctx, userID, req, emit)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.String("conversation.id", t.conv.ID))

	creq, err := s.buildRequest(ctx, t)
	if err != nil {
		return err
	}

	var text strings.Builder
	contentStarted := false
	onChunk := func(p llm.Provider, chunk string) error {
		if !contentStarted {
			contentStarted = true
			emit.send(model.StreamContentStart, model.ContentStartEvent{Provider: string(p)})
		}
		text.WriteString(chunk)
		emit.send(model.StreamContent, model.ContentEvent{Content: chunk})
		return ctx.Err()
	}

	comp, err := s.complete(ctx, t, creq, onChunk)
	switch {
	case err == nil:
		reply := text.String()
		if !contentStarted {
			reply = comp.resp.Content
			_ = onChunk(comp.provider, reply)
		}
		msg, err := s.persistReply(ctx, t, reply, comp, "")
		if err != nil {
			return err
		}
		emit.send(model.StreamDone, s.done(t, msg, comp, ""))
		return nil

	case errors.Is(err, apperr.AllProvidersExhausted):
		emit.send(model.StreamContentStart, model.ContentStartEvent{})
		emit.send(model.StreamContent, model.ContentEvent{Content: Apology})
		kind := string(apperr.KindAllProvidersExhausted)
		msg, err := s.persistReply(ctx, t, Apology, nil, kind)
		if err != nil {
			return err
		}
		emit.send(model.StreamDone, s.done(t, msg, nil, kind))
		return nil

	case comp != nil && comp.partial:
		span.RecordError(err)
		if _, perr := s.persistReply(ctx, t, text.String(), comp, string(apperr.KindProviderCallFailure)); perr != nil {
			s.logger.Error("failed to persist partial reply", zap.Error(perr))
		}
		emit.send(model.StreamError, model.ErrorEvent{
			Code:    string(apperr.KindProviderCallFailure),
			Message: "the response was interrupted",
		})
		return nil

	default:
		return err
	}
}

// prepare validates the request, records the user message and resolves which
// investors the reply should present.
func (s *ChatService) prepare(ctx context.Context, userID string, req *model.ChatRequest, emit Emitter) (*turn, error) {
	t := &turn{start: time.Now(), userID: userID}

	if err := s.validate(req, t); err != nil {
		return nil, err
	}

	conv, err := s.conversation(ctx, userID, req.ConversationID, t.message)
	if err != nil {
		return nil, err
	}
	t.conv = conv
	emit.send(model.StreamStart, model.StartEvent{ConversationID: conv.ID})

	userMsg := &model.Message{ConversationID: conv.ID, Role: model.RoleUser, Content: t.message}
	if err := s.store.Messages.Append(ctx, userMsg); err != nil {
		return nil, err
	}
	metrics.MessagesTotal.WithLabelValues(string(model.RoleUser)).Inc()
	s.bus.Publish(ctx, events.New(events.ChatMessageReceived, "chat", conv.ID, map[string]any{
		"message_id": userMsg.ID,
		"length":     utf8.RuneCountInString(t.message),
	}))

	if err := s.gatherInvestors(ctx, t, emit); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *ChatService) validate(req *model.ChatRequest, t *turn) error {
	if req == nil {
		return apperr.New(apperr.KindValidation, "chat.validate", "request body is required")
	}
	t.message = strings.TrimSpace(req.Message)
	if t.message == "" {
		return apperr.New(apperr.KindValidation, "chat.validate", "message must not be empty")
	}
	if utf8.RuneCountInString(t.message) > MaxMessageLength {
		return apperr.Newf(apperr.KindValidation, "chat.validate", "message must be at most %d characters", MaxMessageLength)
	}
	if req.ConversationID != "" && !model.ValidConversationID(req.ConversationID) {
		return apperr.New(apperr.KindValidation, "chat.validate", "conversation_id must be 1-64 letters, digits, dashes or underscores")
	}
	if raw := strings.ToLower(strings.TrimSpace(req.Provider)); raw != "" {
		p, ok := s.llms.Parse(raw)
		if !ok {
			return apperr.Newf(apperr.KindProviderNotFound, "chat.validate", "unknown llm provider %q", req.Provider)
		}
		t.override = p
	}
	return nil
}

// conversation loads the conversation named by id, creating it when id is
// empty or unknown. Conversations owned by another user are not found.
func (s *ChatService) conversation(ctx context.Context, userID, id, firstMessage string) (*model.Conversation, error) {
	if id != "" {
		conv, err := s.store.Conversations.Get(ctx, id)
		if err == nil {
			if !canAccess(conv, userID) {
				return nil, apperr.Newf(apperr.KindNotFound, "chat.conversation", "conversation %s not found", id)
			}
			return conv, nil
		}
		if !errors.Is(err, apperr.NotFound) {
			return nil, err
		}
	} else {
		id = uuid.NewString()
	}

	conv := &model.Conversation{
		ID:               id,
		UserID:           userID,
		Title:            truncateRunes(firstMessage, maxTitleLength),
		SectorsDiscussed: []string{},
	}
	created, err := s.store.Conversations.CreateIfAbsent(ctx, conv)
	if err != nil {
		return nil, err
	}
	if !created {
		// A concurrent first message created the same client-supplied id.
		existing, err := s.store.Conversations.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !canAccess(existing, userID) {
			return nil, apperr.Newf(apperr.KindNotFound, "chat.conversation", "conversation %s not found", id)
		}
		return existing, nil
	}
	metrics.ConversationsTotal.Inc()
	s.logger.Info("conversation created", zap.String("conversation_id", conv.ID), zap.String("user_id", userID))
	return conv, nil
}

// gatherInvestors pages through stored investors for "show more" requests and
// otherwise runs the search path when the message calls for it.
func (s *ChatService) gatherInvestors(ctx context.Context, t *turn, emit Emitter) error {
	conv, size := t.conv, s.opts.PageSize

	total, err := s.store.Investors.CountForConversation(ctx, conv.ID)
	if err != nil {
		return err
	}

	if total > 0 && intent.WantsNextPage(t.message) {
		t.paging = true
		t.total = total
		next := conv.InvestorPage + 1
		if int64(next*size) >= total {
			t.exhausted = true
			t.investors = []model.Investor{}
			emit.send(model.StreamStatus, model.StatusEvent{
				Message: fmt.Sprintf("All %d investors have been shown. Start a new search to find more.", total),
			})
		} else {
			if err := s.store.Conversations.SetInvestorPage(ctx, conv.ID, next); err != nil {
				return err
			}
			conv.InvestorPage = next
			if t.investors, err = s.store.Investors.ForConversation(ctx, conv.ID, next*size, size); err != nil {
				return err
			}
			first := next*size + 1
			emit.send(model.StreamStatus, model.StatusEvent{
				Message: fmt.Sprintf("Showing investors %d-%d of %d", first, first+len(t.investors)-1, total),
			})
		}
		t.pagination = pagination(conv.InvestorPage, size, total)
		emit.send(model.StreamPagination, t.pagination)
		return nil
	}

	searched := false
	if intent.ShouldSearch(t.message) {
		searched = true
		if err := s.searchAndStore(ctx, t, total, emit); err != nil {
			return err
		}
		if total, err = s.store.Investors.CountForConversation(ctx, conv.ID); err != nil {
			return err
		}
	}

	t.total = total
	t.investors = []model.Investor{}
	if total == 0 {
		return nil
	}
	if t.investors, err = s.store.Investors.ForConversation(ctx, conv.ID, conv.InvestorPage*size, size); err != nil {
		return err
	}
	t.pagination = pagination(conv.InvestorPage, size, total)
	if searched {
		emit.send(model.StreamInvestorsFound, model.InvestorsFoundEvent{
			Investors:        t.investors,
			Total:            total,
			SectorsDiscussed: conv.SectorsDiscussed,
		})
		emit.send(model.StreamPagination, t.pagination)
	}
	return nil
}

// searchAndStore runs one investor search and persists what it finds. A
// failed search is reported and otherwise ignored.
func (s *ChatService) searchAndStore(ctx context.Context, t *turn, before int64, emit Emitter) error {
	conv := t.conv
	q := model.InvestorQuery{
		Sectors:  intent.SectorsOrDefault(t.message),
		Stage:    intent.Stage(t.message),
		Location: intent.Location(t.message),
	}
	emit.send(model.StreamStatus, model.StatusEvent{
		Message: fmt.Sprintf("Searching for investors in %s...", strings.Join(q.Sectors, ", ")),
	})

	sectors := intent.MergeSectors(conv.SectorsDiscussed, q.Sectors)
	if err := s.store.Conversations.UpdateSectors(ctx, conv.ID, sectors); err != nil {
		return err
	}
	conv.SectorsDiscussed = sectors

	found, results, err := s.investors.Find(ctx, conv.ID, q)
	if err != nil {
		s.logger.Warn("investor search failed", zap.String("conversation_id", conv.ID), zap.Error(err))
		emit.send(model.StreamStatus, model.StatusEvent{Message: "Investor search is unavailable right now."})
		return nil
	}

	ids := make([]uint64, 0, len(found))
	for i := range found {
		if err := s.store.Investors.Save(ctx, &found[i]); err != nil {
			return err
		}
		ids = append(ids, found[i].ID)
	}
	added, err := s.store.Investors.Link(ctx, conv.ID, ids)
	if err != nil {
		return err
	}
	if err := s.store.SearchResults.Save(ctx, conv.ID, results); err != nil {
		return err
	}

	// Show the page holding the first newly linked investor.
	if added > 0 {
		page := int(before) / s.opts.PageSize
		if err := s.store.Conversations.SetInvestorPage(ctx, conv.ID, page); err != nil {
			return err
		}
		conv.InvestorPage = page
	}
	emit.send(model.StreamStatus, model.StatusEvent{
		Message: fmt.Sprintf("Found %d investors (%d new).", len(found), added),
	})
	return nil
}

func pagination(page, size int, total int64) *model.Pagination {
	pages := int((total + int64(size) - 1) / int64(size))
	return &model.Pagination{
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		Total:      total,
		HasMore:    int64((page+1)*size) < total,
	}
}

// buildRequest assembles the model request from the conversation's recent
// history and search context.
func (s *ChatService) buildRequest(ctx context.Context, t *turn) (*llm.CompletionRequest, error) {
	history, err := s.store.Messages.History(ctx, t.conv.ID, s.opts.HistoryLimit)
	if err != nil {
		return nil, err
	}
	results, err := s.store.SearchResults.Recent(ctx, t.conv.ID, maxPromptResults)
	if err != nil {
		return nil, err
	}

	system := buildSystemPrompt(promptContext{
		Sectors:   t.conv.SectorsDiscussed,
		Results:   results,
		Investors: t.investors,
		Total:     t.total,
		Page:      t.conv.InvestorPage,
		PageSize:  s.opts.PageSize,
		Paging:    t.paging,
		Exhausted: t.exhausted,
	})
	return &llm.CompletionRequest{
		System:      system,
		Messages:    historyMessages(history),
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	}, nil
}

// chain returns the providers to try: the override first, then the
// configured order, without repeats.
func (s *ChatService) chain(override llm.Provider) []llm.Provider {
	out := make([]llm.Provider, 0, len(s.order)+1)
	seen := make(map[llm.Provider]struct{}, len(s.order)+1)
	add := func(p llm.Provider) {
		if _, ok := seen[p]; ok || p == "" {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	add(override)
	for _, p := range s.order {
		add(p)
	}
	return out
}

// complete walks the fallback chain. A provider that fails is put in
// cooldown and the next one is tried; providers already cooling down are
// skipped. When onChunk is set the call streams, and a provider that fails
// after forwarding a chunk ends the chain with a partial completion.
func (s *ChatService) complete(ctx context.Context, t *turn, req *llm.CompletionRequest, onChunk func(llm.Provider, string) error) (*completion, error) {
	for _, p := range s.chain(t.override) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.cooldowns.Active(string(p)) {
			s.logger.Debug("skipping provider in cooldown", zap.String("provider", string(p)))
			continue
		}

		forwarded := false
		var cb llm.StreamCallback
		if onChunk != nil {
			cb = func(token string, _ int) error {
				forwarded = true
				return onChunk(p, token)
			}
		}

		resp, err := s.call(ctx, t.conv.ID, p, req, cb)
		if err == nil {
			s.cooldowns.Clear(string(p))
			return &completion{provider: p, resp: resp}, nil
		}

		if ctx.Err() != nil {
			if forwarded {
				return &completion{provider: p, partial: true}, ctx.Err()
			}
			return nil, ctx.Err()
		}
		s.cooldowns.Mark(string(p))
		metrics.ProviderFallbacksTotal.WithLabelValues(string(p)).Inc()
		s.logger.Warn("llm provider failed",
			zap.String("conversation_id", t.conv.ID),
			zap.String("provider", string(p)),
			zap.Bool("mid_stream", forwarded),
			zap.Error(err),
		)
		if forwarded {
			return &completion{provider: p, partial: true}, err
		}
	}

	metrics.ProvidersExhaustedTotal.Inc()
	s.bus.Publish(ctx, events.New(events.ProvidersExhausted, "chat", t.conv.ID, map[string]any{
		"category": "llm",
	}))
	return nil, apperr.New(apperr.KindAllProvidersExhausted, "chat.complete", "every llm provider failed")
}

// call invokes one provider and records the outcome.
func (s *ChatService) call(ctx context.Context, conversationID string, p llm.Provider, req *llm.CompletionRequest, cb llm.StreamCallback) (*llm.CompletionResponse, error) {
	mode := "complete"
	if cb != nil {
		mode = "stream"
	}
	ctx, span := tracing.Tracer("service").Start(ctx, "llm.complete", trace.WithAttributes(
		attribute.String("llm.provider", string(p)),
		attribute.String("llm.mode", mode),
	))
	defer span.End()

	start := time.Now()
	resp, err := s.invoke(ctx, p, req, cb)
	elapsed := time.Since(start)

	data := map[string]any{
		"category":   "llm",
		"provider":   string(p),
		"latency_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		err = classifyProviderErr(p, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider call failed")
		metrics.RecordLLMCall(string(p), mode, "error", elapsed.Seconds(), 0, 0)
		data["error"] = err.Error()
		s.bus.Publish(ctx, events.New(events.ProviderFailed, "chat", conversationID, data))
		return nil, err
	}

	if resp.LatencyMs == 0 {
		resp.LatencyMs = elapsed.Milliseconds()
	}
	metrics.RecordLLMCall(string(p), mode, "success", elapsed.Seconds(), resp.TokensIn, resp.TokensOut)
	data["tokens_in"] = resp.TokensIn
	data["tokens_out"] = resp.TokensOut
	data["model"] = resp.Model
	s.bus.Publish(ctx, events.New(events.ProviderSucceeded, "chat", conversationID, data))
	return resp, nil
}

func (s *ChatService) invoke(ctx context.Context, p llm.Provider, req *llm.CompletionRequest, cb llm.StreamCallback) (*llm.CompletionResponse, error) {
	client, err := s.llms.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	if cb != nil {
		return client.CompleteStream(ctx, req, cb)
	}
	return client.Complete(ctx, req)
}

// classifyProviderErr marks unclassified provider errors as call failures.
func classifyProviderErr(p llm.Provider, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Wrap(apperr.KindProviderCallFailure, "llm."+string(p), err)
}

// persistReply stores the assistant message. It outlives a cancelled request
// so partial replies are kept.
func (s *ChatService) persistReply(ctx context.Context, t *turn, content string, comp *completion, errorKind string) (*model.Message, error) {
	ctx = context.WithoutCancel(ctx)

	msg := &model.Message{
		ConversationID: t.conv.ID,
		Role:           model.RoleAssistant,
		Content:        content,
	}
	if comp != nil {
		msg.Provider = string(comp.provider)
		if comp.resp != nil {
			msg.Model = comp.resp.Model
			msg.TokensIn = comp.resp.TokensIn
			msg.TokensOut = comp.resp.TokensOut
			msg.LatencyMs = comp.resp.LatencyMs
		}
	}
	if err := s.store.Messages.Append(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.store.Conversations.Touch(ctx, t.conv.ID); err != nil {
		return nil, err
	}
	metrics.MessagesTotal.WithLabelValues(string(model.RoleAssistant)).Inc()

	data := map[string]any{
		"message_id":         msg.ID,
		"processing_time_ms": time.Since(t.start).Milliseconds(),
		"investors_total":    t.total,
		"provider":           msg.Provider,
	}
	if errorKind != "" {
		data["error_kind"] = errorKind
	}
	s.bus.Publish(ctx, events.New(events.ChatResponseGenerated, "chat", t.conv.ID, data))
	return msg, nil
}

func (s *ChatService) response(t *turn, msg *model.Message, comp *completion, errorKind string) *model.ChatResponse {
	resp := &model.ChatResponse{
		Message:          msg.Content,
		ConversationID:   t.conv.ID,
		MessageID:        msg.ID,
		Investors:        t.investors,
		TotalInvestors:   t.total,
		SectorsDiscussed: t.conv.SectorsDiscussed,
		Pagination:       t.pagination,
		ProcessingTimeMs: time.Since(t.start).Milliseconds(),
		ErrorKind:        errorKind,
	}
	if resp.Investors == nil {
		resp.Investors = []model.Investor{}
	}
	if resp.SectorsDiscussed == nil {
		resp.SectorsDiscussed = []string{}
	}
	if comp != nil && comp.resp != nil {
		resp.Provider = string(comp.provider)
		resp.ModelUsed = comp.resp.Model
	}
	return resp
}

func (s *ChatService) done(t *turn, msg *model.Message, comp *completion, errorKind string) model.DoneEvent {
	ev := model.DoneEvent{
		ConversationID:   t.conv.ID,
		MessageID:        msg.ID,
		ProcessingTimeMs: time.Since(t.start).Milliseconds(),
		ErrorKind:        errorKind,
	}
	if comp != nil && comp.resp != nil {
		ev.Provider = string(comp.provider)
		ev.ModelUsed = comp.resp.Model
	}
	return ev
}

// Providers reports registered providers per category and which of them can
// be used right now.
func (s *ChatService) Providers(ctx context.Context) *model.ProvidersResponse {
	resp := &model.ProvidersResponse{
		LLMProviders:           []string{},
		ConfiguredLLMProviders: []string{},
		FallbackOrder:          []string{},
		CoolingDown:            s.cooldowns.Snapshot(),
		SearchProviders:        []string{},
		ScraperProviders:       []string{},
	}
	for _, p := range s.llms.Names() {
		resp.LLMProviders = append(resp.LLMProviders, string(p))
		if _, err := s.llms.Resolve(ctx, p); err == nil {
			resp.ConfiguredLLMProviders = append(resp.ConfiguredLLMProviders, string(p))
		}
	}
	for _, p := range s.order {
		resp.FallbackOrder = append(resp.FallbackOrder, string(p))
	}
	for _, p := range s.investors.searches.Names() {
		resp.SearchProviders = append(resp.SearchProviders, string(p))
	}
	for _, p := range s.investors.scrapers.Names() {
		resp.ScraperProviders = append(resp.ScraperProviders, string(p))
	}
	_, err := s.investors.searches.Resolve(ctx, s.investors.opts.SearchProvider)
	resp.SearchReady = err == nil
	_, err = s.investors.scrapers.Resolve(ctx, s.investors.opts.ScraperProvider)
	resp.ScraperReady = err == nil
	return resp
}

func canAccess(conv *model.Conversation, userID string) bool {
	return conv.UserID == "" || conv.UserID == userID
}
