package chat

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mesa-hq/mesa-server/domain/agent"
	"github.com/mesa-hq/mesa-server/domain/monitoring"
	"github.com/mesa-hq/mesa-server/domain/tools"
	"github.com/mesa-hq/mesa-server/internal/config"
	"github.com/mesa-hq/mesa-server/pkg/apperror"
	"github.com/mesa-hq/mesa-server/pkg/auth"
	"github.com/mesa-hq/mesa-server/pkg/logger"
	"github.com/mesa-hq/mesa-server/pkg/sse"
	"github.com/mesa-hq/mesa-server/pkg/tracing"
)

// Handler handles chat HTTP requests
type Handler struct {
	store   Store
	engine  agent.Engine
	agcfg   config.AgentConfig
	metrics *monitoring.Metrics
	log     *slog.Logger
}

// NewHandler creates a new chat handler
func NewHandler(store Store, engine agent.Engine, cfg *config.Config, metrics *monitoring.Metrics, log *slog.Logger) *Handler {
	return &Handler{
		store:   store,
		engine:  engine,
		agcfg:   cfg.Agent,
		metrics: metrics,
		log:     log.With(logger.Scope("chat.handler")),
	}
}

// ListConversations handles GET /api/chat/conversations
func (h *Handler) ListConversations(c echo.Context) error {
	accountID := auth.GetAccountID(c)
	if accountID == "" {
		return apperror.ErrUnauthorized
	}

	limit := 50
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 100 {
			return apperror.ErrBadRequest.WithMessage("limit must be between 1 and 100")
		}
		limit = parsed
	}

	offset := 0
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil || parsed < 0 {
			return apperror.ErrBadRequest.WithMessage("offset must be a non-negative integer")
		}
		offset = parsed
	}

	result, err := h.store.ListConversations(c.Request().Context(), accountID, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// GetConversation handles GET /api/chat/conversations/:id
func (h *Handler) GetConversation(c echo.Context) error {
	accountID := auth.GetAccountID(c)
	if accountID == "" {
		return apperror.ErrUnauthorized
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid conversation id")
	}

	conv, err := h.store.GetConversationWithMessages(c.Request().Context(), accountID, conversationID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, conv)
}

// CreateConversation handles POST /api/chat/conversations
func (h *Handler) CreateConversation(c echo.Context) error {
	accountID := auth.GetAccountID(c)
	if accountID == "" {
		return apperror.ErrUnauthorized
	}

	var req CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		req.Title = "New conversation"
	}
	if len(req.Title) > 512 {
		return apperror.ErrBadRequest.WithMessage("title must be at most 512 characters")
	}

	conv, err := h.store.CreateConversation(c.Request().Context(), accountID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, conv)
}

// UpdateConversation handles PATCH /api/chat/conversations/:id
func (h *Handler) UpdateConversation(c echo.Context) error {
	accountID := auth.GetAccountID(c)
	if accountID == "" {
		return apperror.ErrUnauthorized
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid conversation id")
	}

	var req UpdateConversationRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return apperror.ErrBadRequest.WithMessage("title is required")
	}
	if len(req.Title) > 512 {
		return apperror.ErrBadRequest.WithMessage("title must be at most 512 characters")
	}

	conv, err := h.store.UpdateConversation(c.Request().Context(), accountID, conversationID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, conv)
}

// DeleteConversation handles DELETE /api/chat/conversations/:id
func (h *Handler) DeleteConversation(c echo.Context) error {
	accountID := auth.GetAccountID(c)
	if accountID == "" {
		return apperror.ErrUnauthorized
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid conversation id")
	}

	if err := h.store.DeleteConversation(c.Request().Context(), accountID, conversationID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

// StreamChat handles POST /api/chat/stream. It runs the agent loop for one
// user message and streams the resulting events over SSE.
//
// The request moves through authenticating, loading history, streaming, and
// persisting. Failures before the stream opens surface as plain JSON errors;
// once SSE framing has started, failures become a single error event instead.
func (h *Handler) StreamChat(c echo.Context) error {
	accountID := auth.GetAccountID(c)
	if accountID == "" {
		return apperror.ErrUnauthorized
	}

	// Parse and validate before any SSE framing so bad requests still get
	// plain JSON errors.
	var req StreamRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}
	message := strings.TrimSpace(req.Message)
	if req.ConversationID == "" || message == "" {
		return apperror.ErrBadRequest.WithMessage("conversationId and message are required")
	}
	if len(message) > 100000 {
		return apperror.ErrBadRequest.WithMessage("message must be at most 100000 characters")
	}
	conversationID, err := uuid.Parse(req.ConversationID)
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid conversationId format")
	}

	ctx := c.Request().Context()

	// Ownership check doubles as existence check; 404 either way.
	conv, err := h.store.GetConversation(ctx, accountID, conversationID)
	if err != nil {
		return err
	}

	// History is context, not a prerequisite; a load failure degrades to an
	// empty window.
	history, err := h.store.History(ctx, conv.ID, h.agcfg.HistoryLimit)
	if err != nil {
		h.log.Warn("failed to load conversation history",
			slog.String("conversation_id", conv.ID.String()),
			logger.Error(err),
		)
		history = nil
	}

	if _, err := h.store.AddMessage(ctx, conv.ID, RoleUser, message, nil); err != nil {
		return err
	}

	writer := sse.NewWriter(c.Response().Writer)
	if err := writer.Start(); err != nil {
		return apperror.ErrInternal.WithMessage("failed to start SSE stream")
	}

	turns := make([]agent.Turn, 0, len(history))
	for _, msg := range history {
		turns = append(turns, agent.Turn{Role: msg.Role, Content: msg.Content})
	}

	dedup := agent.NewDeduplicator(h.log)
	var transcript strings.Builder
	var chart *tools.ChartConfig

	emit := func(frame agent.UpdateFrame) error {
		for _, ev := range dedup.Process(frame) {
			switch ev.Type {
			case sse.EventText:
				if content, ok := ev.Content.(string); ok {
					transcript.WriteString(content)
				}
			case sse.EventChart:
				if cfg, ok := ev.Content.(*tools.ChartConfig); ok {
					chart = cfg
				}
			}
			if err := writer.WriteEvent(ev); err != nil {
				return err
			}
		}
		return nil
	}

	streamCtx, span := tracing.Start(ctx, "chat.stream",
		attribute.String("mesa.conversation.id", conv.ID.String()),
		attribute.Int("mesa.history.turns", len(turns)),
	)
	streamErr := h.engine.Stream(streamCtx, agent.Request{
		System:  agent.SystemPrompt,
		History: turns,
		Message: message,
	}, emit)
	span.End()

	if streamErr != nil {
		if ctx.Err() != nil {
			// Client went away. Keep whatever was produced; the turn is
			// incomplete, so no terminal event.
			h.persistPartial(conv.ID, transcript.String(), chart)
			h.metrics.Streams.WithLabelValues("disconnected").Inc()
			return nil
		}

		h.log.Error("streaming failed",
			slog.String("conversation_id", conv.ID.String()),
			logger.Error(streamErr),
		)
		writer.WriteEvent(sse.NewErrorEvent(streamErr.Error()))
		h.metrics.Streams.WithLabelValues("error").Inc()
		return nil
	}

	var meta *MessageMetadata
	if chart != nil {
		meta = &MessageMetadata{Chart: chart}
	}
	if _, err := h.store.AddMessage(ctx, conv.ID, RoleAI, transcript.String(), meta); err != nil {
		h.log.Error("failed to persist AI message",
			slog.String("conversation_id", conv.ID.String()),
			logger.Error(err),
		)
		writer.WriteEvent(sse.NewErrorEvent("failed to save response"))
		h.metrics.Streams.WithLabelValues("error").Inc()
		return nil
	}

	writer.WriteEvent(sse.NewDoneEvent())
	h.metrics.Streams.WithLabelValues("done").Inc()
	return nil
}

// persistPartial writes an interrupted turn's transcript outside the request
// context, which is already canceled by the time we get here.
func (h *Handler) persistPartial(conversationID uuid.UUID, content string, chart *tools.ChartConfig) {
	if content == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var meta *MessageMetadata
	if chart != nil {
		meta = &MessageMetadata{Chart: chart}
	}
	if _, err := h.store.AddMessage(ctx, conversationID, RoleAI, content, meta); err != nil {
		h.log.Error("failed to persist partial transcript",
			slog.String("conversation_id", conversationID.String()),
			logger.Error(err),
		)
	}
}
