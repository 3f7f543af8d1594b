package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pulsedate/backend/internal/domain/model"
	"github.com/pulsedate/backend/internal/realtime"
	authsvc "github.com/pulsedate/backend/internal/services/auth"
	conversationssvc "github.com/pulsedate/backend/internal/services/conversations"
	"github.com/pulsedate/backend/internal/transport/http/dto"
	httperrors "github.com/pulsedate/backend/internal/transport/http/errors"
)

type MessagesHandler struct {
	service    *conversationssvc.Service
	broker     realtime.Broker
	maxTextLen int
	logger     *zap.Logger
}

func NewMessagesHandler(service *conversationssvc.Service, broker realtime.Broker, maxTextLen int, logger *zap.Logger) *MessagesHandler {
	if maxTextLen <= 0 {
		maxTextLen = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessagesHandler{service: service, broker: broker, maxTextLen: maxTextLen, logger: logger}
}

func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGES_SERVICE_UNAVAILABLE", "messages service is unavailable")
		return
	}

	conversationID, ok := conversationIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "conversationID must be a positive integer")
		return
	}

	messages, err := h.service.ListMessages(r.Context(), conversationID, identity.UserID)
	if err != nil {
		handleConversationError(w, err)
		return
	}

	items := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		items = append(items, messageResponse(m))
	}

	httperrors.Write(w, http.StatusOK, dto.MessagesResponse{Items: items})
}

func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGES_SERVICE_UNAVAILABLE", "messages service is unavailable")
		return
	}

	conversationID, ok := conversationIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "conversationID must be a positive integer")
		return
	}

	var req dto.MessageSendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" || len([]rune(text)) > h.maxTextLen {
		writeBadRequest(w, "VALIDATION_ERROR", fmt.Sprintf("text must be between 1 and %d characters", h.maxTextLen))
		return
	}

	message, err := h.service.SendMessage(r.Context(), conversationID, identity.UserID, text)
	if err != nil {
		handleConversationError(w, err)
		return
	}

	// Delivery to live subscribers is best effort, the message is already persisted.
	if h.broker != nil {
		if err := h.broker.Publish(r.Context(), conversationID, message); err != nil {
			h.logger.Warn("realtime publish failed",
				zap.Int64("conversation_id", conversationID),
				zap.Error(err))
		}
	}

	httperrors.Write(w, http.StatusCreated, messageResponse(message))
}

func messageResponse(m model.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Text:           m.Text,
		CreatedAt:      m.CreatedAt,
	}
}
