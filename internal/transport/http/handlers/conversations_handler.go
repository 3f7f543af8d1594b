package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/pulsedate/backend/internal/services/auth"
	conversationssvc "github.com/pulsedate/backend/internal/services/conversations"
	"github.com/pulsedate/backend/internal/transport/http/dto"
	httperrors "github.com/pulsedate/backend/internal/transport/http/errors"
)

type ConversationsHandler struct {
	service *conversationssvc.Service
}

func NewConversationsHandler(service *conversationssvc.Service) *ConversationsHandler {
	return &ConversationsHandler{service: service}
}

func (h *ConversationsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CONVERSATIONS_SERVICE_UNAVAILABLE", "conversations service is unavailable")
		return
	}

	conversations, err := h.service.ListForUser(r.Context(), identity.UserID)
	if err != nil {
		handleConversationError(w, err)
		return
	}

	items := make([]dto.ConversationItemResponse, 0, len(conversations))
	for _, c := range conversations {
		items = append(items, dto.ConversationItemResponse{
			ID:            c.ID,
			TargetUserID:  c.TargetUserID,
			Name:          c.Name,
			Age:           c.Age,
			Gender:        string(c.Gender),
			Bio:           c.Bio,
			Photos:        c.Photos,
			CreatedAt:     c.CreatedAt,
			LastMessage:   c.LastMessage,
			LastMessageAt: c.LastMessageAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ConversationsResponse{Items: items})
}

func (h *ConversationsHandler) Start(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CONVERSATIONS_SERVICE_UNAVAILABLE", "conversations service is unavailable")
		return
	}

	var req dto.ConversationStartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	if req.OtherUserID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "other_user_id is required")
		return
	}

	result, err := h.service.Start(r.Context(), identity.UserID, req.OtherUserID)
	if err != nil {
		handleConversationError(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}

	httperrors.Write(w, status, dto.ConversationResponse{
		ID:        result.Conversation.ID,
		UserAID:   result.Conversation.UserAID,
		UserBID:   result.Conversation.UserBID,
		IsActive:  result.Conversation.IsActive,
		CreatedAt: result.Conversation.CreatedAt,
	})
}

func (h *ConversationsHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CONVERSATIONS_SERVICE_UNAVAILABLE", "conversations service is unavailable")
		return
	}

	conversationID, ok := conversationIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "conversationID must be a positive integer")
		return
	}

	if err := h.service.Close(r.Context(), conversationID, identity.UserID); err != nil {
		handleConversationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

func conversationIDFromRequest(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "conversationID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func handleConversationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, conversationssvc.ErrNotMatched):
		writeBadRequest(w, "NOT_MATCHED", "conversation requires an existing match")
	case errors.Is(err, conversationssvc.ErrInactive):
		writeBadRequest(w, "CONVERSATION_INACTIVE", "conversation is no longer active")
	case errors.Is(err, conversationssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid conversation request")
	case errors.Is(err, conversationssvc.ErrNotParticipant):
		writeForbidden(w, "NOT_PARTICIPANT", "you are not part of this conversation")
	case errors.Is(err, conversationssvc.ErrNotFound):
		writeNotFound(w, "CONVERSATION_NOT_FOUND", "conversation not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "conversation operation failed")
	}
}
