package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pulsedate/backend/internal/domain/model"
	"github.com/pulsedate/backend/internal/realtime"
	authsvc "github.com/pulsedate/backend/internal/services/auth"
	conversationssvc "github.com/pulsedate/backend/internal/services/conversations"
)

const (
	eventsHeartbeatInterval = 15 * time.Second
	eventsBufferSize        = 16
)

// EventsHandler streams new messages of a conversation over SSE.
type EventsHandler struct {
	service *conversationssvc.Service
	broker  realtime.Broker
	logger  *zap.Logger
}

func NewEventsHandler(service *conversationssvc.Service, broker realtime.Broker, logger *zap.Logger) *EventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{service: service, broker: broker, logger: logger}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil || h.broker == nil {
		writeInternal(w, "EVENTS_SERVICE_UNAVAILABLE", "events service is unavailable")
		return
	}

	conversationID, ok := conversationIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "conversationID must be a positive integer")
		return
	}

	if _, err := h.service.Authorize(r.Context(), conversationID, identity.UserID); err != nil {
		handleConversationError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeInternal(w, "STREAMING_UNSUPPORTED", "response writer does not support streaming")
		return
	}

	// The server's WriteTimeout caps ordinary responses; a stream has to
	// outlive it, so drop the write deadline for this connection.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Warn("events clear write deadline failed",
			zap.Int64("conversation_id", conversationID),
			zap.Error(err))
	}

	// Slow consumers drop messages instead of blocking the broker.
	events := make(chan model.Message, eventsBufferSize)
	unsubscribe, err := h.broker.Subscribe(conversationID, func(msg model.Message) {
		select {
		case events <- msg:
		default:
		}
	})
	if err != nil {
		h.logger.Warn("events subscribe failed",
			zap.Int64("conversation_id", conversationID),
			zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "failed to subscribe to conversation events")
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(eventsHeartbeatInterval)
	defer heartbeat.Stop()

	// A failed write means the client is gone; stop instead of spinning
	// on a dead connection until the request context is cancelled.
	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case msg := <-events:
			payload, err := json.Marshal(messageResponse(msg))
			if err != nil {
				h.logger.Warn("events encode failed", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: message_created\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
