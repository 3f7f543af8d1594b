package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/pulsedate/backend/internal/services/auth"
	interactionssvc "github.com/pulsedate/backend/internal/services/interactions"
	"github.com/pulsedate/backend/internal/transport/http/dto"
	httperrors "github.com/pulsedate/backend/internal/transport/http/errors"
)

type InteractionHandler struct {
	service *interactionssvc.Service
}

func NewInteractionHandler(service *interactionssvc.Service) *InteractionHandler {
	return &InteractionHandler{service: service}
}

func (h *InteractionHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "INTERACTION_SERVICE_UNAVAILABLE", "interaction service is unavailable")
		return
	}

	var req dto.InteractionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	if req.ToUserID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "to_user_id is required")
		return
	}

	result, err := h.service.Record(r.Context(), identity.UserID, req.ToUserID, req.IsLike)
	if err != nil {
		switch {
		case errors.Is(err, interactionssvc.ErrSelfInteraction):
			writeBadRequest(w, "SELF_INTERACTION", "cannot like or pass yourself")
		case errors.Is(err, interactionssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid interaction request")
		case errors.Is(err, interactionssvc.ErrDuplicate):
			writeConflict(w, "INTERACTION_EXISTS", "decision for this user already recorded")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to record interaction")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.InteractionResponse{
		InteractionID: result.InteractionID,
		Matched:       result.MatchID != nil,
		MatchID:       result.MatchID,
	})
}
