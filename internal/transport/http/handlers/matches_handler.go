package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/pulsedate/backend/internal/services/auth"
	matchessvc "github.com/pulsedate/backend/internal/services/matches"
	"github.com/pulsedate/backend/internal/transport/http/dto"
	httperrors "github.com/pulsedate/backend/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	matches, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		handleMatchesError(w, err)
		return
	}

	items := make([]dto.MatchItemResponse, 0, len(matches))
	for _, m := range matches {
		items = append(items, dto.MatchItemResponse{
			ID:           m.ID,
			TargetUserID: m.TargetUserID,
			Name:         m.Name,
			Age:          m.Age,
			Gender:       string(m.Gender),
			Bio:          m.Bio,
			Photos:       m.Photos,
			CreatedAt:    m.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Items: items})
}

func (h *MatchesHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	var req dto.UnmatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	if req.TargetUserID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "target_user_id is required")
		return
	}

	result, err := h.service.Unmatch(r.Context(), identity.UserID, req.TargetUserID)
	if err != nil {
		handleMatchesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnmatchResponse{
		OK:                 true,
		MatchInactivated:   result.MatchInactivated,
		ConversationClosed: result.ConversationClosed,
	})
}

func handleMatchesError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, matchessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match request")
	case errors.Is(err, matchessvc.ErrNotFound):
		writeNotFound(w, "MATCH_NOT_FOUND", "match not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "match operation failed")
	}
}
