package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/pulsedate/backend/internal/services/auth"
	discoverysvc "github.com/pulsedate/backend/internal/services/discovery"
	"github.com/pulsedate/backend/internal/transport/http/dto"
	httperrors "github.com/pulsedate/backend/internal/transport/http/errors"
)

type DiscoverHandler struct {
	service *discoverysvc.Service
}

func NewDiscoverHandler(service *discoverysvc.Service) *DiscoverHandler {
	return &DiscoverHandler{service: service}
}

func (h *DiscoverHandler) Feed(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DISCOVER_SERVICE_UNAVAILABLE", "discover service is unavailable")
		return
	}

	candidates, err := h.service.Discover(r.Context(), identity.UserID, r.URL.Query().Get("gender"))
	if err != nil {
		switch {
		case errors.Is(err, discoverysvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "gender filter must be male or female")
		case errors.Is(err, discoverysvc.ErrViewerNotFound):
			writeNotFound(w, "USER_NOT_FOUND", "viewer profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to build discover feed")
		}
		return
	}

	items := make([]dto.CandidateResponse, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, dto.CandidateResponse{
			UserID: c.UserID,
			Name:   c.Name,
			Age:    c.Age,
			Gender: string(c.Gender),
			Bio:    c.Bio,
			Photos: c.Photos,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.DiscoverResponse{Items: items})
}
