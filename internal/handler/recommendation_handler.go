package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusgrid/timetable-api/internal/dto"
	"github.com/campusgrid/timetable-api/internal/models"
	"github.com/campusgrid/timetable-api/internal/service"
	appErrors "github.com/campusgrid/timetable-api/pkg/errors"
	"github.com/campusgrid/timetable-api/pkg/response"
)

type recommender interface {
	Recommend(ctx context.Context, offeringID string, kind models.SessionKind) (*dto.RecommendationResponse, error)
}

// RecommendationHandler exposes the alternative-placement endpoint.
type RecommendationHandler struct {
	service recommender
}

// NewRecommendationHandler constructs the handler.
func NewRecommendationHandler(svc *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: svc}
}

// Get godoc
// @Summary Ranked alternative placements for one offering unit
// @Description Returns up to the configured number of feasible (slot, room) alternatives ordered by penalty improvement. An empty list means the unit cannot move.
// @Tags Timetable
// @Produce json
// @Param offeringId path string true "Offering ID"
// @Param kind query string true "Session kind (L, T or P)"
// @Success 200 {object} response.Envelope
// @Router /timetable/recommendations/{offeringId} [get]
func (h *RecommendationHandler) Get(c *gin.Context) {
	kind := models.SessionKind(c.Query("kind"))
	if !kind.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "kind must be one of L, T, P"))
		return
	}
	result, err := h.service.Recommend(c.Request.Context(), c.Param("offeringId"), kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
