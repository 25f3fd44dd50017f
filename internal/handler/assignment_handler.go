package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusgrid/timetable-api/internal/dto"
	"github.com/campusgrid/timetable-api/internal/models"
	"github.com/campusgrid/timetable-api/internal/service"
	appErrors "github.com/campusgrid/timetable-api/pkg/errors"
	"github.com/campusgrid/timetable-api/pkg/response"
)

type assignmentManager interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]dto.AssignmentView, *models.Pagination, error)
	SetLocked(ctx context.Context, id string, locked bool) error
	Apply(ctx context.Context, id, slotID string, roomID *string) (*dto.AssignmentView, []dto.ViolationView, error)
	Delete(ctx context.Context, id string) error
}

// AssignmentHandler exposes row-level timetable management.
type AssignmentHandler struct {
	service assignmentManager
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// List godoc
// @Summary List stored assignments
// @Tags Assignments
// @Produce json
// @Param teacherId query string false "Filter by teacher"
// @Param sectionId query string false "Filter by section"
// @Param roomId query string false "Filter by room"
// @Param offeringId query string false "Filter by offering"
// @Param day query string false "Filter by day name"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	filter := models.AssignmentFilter{
		TeacherID:  c.Query("teacherId"),
		SectionID:  c.Query("sectionId"),
		RoomID:     c.Query("roomId"),
		OfferingID: c.Query("offeringId"),
		Day:        c.Query("day"),
		Page:       page,
		PageSize:   limit,
	}
	views, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, pagination)
}

// Lock godoc
// @Summary Lock or unlock an assignment
// @Description Locked assignments are preserved verbatim across regeneration.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.LockAssignmentRequest true "Lock payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/lock [put]
func (h *AssignmentHandler) Lock(c *gin.Context) {
	var req dto.LockAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Locked == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "locked flag is required"))
		return
	}
	if err := h.service.SetLocked(c.Request.Context(), c.Param("id"), *req.Locked); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": c.Param("id"), "locked": *req.Locked}, nil)
}

// Apply godoc
// @Summary Apply a chosen placement to an assignment
// @Description Moves the assignment onto the given slot and room after hard-constraint validation. Violations are returned with HTTP 409.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.ApplyPlacementRequest true "Placement payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/apply [post]
func (h *AssignmentHandler) Apply(c *gin.Context) {
	var req dto.ApplyPlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SlotID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "slotId is required"))
		return
	}
	view, violations, err := h.service.Apply(c.Request.Context(), c.Param("id"), req.SlotID, req.RoomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(violations) > 0 {
		response.JSON(c, http.StatusConflict, gin.H{"violations": violations}, nil)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Delete godoc
// @Summary Delete an unlocked assignment
// @Tags Assignments
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
