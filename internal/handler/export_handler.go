package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusgrid/timetable-api/internal/dto"
	"github.com/campusgrid/timetable-api/internal/service"
	appErrors "github.com/campusgrid/timetable-api/pkg/errors"
	"github.com/campusgrid/timetable-api/pkg/response"
)

type timetableExporter interface {
	Export(ctx context.Context, query dto.ExportQuery) (*service.ExportFile, error)
}

// ExportHandler streams timetable documents.
type ExportHandler struct {
	service timetableExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Export godoc
// @Summary Export the timetable as CSV or PDF
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "Output format (csv or pdf)"
// @Param sectionId query string false "Restrict to one section"
// @Param teacherId query string false "Restrict to one teacher"
// @Success 200 {file} binary
// @Router /timetable/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	query := dto.ExportQuery{
		Format:    c.Query("format"),
		SectionID: c.Query("sectionId"),
		TeacherID: c.Query("teacherId"),
	}
	if query.Format == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format query parameter is required"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
