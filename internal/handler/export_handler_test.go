package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusgrid/timetable-api/internal/dto"
	"github.com/campusgrid/timetable-api/internal/service"
)

type exporterMock struct {
	captured dto.ExportQuery
	file     *service.ExportFile
	err      error
}

func (m *exporterMock) Export(_ context.Context, query dto.ExportQuery) (*service.ExportFile, error) {
	m.captured = query
	return m.file, m.err
}

func TestExportCSV(t *testing.T) {
	mockSvc := &exporterMock{file: &service.ExportFile{
		Content:     []byte("Day,Start,End\nMonday,09:00,10:00\n"),
		ContentType: "text/csv",
		Filename:    "timetable.csv",
	}}
	handler := &ExportHandler{service: mockSvc}

	w := performRequest(handler.Export, http.MethodGet, "/timetable/export?format=csv&sectionId=s-1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "csv", mockSvc.captured.Format)
	require.Equal(t, "s-1", mockSvc.captured.SectionID)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), `filename="timetable.csv"`)
	require.True(t, strings.HasPrefix(w.Body.String(), "Day,Start,End"))
}

func TestExportMissingFormat(t *testing.T) {
	handler := &ExportHandler{service: &exporterMock{}}

	w := performRequest(handler.Export, http.MethodGet, "/timetable/export", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
