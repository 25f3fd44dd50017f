package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/campusgrid/timetable-api/internal/dto"
	appErrors "github.com/campusgrid/timetable-api/pkg/errors"
)

type timetableGeneratorMock struct {
	capturedDryRun bool
	err            error
}

func (m *timetableGeneratorMock) Generate(_ context.Context, dryRun bool) (*dto.GenerateTimetableResponse, error) {
	m.capturedDryRun = dryRun
	if m.err != nil {
		return nil, m.err
	}
	return &dto.GenerateTimetableResponse{
		Assignments: []dto.AssignmentView{{ID: "a-1", OfferingID: "o-1", Kind: "L", SlotID: "mon-8"}},
		Stats:       dto.GenerationStats{TotalUnitsRequired: 1, SuccessfulUnits: 1, Utilization: 100},
		DryRun:      dryRun,
	}, nil
}

func TestTimetableGenerateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableGeneratorMock{}
	handler := &TimetableHandler{service: mockSvc}

	body := []byte(`{"dryRun":true}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, mockSvc.capturedDryRun)

	var envelope struct {
		Data dto.GenerateTimetableResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Assignments, 1)
	require.True(t, envelope.Data.DryRun)
}

func TestTimetableGenerateEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableGeneratorMock{}
	handler := &TimetableHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.False(t, mockSvc.capturedDryRun)
}

func TestTimetableGenerateSetupError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableGeneratorMock{err: appErrors.Clone(appErrors.ErrSetup, "offering o-9 references unknown course")}
	handler := &TimetableHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
