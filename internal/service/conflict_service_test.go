package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusgrid/timetable-api/internal/dto"
	"github.com/campusgrid/timetable-api/internal/models"
	appErrors "github.com/campusgrid/timetable-api/pkg/errors"
)

func TestConflictServiceValidPlacement(t *testing.T) {
	fix := lectureOnlyFixture(t)
	svc := NewConflictService(fix.snapshot, fix.store, nil, zap.NewNop())

	resp, err := svc.Check(context.Background(), dto.ConflictCheckRequest{
		OfferingID: "o-1", Kind: "L", SlotID: "d1-h9",
	})
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Violations)
}

func TestConflictServiceReportsDoubleBooking(t *testing.T) {
	fix := twoOfferingFixture(t)
	fix.store.items = []models.Assignment{
		{ID: "a-1", OfferingID: "o-1", Kind: models.KindLecture, SlotID: "d1-h8"},
	}
	svc := NewConflictService(fix.snapshot, fix.store, nil, zap.NewNop())

	resp, err := svc.Check(context.Background(), dto.ConflictCheckRequest{
		OfferingID: "o-2", Kind: "L", SlotID: "d1-h8",
	})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	require.NotEmpty(t, resp.Violations)
	assert.Equal(t, "a-1", resp.Violations[0].ConflictsWith)
}

func TestConflictServiceRejectsIncompletePayload(t *testing.T) {
	fix := lectureOnlyFixture(t)
	svc := NewConflictService(fix.snapshot, fix.store, nil, zap.NewNop())

	_, err := svc.Check(context.Background(), dto.ConflictCheckRequest{
		OfferingID: "o-1", Kind: "L",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestConflictServiceUnknownSlot(t *testing.T) {
	fix := lectureOnlyFixture(t)
	svc := NewConflictService(fix.snapshot, fix.store, nil, zap.NewNop())

	_, err := svc.Check(context.Background(), dto.ConflictCheckRequest{
		OfferingID: "o-1", Kind: "L", SlotID: "nope",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSetup.Code, appErrors.FromError(err).Code)
}
