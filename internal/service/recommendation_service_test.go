package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusgrid/timetable-api/internal/models"
	"github.com/campusgrid/timetable-api/internal/scheduler"
	appErrors "github.com/campusgrid/timetable-api/pkg/errors"
)

func newRecommendationService(fix *serviceFixture) *RecommendationService {
	return NewRecommendationService(
		fix.snapshot,
		fix.store,
		scheduler.NewEngine(scheduler.DefaultConfig()),
		fix.cache,
		NewMetricsService(),
		time.Minute,
		zap.NewNop(),
	)
}

func TestRecommendationServiceRanksAlternatives(t *testing.T) {
	fix := lectureOnlyFixture(t)
	room := "r-1"
	fix.store.items = []models.Assignment{
		{ID: "a-1", OfferingID: "o-1", Kind: models.KindLecture, SlotID: "d1-h8", RoomID: &room},
	}
	svc := newRecommendationService(fix)

	resp, err := svc.Recommend(context.Background(), "o-1", models.KindLecture)
	require.NoError(t, err)

	assert.False(t, resp.Cached)
	require.NotEmpty(t, resp.Alternatives)
	for _, alt := range resp.Alternatives {
		assert.NotEqual(t, "d1-h8", alt.SlotID)
		assert.Equal(t, "C-101", alt.RoomName)
	}
	for i := 1; i < len(resp.Alternatives); i++ {
		assert.GreaterOrEqual(t, resp.Alternatives[i-1].PenaltyDelta, resp.Alternatives[i].PenaltyDelta)
	}
}

func TestRecommendationServiceCachesResult(t *testing.T) {
	fix := lectureOnlyFixture(t)
	svc := newRecommendationService(fix)

	first, err := svc.Recommend(context.Background(), "o-1", models.KindLecture)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, fix.repo.setCallCount)

	second, err := svc.Recommend(context.Background(), "o-1", models.KindLecture)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, fix.repo.setCallCount)
	assert.Equal(t, first.Alternatives, second.Alternatives)
}

func TestRecommendationServiceCacheInvalidatedByGeneration(t *testing.T) {
	fix := lectureOnlyFixture(t)
	recSvc := newRecommendationService(fix)
	genSvc := NewTimetableService(fix.snapshot, fix.store, scheduler.NewEngine(scheduler.DefaultConfig()), fix.cache, NewMetricsService(), zap.NewNop())

	_, err := recSvc.Recommend(context.Background(), "o-1", models.KindLecture)
	require.NoError(t, err)
	require.NotEmpty(t, fix.repo.entries)

	_, err = genSvc.Generate(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, fix.repo.entries)
}

func TestRecommendationServiceUnknownOffering(t *testing.T) {
	fix := lectureOnlyFixture(t)
	svc := newRecommendationService(fix)

	_, err := svc.Recommend(context.Background(), "nope", models.KindLecture)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSetup.Code, appErrors.FromError(err).Code)
}

func TestRecommendationServiceKindNotRequired(t *testing.T) {
	fix := lectureOnlyFixture(t)
	svc := newRecommendationService(fix)

	_, err := svc.Recommend(context.Background(), "o-1", models.KindPractical)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSetup.Code, appErrors.FromError(err).Code)
}
