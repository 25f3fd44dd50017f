package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campusgrid/timetable-api/internal/dto"
	"github.com/campusgrid/timetable-api/internal/models"
	"github.com/campusgrid/timetable-api/internal/scheduler"
)

// RecommendationService serves ranked alternative placements, memoised in
// Redis until the assignment set changes.
type RecommendationService struct {
	snapshot    *SnapshotLoader
	assignments assignmentStore
	engine      *scheduler.Engine
	cache       *CacheService
	metrics     *MetricsService
	ttl         time.Duration
	logger      *zap.Logger
}

// NewRecommendationService wires the recommendation pipeline.
func NewRecommendationService(
	snapshot *SnapshotLoader,
	assignments assignmentStore,
	engine *scheduler.Engine,
	cache *CacheService,
	metrics *MetricsService,
	ttl time.Duration,
	logger *zap.Logger,
) *RecommendationService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationService{
		snapshot:    snapshot,
		assignments: assignments,
		engine:      engine,
		cache:       cache,
		metrics:     metrics,
		ttl:         ttl,
		logger:      logger,
	}
}

func recommendationCacheKey(offeringID string, kind models.SessionKind) string {
	return fmt.Sprintf("timetable:reco:%s:%s", offeringID, kind)
}

// Recommend returns up to the configured number of alternatives for one
// offering unit, best first. An empty list is a normal outcome.
func (s *RecommendationService) Recommend(ctx context.Context, offeringID string, kind models.SessionKind) (*dto.RecommendationResponse, error) {
	key := recommendationCacheKey(offeringID, kind)
	if s.cache != nil {
		var cached dto.RecommendationResponse
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			cached.Cached = true
			return &cached, nil
		}
	}

	in, err := s.snapshot.Load(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.engine.Recommend(in, current, offeringID, kind)
	if err != nil {
		return nil, mapEngineError(err)
	}
	s.metrics.RecordRecommendation()

	resp := &dto.RecommendationResponse{
		OfferingID:   rec.OfferingID,
		Kind:         string(rec.Kind),
		Alternatives: make([]dto.AlternativeView, 0, len(rec.Alternatives)),
		Message:      rec.Message,
	}
	for _, alt := range rec.Alternatives {
		roomID := alt.Room.ID
		resp.Alternatives = append(resp.Alternatives, dto.AlternativeView{
			SlotID:       alt.Slot.ID,
			Day:          alt.Slot.Day.String(),
			StartMin:     alt.Slot.StartMin,
			EndMin:       alt.Slot.EndMin,
			RoomID:       &roomID,
			RoomName:     alt.Room.Name,
			PenaltyDelta: alt.PenaltyDelta,
			Reasons:      alt.Reasons,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp, s.ttl); err != nil {
			s.logger.Warn("recommendation cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return resp, nil
}
