package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/campusgrid/timetable-api/internal/dto"
	"github.com/campusgrid/timetable-api/internal/models"
	"github.com/campusgrid/timetable-api/internal/scheduler"
	appErrors "github.com/campusgrid/timetable-api/pkg/errors"
)

// recommendationCachePattern matches every cached recommendation payload.
// Any mutation of the assignment set invalidates all of them.
const recommendationCachePattern = "timetable:reco:*"

// TimetableService runs full generation passes and persists the outcome.
type TimetableService struct {
	snapshot    *SnapshotLoader
	assignments assignmentStore
	engine      *scheduler.Engine
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewTimetableService wires the generation pipeline.
func NewTimetableService(
	snapshot *SnapshotLoader,
	assignments assignmentStore,
	engine *scheduler.Engine,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		snapshot:    snapshot,
		assignments: assignments,
		engine:      engine,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
	}
}

func mapEngineError(err error) error {
	var setup *scheduler.SetupError
	if errors.As(err, &setup) {
		return appErrors.Clone(appErrors.ErrSetup, setup.Msg)
	}
	return err
}

// Generate builds a fresh weekly timetable around the locked rows. Unless
// dryRun is set, the unlocked portion of the stored timetable is replaced
// and cached recommendations are dropped.
func (s *TimetableService) Generate(ctx context.Context, dryRun bool) (*dto.GenerateTimetableResponse, error) {
	start := time.Now()

	in, err := s.snapshot.Load(ctx)
	if err != nil {
		return nil, err
	}
	locked, err := s.assignments.ListLocked(ctx)
	if err != nil {
		return nil, err
	}
	in.Locked = locked

	result, err := s.engine.Generate(in)
	if err != nil {
		s.metrics.ObserveGeneration("setup_error", 0, time.Since(start))
		return nil, mapEngineError(err)
	}

	if !dryRun {
		if err := s.assignments.ReplaceUnlocked(ctx, result.Assignments); err != nil {
			s.metrics.ObserveGeneration("persist_error", result.Stats.Utilization, time.Since(start))
			return nil, err
		}
		if s.cache != nil {
			_ = s.cache.Invalidate(ctx, recommendationCachePattern)
		}
	}

	duration := time.Since(start)
	s.metrics.ObserveGeneration("ok", result.Stats.Utilization, duration)
	for _, w := range result.Warnings {
		s.metrics.RecordPlacementFailure(string(w.Reason))
	}
	s.logger.Info("timetable generated",
		zap.Bool("dry_run", dryRun),
		zap.Int("assignments", len(result.Assignments)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Float64("utilization", result.Stats.Utilization),
		zap.Duration("duration", duration),
	)

	resp := &dto.GenerateTimetableResponse{
		Assignments: assignmentViews(result.Assignments, in.Slots),
		Warnings:    warningViews(result.Warnings),
		Stats: dto.GenerationStats{
			TotalOfferings:     result.Stats.TotalOfferings,
			TotalUnitsRequired: result.Stats.TotalUnitsRequired,
			SuccessfulUnits:    result.Stats.SuccessfulUnits,
			FailedUnits:        result.Stats.FailedUnits,
			Utilization:        result.Stats.Utilization,
			DurationMs:         duration.Milliseconds(),
		},
		DryRun: dryRun,
	}
	return resp, nil
}

func assignmentViews(assignments []models.Assignment, slots []models.TimeSlot) []dto.AssignmentView {
	slotByID := make(map[string]models.TimeSlot, len(slots))
	for _, s := range slots {
		slotByID[s.ID] = s
	}
	views := make([]dto.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		view := dto.AssignmentView{
			ID:         a.ID,
			OfferingID: a.OfferingID,
			Kind:       string(a.Kind),
			SlotID:     a.SlotID,
			RoomID:     a.RoomID,
			Locked:     a.Locked,
		}
		if slot, ok := slotByID[a.SlotID]; ok {
			view.Day = slot.Day.String()
			view.StartMin = slot.StartMin
			view.EndMin = slot.EndMin
		}
		views = append(views, view)
	}
	return views
}

func warningViews(warnings []scheduler.Warning) []dto.GenerationWarning {
	views := make([]dto.GenerationWarning, 0, len(warnings))
	for _, w := range warnings {
		views = append(views, dto.GenerationWarning{
			OfferingID: w.OfferingID,
			Kind:       string(w.Kind),
			Reason:     string(w.Reason),
			Message:    w.Message,
		})
	}
	return views
}
