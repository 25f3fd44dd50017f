package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/campusgrid/timetable-api/internal/dto"
	"github.com/campusgrid/timetable-api/internal/models"
	"github.com/campusgrid/timetable-api/internal/scheduler"
	appErrors "github.com/campusgrid/timetable-api/pkg/errors"
)

// AssignmentService manages the stored timetable row by row: listing,
// locking, manual moves, and removal. Generation-wide replacement lives in
// TimetableService.
type AssignmentService struct {
	snapshot    *SnapshotLoader
	assignments assignmentStore
	slots       slotCatalog
	cache       *CacheService
	logger      *zap.Logger
}

// NewAssignmentService wires assignment management.
func NewAssignmentService(
	snapshot *SnapshotLoader,
	assignments assignmentStore,
	slots slotCatalog,
	cache *CacheService,
	logger *zap.Logger,
) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		snapshot:    snapshot,
		assignments: assignments,
		slots:       slots,
		cache:       cache,
		logger:      logger,
	}
}

// List returns assignments matching the filter plus paging metadata.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]dto.AssignmentView, *models.Pagination, error) {
	assignments, total, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	slots, err := s.slots.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return assignmentViews(assignments, slots), pagination, nil
}

// SetLocked toggles the lock flag on one assignment.
func (s *AssignmentService) SetLocked(ctx context.Context, id string, locked bool) error {
	found, err := s.assignments.SetLocked(ctx, id, locked)
	if err != nil {
		return err
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	s.invalidate(ctx)
	return nil
}

// Apply moves one assignment onto a chosen slot and room after checking hard
// constraints. Violations are returned instead of applied.
func (s *AssignmentService) Apply(ctx context.Context, id, slotID string, roomID *string) (*dto.AssignmentView, []dto.ViolationView, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, nil, err
	}
	if assignment.Locked {
		return nil, nil, appErrors.ErrLocked
	}

	in, err := s.snapshot.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	current, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	violations, err := scheduler.CheckConflicts(in, current, scheduler.Proposal{
		OfferingID: assignment.OfferingID,
		Kind:       assignment.Kind,
		SlotID:     slotID,
		RoomID:     roomID,
	})
	if err != nil {
		return nil, nil, mapEngineError(err)
	}
	if len(violations) > 0 {
		return nil, violationViews(violations), nil
	}

	if err := s.assignments.UpdatePlacement(ctx, id, slotID, roomID); err != nil {
		return nil, nil, err
	}
	s.invalidate(ctx)

	assignment.SlotID = slotID
	assignment.RoomID = roomID
	views := assignmentViews([]models.Assignment{*assignment}, in.Slots)
	return &views[0], nil, nil
}

// Delete removes one unlocked assignment.
func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return err
	}
	if assignment.Locked {
		return appErrors.ErrLocked
	}
	if err := s.assignments.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *AssignmentService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, recommendationCachePattern)
	}
}

func violationViews(violations []scheduler.Violation) []dto.ViolationView {
	views := make([]dto.ViolationView, 0, len(violations))
	for _, v := range violations {
		views = append(views, dto.ViolationView{
			Constraint:    string(v.Constraint),
			Message:       v.Message,
			ConflictsWith: v.ConflictsWith,
		})
	}
	return views
}
