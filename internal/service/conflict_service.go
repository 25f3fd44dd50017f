package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusgrid/timetable-api/internal/dto"
	"github.com/campusgrid/timetable-api/internal/models"
	"github.com/campusgrid/timetable-api/internal/scheduler"
	appErrors "github.com/campusgrid/timetable-api/pkg/errors"
)

// ConflictService pre-validates manual placements against hard constraints.
type ConflictService struct {
	snapshot    *SnapshotLoader
	assignments assignmentStore
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewConflictService wires the conflict checker.
func NewConflictService(snapshot *SnapshotLoader, assignments assignmentStore, validate *validator.Validate, logger *zap.Logger) *ConflictService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{snapshot: snapshot, assignments: assignments, validator: validate, logger: logger}
}

// Check reports every hard constraint the proposed placement would break.
func (s *ConflictService) Check(ctx context.Context, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict check payload")
	}

	in, err := s.snapshot.Load(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	violations, err := scheduler.CheckConflicts(in, current, scheduler.Proposal{
		OfferingID: req.OfferingID,
		Kind:       models.SessionKind(req.Kind),
		SlotID:     req.SlotID,
		RoomID:     req.RoomID,
	})
	if err != nil {
		return nil, mapEngineError(err)
	}

	return &dto.ConflictCheckResponse{
		Valid:      len(violations) == 0,
		Violations: violationViews(violations),
	}, nil
}
