// Package scheduler implements the constraint-assignment engine: a
// deterministic greedy batch generator and a read-only recommendation
// re-ranker sharing one constraint and penalty model. The package performs no
// I/O; callers load a full entity snapshot, run an engine synchronously, and
// persist the result themselves.
package scheduler

import (
	"fmt"

	"github.com/campusgrid/timetable-api/internal/models"
)

// Input is the fetched-once, in-memory snapshot both engines consume.
// Offerings arrive with course, section, and teacher already resolved; the
// engine never dereferences foreign keys.
type Input struct {
	Teachers     []models.Teacher
	Rooms        []models.Room
	Slots        []models.TimeSlot
	Offerings    []models.ResolvedOffering
	Availability models.AvailabilitySet
	Locked       []models.Assignment
}

// FailureReason classifies why a unit could not be placed.
type FailureReason string

const (
	ReasonWorkloadExceeded   FailureReason = "WORKLOAD_EXCEEDED"
	ReasonTeacherBusy        FailureReason = "TEACHER_BUSY"
	ReasonSectionConflict    FailureReason = "SECTION_CONFLICT"
	ReasonTeacherUnavailable FailureReason = "TEACHER_UNAVAILABLE"
	ReasonNoRoomAvailable    FailureReason = "NO_ROOM_AVAILABLE"
	ReasonWrongSlotType      FailureReason = "WRONG_SLOT_TYPE"
	ReasonRoomBusy           FailureReason = "ROOM_BUSY"
	ReasonRoomTooSmall       FailureReason = "ROOM_TOO_SMALL"
	ReasonNoTeacher          FailureReason = "NO_TEACHER"
	ReasonUnknown            FailureReason = "UNKNOWN"
)

// Warning records one unit the generator could not schedule. Per-unit
// failures are never raised as errors; generation always completes.
type Warning struct {
	OfferingID string             `json:"offering_id"`
	Kind       models.SessionKind `json:"kind"`
	Reason     FailureReason      `json:"reason"`
	Message    string             `json:"message"`
}

// Stats summarises one generation run.
type Stats struct {
	TotalOfferings     int     `json:"total_offerings"`
	TotalUnitsRequired int     `json:"total_units_required"`
	SuccessfulUnits    int     `json:"successful_units"`
	FailedUnits        int     `json:"failed_units"`
	Utilization        float64 `json:"utilization"`
}

// Result is the full outcome of a generation run. Assignments include the
// locked rows passed in, untouched.
type Result struct {
	Assignments []models.Assignment `json:"assignments"`
	Warnings    []Warning           `json:"warnings"`
	Stats       Stats               `json:"stats"`
}

// SetupError marks malformed input detected before any assignment work: a
// data-integrity problem, not a scheduling outcome.
type SetupError struct {
	Msg string
}

func (e *SetupError) Error() string {
	return e.Msg
}

func setupErrorf(format string, args ...interface{}) *SetupError {
	return &SetupError{Msg: fmt.Sprintf(format, args...)}
}

// Config tunes engine behaviour. Zero values fall back to defaults.
type Config struct {
	// DurationEpsilonMin widens block duration matching. The default of 0
	// requires exact equality.
	DurationEpsilonMin int
	// MaxRecommendations caps the ranked alternatives returned per request.
	MaxRecommendations int
	// Weights overrides the soft-cost table.
	Weights PenaltyWeights
	// ReasonPrecedence orders the diagnostic reason picked when several
	// constraint classes fail for the same unit.
	ReasonPrecedence []FailureReason
}

// DefaultReasonPrecedence is the severity order used to pick a single
// diagnostic reason when multiple constraints fail.
var DefaultReasonPrecedence = []FailureReason{
	ReasonWorkloadExceeded,
	ReasonTeacherBusy,
	ReasonSectionConflict,
	ReasonTeacherUnavailable,
	ReasonNoRoomAvailable,
	ReasonWrongSlotType,
	ReasonUnknown,
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		DurationEpsilonMin: 0,
		MaxRecommendations: 10,
		Weights:            DefaultPenaltyWeights(),
		ReasonPrecedence:   DefaultReasonPrecedence,
	}
}

func (c Config) normalized() Config {
	if c.MaxRecommendations <= 0 {
		c.MaxRecommendations = 10
	}
	if c.Weights == (PenaltyWeights{}) {
		c.Weights = DefaultPenaltyWeights()
	}
	if len(c.ReasonPrecedence) == 0 {
		c.ReasonPrecedence = DefaultReasonPrecedence
	}
	return c
}

// Engine bundles the generator and recommender over one configuration.
type Engine struct {
	cfg Config
}

// NewEngine constructs an engine; a zero Config selects defaults.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.normalized()}
}

// validate runs the fast setup checks shared by both engines.
func (in *Input) validate() error {
	for _, slot := range in.Slots {
		if slot.DurationMin() <= 0 {
			return setupErrorf("time slot %s has non-positive duration", slot.ID)
		}
		if !slot.Day.Valid() {
			return setupErrorf("time slot %s has invalid day %d", slot.ID, slot.Day)
		}
	}
	for _, off := range in.Offerings {
		if off.Course.ID == "" {
			return setupErrorf("offering %s has no resolvable course", off.ID)
		}
		if off.Section.ID == "" {
			return setupErrorf("offering %s has no resolvable section", off.ID)
		}
	}
	return nil
}

// index groups fast lookups derived from one snapshot.
type index struct {
	slotByID     map[string]models.TimeSlot
	offeringByID map[string]models.ResolvedOffering
	roomByID     map[string]models.Room
}

func buildIndex(in *Input) *index {
	idx := &index{
		slotByID:     make(map[string]models.TimeSlot, len(in.Slots)),
		offeringByID: make(map[string]models.ResolvedOffering, len(in.Offerings)),
		roomByID:     make(map[string]models.Room, len(in.Rooms)),
	}
	for _, slot := range in.Slots {
		idx.slotByID[slot.ID] = slot
	}
	for _, off := range in.Offerings {
		idx.offeringByID[off.ID] = off
	}
	for _, room := range in.Rooms {
		idx.roomByID[room.ID] = room
	}
	return idx
}
