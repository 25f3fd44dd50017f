package scheduler

import (
	"fmt"

	"github.com/campusgrid/timetable-api/internal/models"
)

const (
	earlyStartMin  = 9 * 60
	lateStartMin   = 16 * 60
	middayStartMin = 12 * 60
	middayEndMin   = 13 * 60
	afternoonMin   = 12 * 60
	eveningMin     = 17 * 60
)

// PenaltyWeights is the additive soft-cost table. Score 0 is ideal.
type PenaltyWeights struct {
	TypeMismatch        int
	TypeMismatchLenient int
	RoomUndersized      int
	RoomOversized       int
	AvoidEarly          int
	AvoidLate           int
	NonPreferredDay     int
	DayAtCap            int
	MiddayOverlap       int
}

// DefaultPenaltyWeights returns the fixed weight table.
func DefaultPenaltyWeights() PenaltyWeights {
	return PenaltyWeights{
		TypeMismatch:        50,
		TypeMismatchLenient: 30,
		RoomUndersized:      100,
		RoomOversized:       10,
		AvoidEarly:          20,
		AvoidLate:           20,
		NonPreferredDay:     10,
		DayAtCap:            30,
		MiddayOverlap:       5,
	}
}

// Evaluator holds the shared hard-feasibility and soft-penalty model over one
// snapshot and occupancy state. Both engines score through the same instance
// shape, so a placement the generator accepts is exactly one the recommender
// would.
type Evaluator struct {
	weights      PenaltyWeights
	availability models.AvailabilitySet
	occ          *Occupancy
}

// NewEvaluator builds an evaluator bound to an occupancy index.
func NewEvaluator(weights PenaltyWeights, availability models.AvailabilitySet, occ *Occupancy) *Evaluator {
	if weights == (PenaltyWeights{}) {
		weights = DefaultPenaltyWeights()
	}
	return &Evaluator{weights: weights, availability: availability, occ: occ}
}

// Feasible checks hard constraints in fixed diagnostic order: slot type, room
// type, teacher availability, teacher busy, room busy, section overlap,
// workload caps, capacity. A nil room defers the room-specific checks, which
// the generator runs during room selection.
func (e *Evaluator) Feasible(off models.ResolvedOffering, kind models.SessionKind, block SlotBlock, room *models.Room) (bool, FailureReason) {
	wantLab := kind == models.KindPractical
	if block.IsLab() != wantLab {
		return false, ReasonWrongSlotType
	}
	if room != nil {
		if (room.Kind == models.RoomLab) != wantLab {
			return false, ReasonWrongSlotType
		}
	}
	if off.Teacher == nil {
		return false, ReasonNoTeacher
	}
	teacherID := off.Teacher.ID
	if e.availability.Restricted(teacherID) {
		for _, slot := range block.Slots {
			if !e.availability.Available(teacherID, slot.ID) {
				return false, ReasonTeacherUnavailable
			}
		}
	}
	for _, slot := range block.Slots {
		if e.occ.TeacherBusy(teacherID, slot) {
			return false, ReasonTeacherBusy
		}
	}
	if room != nil {
		for _, slot := range block.Slots {
			if e.occ.RoomBusy(room.ID, slot) {
				return false, ReasonRoomBusy
			}
		}
	}
	for _, slot := range block.Slots {
		if e.occ.SectionBusy(off.Section.ID, slot) {
			return false, ReasonSectionConflict
		}
	}
	if off.Teacher.MaxPerDay > 0 && e.occ.TeacherDayHours(teacherID, block.Day())+block.Hours > off.Teacher.MaxPerDay {
		return false, ReasonWorkloadExceeded
	}
	if off.Teacher.MaxPerWeek > 0 && e.occ.TeacherWeekHours(teacherID)+block.Hours > off.Teacher.MaxPerWeek {
		return false, ReasonWorkloadExceeded
	}
	if room != nil && room.Capacity < off.ExpectedSize {
		return false, ReasonRoomTooSmall
	}
	return true, ""
}

// Penalty scores one (slot, room) placement against the soft-cost table and
// returns the triggered reasons as a human-readable audit trail. A nil room
// skips room costs.
func (e *Evaluator) Penalty(off models.ResolvedOffering, kind models.SessionKind, slot models.TimeSlot, room *models.Room) (int, []string) {
	score := 0
	var reasons []string

	wantLab := kind == models.KindPractical
	if wantLab && !slot.IsLab {
		score += e.weights.TypeMismatchLenient
		reasons = append(reasons, "practical placed outside a lab slot")
	}
	if !wantLab && slot.IsLab {
		score += e.weights.TypeMismatch
		reasons = append(reasons, "theory session placed in a lab slot")
	}
	if room != nil {
		if wantLab && room.Kind != models.RoomLab {
			score += e.weights.TypeMismatchLenient
			reasons = append(reasons, fmt.Sprintf("practical placed in %s room %s", room.Kind, room.Name))
		}
		if !wantLab && room.Kind == models.RoomLab {
			score += e.weights.TypeMismatchLenient
			reasons = append(reasons, fmt.Sprintf("theory session occupies lab room %s", room.Name))
		}
		if room.Capacity < off.ExpectedSize {
			score += e.weights.RoomUndersized
			reasons = append(reasons, fmt.Sprintf("room %s seats %d below expected %d", room.Name, room.Capacity, off.ExpectedSize))
		} else if off.ExpectedSize > 0 && room.Capacity > 2*off.ExpectedSize {
			score += e.weights.RoomOversized
			reasons = append(reasons, fmt.Sprintf("room %s seats more than twice the expected %d", room.Name, off.ExpectedSize))
		}
	}
	if off.Teacher != nil {
		prefs := off.Teacher.Prefs
		if prefs.AvoidEarly && slot.StartMin < earlyStartMin {
			score += e.weights.AvoidEarly
			reasons = append(reasons, "teacher avoids early slots")
		}
		if prefs.AvoidLate && slot.StartMin >= lateStartMin {
			score += e.weights.AvoidLate
			reasons = append(reasons, "teacher avoids late slots")
		}
		if len(prefs.PreferredDays) > 0 && !prefs.PrefersDay(slot.Day) {
			score += e.weights.NonPreferredDay
			reasons = append(reasons, fmt.Sprintf("%s is not a preferred day", slot.Day))
		}
		if off.Teacher.MaxPerDay > 0 && e.occ.TeacherDayHours(off.Teacher.ID, slot.Day) >= off.Teacher.MaxPerDay {
			score += e.weights.DayAtCap
			reasons = append(reasons, fmt.Sprintf("teacher already at daily cap on %s", slot.Day))
		}
	}
	if slot.StartMin < middayEndMin && slot.EndMin > middayStartMin {
		score += e.weights.MiddayOverlap
		reasons = append(reasons, "overlaps the midday break window")
	}

	reasons = append(reasons, fmt.Sprintf("%s slot on %s", dayPart(slot.StartMin), slot.Day))
	return score, reasons
}

func dayPart(startMin int) string {
	switch {
	case startMin < afternoonMin:
		return "Morning"
	case startMin < eveningMin:
		return "Afternoon"
	default:
		return "Evening"
	}
}
