package scheduler

import (
	"fmt"

	"github.com/campusgrid/timetable-api/internal/models"
)

// HardConstraint names one of the non-negotiable scheduling rules.
type HardConstraint string

const (
	ConstraintTeacherDoubleBooked HardConstraint = "TEACHER_DOUBLE_BOOKED"
	ConstraintRoomDoubleBooked    HardConstraint = "ROOM_DOUBLE_BOOKED"
	ConstraintSectionDoubleBooked HardConstraint = "SECTION_DOUBLE_BOOKED"
	ConstraintSlotKindMismatch    HardConstraint = "SLOT_KIND_MISMATCH"
)

// Violation describes one hard constraint a proposed placement would break,
// pointing at the existing assignment it collides with where one exists.
type Violation struct {
	Constraint    HardConstraint `json:"constraint"`
	Message       string         `json:"message"`
	AssignmentID  string         `json:"assignment_id,omitempty"`
	ConflictsWith string         `json:"conflicts_with,omitempty"`
}

// Proposal is a placement to pre-validate: typically a manual drag/drop move
// before the caller commits it.
type Proposal struct {
	OfferingID string             `json:"offering_id"`
	Kind       models.SessionKind `json:"kind"`
	SlotID     string             `json:"slot_id"`
	RoomID     *string            `json:"room_id,omitempty"`
}

// CheckConflicts returns every hard constraint the proposal violates against
// the current assignment set. It searches for nothing: one pass over existing
// assignments, no state, no alternatives.
func CheckConflicts(in Input, current []models.Assignment, p Proposal) ([]Violation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	idx := buildIndex(&in)

	off, ok := idx.offeringByID[p.OfferingID]
	if !ok {
		return nil, setupErrorf("offering %s does not exist", p.OfferingID)
	}
	slot, ok := idx.slotByID[p.SlotID]
	if !ok {
		return nil, setupErrorf("time slot %s does not exist", p.SlotID)
	}

	violations := []Violation{}
	wantLab := p.Kind == models.KindPractical
	if slot.IsLab != wantLab {
		violations = append(violations, Violation{
			Constraint: ConstraintSlotKindMismatch,
			Message:    fmt.Sprintf("%s unit cannot sit in slot %s (is_lab=%t)", p.Kind, slot.ID, slot.IsLab),
		})
	}
	if p.RoomID != nil {
		if room, ok := idx.roomByID[*p.RoomID]; ok {
			if (room.Kind == models.RoomLab) != wantLab {
				violations = append(violations, Violation{
					Constraint: ConstraintSlotKindMismatch,
					Message:    fmt.Sprintf("%s unit cannot use %s room %s", p.Kind, room.Kind, room.Name),
				})
			}
		}
	}

	for _, existing := range current {
		if existing.OfferingID == p.OfferingID && existing.Kind == p.Kind {
			// the proposal replaces this unit's own rows
			continue
		}
		existingSlot, ok := idx.slotByID[existing.SlotID]
		if !ok || !existingSlot.Overlaps(slot) {
			continue
		}
		other, ok := idx.offeringByID[existing.OfferingID]
		if !ok {
			continue
		}
		if off.Teacher != nil && other.Teacher != nil && off.Teacher.ID == other.Teacher.ID {
			violations = append(violations, Violation{
				Constraint:    ConstraintTeacherDoubleBooked,
				Message:       fmt.Sprintf("teacher %s already teaches in overlapping slot %s", off.Teacher.ID, existing.SlotID),
				ConflictsWith: existing.ID,
			})
		}
		if p.RoomID != nil && existing.RoomID != nil && *p.RoomID == *existing.RoomID {
			violations = append(violations, Violation{
				Constraint:    ConstraintRoomDoubleBooked,
				Message:       fmt.Sprintf("room %s is occupied in overlapping slot %s", *p.RoomID, existing.SlotID),
				ConflictsWith: existing.ID,
			})
		}
		if off.Section.ID == other.Section.ID {
			violations = append(violations, Violation{
				Constraint:    ConstraintSectionDoubleBooked,
				Message:       fmt.Sprintf("section %s already sits in overlapping slot %s", off.Section.ID, existing.SlotID),
				ConflictsWith: existing.ID,
			})
		}
	}
	return violations, nil
}
