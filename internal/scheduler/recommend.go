package scheduler

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/campusgrid/timetable-api/internal/models"
)

// Alternative is one ranked placement option for a scheduled unit.
type Alternative struct {
	Slot         models.TimeSlot `json:"slot"`
	Room         models.Room     `json:"room"`
	PenaltyDelta int             `json:"penalty_delta"`
	Reasons      []string        `json:"reasons"`
}

// Recommendation holds the ranked alternatives for one (offering, kind) unit.
// An empty Alternatives list with a Message is a valid outcome, not an error.
type Recommendation struct {
	OfferingID   string             `json:"offering_id"`
	Kind         models.SessionKind `json:"kind"`
	Alternatives []Alternative      `json:"alternatives"`
	Message      string             `json:"message,omitempty"`
}

// Recommend re-ranks alternative placements for one already-known offering
// unit against a frozen snapshot that includes the current assignment set.
// It is read-only and side-effect-free; applying a chosen alternative is a
// plain assignment replace performed by the caller.
func (e *Engine) Recommend(in Input, current []models.Assignment, offeringID string, kind models.SessionKind) (*Recommendation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	idx := buildIndex(&in)

	off, ok := idx.offeringByID[offeringID]
	if !ok {
		return nil, setupErrorf("offering %s does not exist", offeringID)
	}
	if !kind.Valid() {
		return nil, setupErrorf("unknown session kind %q", kind)
	}
	if !offeringRequires(off.Course, kind) {
		return nil, setupErrorf("offering %s has no %s requirement", offeringID, kind)
	}
	rec := &Recommendation{OfferingID: offeringID, Kind: kind, Alternatives: []Alternative{}}
	if off.Teacher == nil {
		rec.Message = "offering has no teacher; nothing to recommend"
		return rec, nil
	}

	// The unit being moved must not block its own alternatives, so its rows
	// are left out of the occupancy snapshot.
	occ := NewOccupancy(in.Slots)
	currentSlots := map[string]bool{}
	var currentSlotID string
	var currentRoomID *string
	for _, a := range current {
		if a.OfferingID == offeringID && a.Kind == kind {
			currentSlots[a.SlotID] = true
			if currentSlotID == "" {
				currentSlotID = a.SlotID
				currentRoomID = a.RoomID
			}
			continue
		}
		other, ok := idx.offeringByID[a.OfferingID]
		if !ok {
			continue
		}
		teacherID := ""
		if other.Teacher != nil {
			teacherID = other.Teacher.ID
		}
		occ.Commit(teacherID, other.Section.ID, a.RoomID, a.SlotID)
	}

	eval := NewEvaluator(e.cfg.Weights, in.Availability, occ)
	currentPenalty := 0
	hasCurrent := currentSlotID != ""
	if hasCurrent {
		if slot, ok := idx.slotByID[currentSlotID]; ok {
			var room *models.Room
			if currentRoomID != nil {
				if r, ok := idx.roomByID[*currentRoomID]; ok {
					room = &r
				}
			}
			currentPenalty, _ = eval.Penalty(off, kind, slot, room)
		}
	}

	pairs := e.candidatePairs(in, idx, off, kind, currentSlots, occ, eval)
	alts := scorePairs(pairs, off, kind, eval, currentPenalty, hasCurrent)

	sort.SliceStable(alts, func(i, j int) bool {
		a, b := alts[i], alts[j]
		if a.PenaltyDelta != b.PenaltyDelta {
			return a.PenaltyDelta > b.PenaltyDelta
		}
		if a.Slot.Day != b.Slot.Day {
			return a.Slot.Day < b.Slot.Day
		}
		if a.Slot.StartMin != b.Slot.StartMin {
			return a.Slot.StartMin < b.Slot.StartMin
		}
		return a.Room.ID < b.Room.ID
	})
	if len(alts) > e.cfg.MaxRecommendations {
		alts = alts[:e.cfg.MaxRecommendations]
	}
	rec.Alternatives = alts
	if len(alts) == 0 {
		rec.Message = fmt.Sprintf("no alternative placements found for %s unit of offering %s", kind, offeringID)
	}
	return rec, nil
}

type slotRoomPair struct {
	slot models.TimeSlot
	room models.Room
}

// candidatePairs enumerates every free (slot, room) combination the unit
// could move to, excluding its current slots. A candidate must cover the
// unit's full duration, so a practical only matches lab slots spanning its
// whole block.
func (e *Engine) candidatePairs(
	in Input,
	idx *index,
	off models.ResolvedOffering,
	kind models.SessionKind,
	currentSlots map[string]bool,
	occ *Occupancy,
	eval *Evaluator,
) []slotRoomPair {
	wantLab := kind == models.KindPractical
	requiredHours := 1
	if wantLab {
		requiredHours = practicalBlockHours(off.Course)
	}
	teacherID := off.Teacher.ID
	rooms := sortedRooms(in.Rooms)

	var pairs []slotRoomPair
	for _, slot := range sortedSlots(in.Slots) {
		if currentSlots[slot.ID] {
			continue
		}
		if slot.IsLab != wantLab {
			continue
		}
		if !e.matchesDuration(SlotBlock{Slots: []models.TimeSlot{slot}}, requiredHours) {
			continue
		}
		if in.Availability.Restricted(teacherID) && !in.Availability.Available(teacherID, slot.ID) {
			continue
		}
		if occ.TeacherBusy(teacherID, slot) || occ.SectionBusy(off.Section.ID, slot) {
			continue
		}
		block := SlotBlock{Slots: []models.TimeSlot{slot}, Hours: hoursOf(slot.DurationMin())}
		for _, room := range rooms {
			if ok, _ := eval.Feasible(off, kind, block, &room); !ok {
				continue
			}
			pairs = append(pairs, slotRoomPair{slot: slot, room: room})
		}
	}
	return pairs
}

// scorePairs computes penalties for all candidate pairs. Scoring is pure and
// runs across a bounded worker pool; results land by index, so ordering stays
// deterministic.
func scorePairs(
	pairs []slotRoomPair,
	off models.ResolvedOffering,
	kind models.SessionKind,
	eval *Evaluator,
	currentPenalty int,
	hasCurrent bool,
) []Alternative {
	if len(pairs) == 0 {
		return nil
	}
	alts := make([]Alternative, len(pairs))
	workers := runtime.NumCPU()
	if workers > len(pairs) {
		workers = len(pairs)
	}
	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				pair := pairs[i]
				room := pair.room
				penalty, reasons := eval.Penalty(off, kind, pair.slot, &room)
				delta := -penalty
				if hasCurrent {
					delta = currentPenalty - penalty
				}
				alts[i] = Alternative{Slot: pair.slot, Room: room, PenaltyDelta: delta, Reasons: reasons}
			}
		}()
	}
	for i := range pairs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return alts
}

func offeringRequires(course models.Course, kind models.SessionKind) bool {
	switch kind {
	case models.KindLecture:
		return course.LectureHours > 0
	case models.KindTutorial:
		return course.TutorialHours > 0
	case models.KindPractical:
		return course.PracticalHours > 0
	}
	return false
}

func sortedSlots(slots []models.TimeSlot) []models.TimeSlot {
	sorted := make([]models.TimeSlot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Day != sorted[j].Day {
			return sorted[i].Day < sorted[j].Day
		}
		if sorted[i].StartMin != sorted[j].StartMin {
			return sorted[i].StartMin < sorted[j].StartMin
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
