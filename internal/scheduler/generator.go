package scheduler

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/campusgrid/timetable-api/internal/models"
)

// unit is one schedulable demand derived from a course requirement triple.
type unit struct {
	kind  models.SessionKind
	hours int
}

// unitsFor expands a course into its weekly units: at most one practical
// block sized by the practical hour requirement (lab blocks run 2 or 3
// hours), then one-hour lecture and tutorial units.
func unitsFor(course models.Course) []unit {
	var units []unit
	if course.PracticalHours > 0 {
		units = append(units, unit{kind: models.KindPractical, hours: practicalBlockHours(course)})
	}
	for i := 0; i < course.LectureHours; i++ {
		units = append(units, unit{kind: models.KindLecture, hours: 1})
	}
	for i := 0; i < course.TutorialHours; i++ {
		units = append(units, unit{kind: models.KindTutorial, hours: 1})
	}
	return units
}

// practicalBlockHours clamps the practical requirement to the 2 or 3 hour
// sizes a lab block can run.
func practicalBlockHours(course models.Course) int {
	hours := course.PracticalHours
	if hours < 2 {
		hours = 2
	}
	if hours > 3 {
		hours = 3
	}
	return hours
}

// lockedUnitCounts tallies the weekly units already satisfied by locked rows,
// per offering and kind. A practical block spans several rows but covers a
// single unit.
func lockedUnitCounts(locked []models.Assignment) map[string]map[models.SessionKind]int {
	counts := map[string]map[models.SessionKind]int{}
	for _, a := range locked {
		byKind := counts[a.OfferingID]
		if byKind == nil {
			byKind = map[models.SessionKind]int{}
			counts[a.OfferingID] = byKind
		}
		if a.Kind == models.KindPractical {
			byKind[a.Kind] = 1
			continue
		}
		byKind[a.Kind]++
	}
	return counts
}

// Generate runs the batch scheduler: seed locked assignments, walk offerings
// in priority order, place each unit on its best feasible block and room, and
// accumulate warnings for whatever cannot be placed. Units already covered by
// locked rows are kept, not regenerated. One offering's failure never aborts
// the run; identical inputs always produce identical output.
func (e *Engine) Generate(in Input) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	idx := buildIndex(&in)

	occ := NewOccupancy(in.Slots)
	for _, locked := range in.Locked {
		off, ok := idx.offeringByID[locked.OfferingID]
		if !ok {
			return nil, setupErrorf("locked assignment %s references unknown offering %s", locked.ID, locked.OfferingID)
		}
		teacherID := ""
		if off.Teacher != nil {
			teacherID = off.Teacher.ID
		}
		occ.Commit(teacherID, off.Section.ID, locked.RoomID, locked.SlotID)
	}

	covered := lockedUnitCounts(in.Locked)
	eval := NewEvaluator(e.cfg.Weights, in.Availability, occ)
	blocks := BuildBlocks(in.Slots)
	rooms := sortedRooms(in.Rooms)
	ordered := orderOfferings(in.Offerings)

	result := &Result{
		Assignments: append([]models.Assignment(nil), in.Locked...),
		Warnings:    []Warning{},
	}
	result.Stats.TotalOfferings = len(in.Offerings)

	for _, off := range ordered {
		for _, u := range unitsFor(off.Course) {
			result.Stats.TotalUnitsRequired++
			if covered[off.ID][u.kind] > 0 {
				covered[off.ID][u.kind]--
				result.Stats.SuccessfulUnits++
				continue
			}
			if off.Teacher == nil {
				result.Stats.FailedUnits++
				result.Warnings = append(result.Warnings, Warning{
					OfferingID: off.ID,
					Kind:       u.kind,
					Reason:     ReasonNoTeacher,
					Message:    fmt.Sprintf("offering %s has no teacher to schedule", off.ID),
				})
				continue
			}
			placed, reason := e.placeUnit(off, u, blocks, rooms, eval, occ, result)
			if placed {
				result.Stats.SuccessfulUnits++
				continue
			}
			result.Stats.FailedUnits++
			result.Warnings = append(result.Warnings, Warning{
				OfferingID: off.ID,
				Kind:       u.kind,
				Reason:     reason,
				Message:    fmt.Sprintf("could not place %s unit of offering %s: %s", u.kind, off.ID, reason),
			})
		}
	}

	if result.Stats.TotalUnitsRequired > 0 {
		result.Stats.Utilization = float64(result.Stats.SuccessfulUnits) / float64(result.Stats.TotalUnitsRequired) * 100
	}
	return result, nil
}

// placeUnit tries ranked candidate blocks and commits the first one that also
// yields a room. It reports the dominant failure reason when nothing fits.
func (e *Engine) placeUnit(
	off models.ResolvedOffering,
	u unit,
	blocks []SlotBlock,
	rooms []models.Room,
	eval *Evaluator,
	occ *Occupancy,
	result *Result,
) (bool, FailureReason) {
	seen := map[FailureReason]bool{}
	var candidates []blockCandidate
	for _, block := range blocks {
		if !e.matchesDuration(block, u.hours) {
			continue
		}
		ok, reason := eval.Feasible(off, u.kind, block, nil)
		if !ok {
			seen[reason] = true
			continue
		}
		penalty, _ := eval.Penalty(off, u.kind, block.Slots[0], nil)
		candidates = append(candidates, blockCandidate{
			block:     block,
			dayLoad:   occ.TeacherDayCount(off.Teacher.ID, block.Day()),
			afternoon: block.StartMin() >= afternoonMin,
			penalty:   penalty,
			adjacent:  occ.TeacherAdjacent(off.Teacher.ID, block),
		})
	}
	if len(candidates) == 0 {
		return false, e.pickReason(seen)
	}
	sortCandidates(candidates, u.kind)

	for _, cand := range candidates {
		room, reason := pickRoom(off, u.kind, cand.block, rooms, eval)
		if room == nil {
			seen[reason] = true
			continue
		}
		roomID := room.ID
		for _, slot := range cand.block.Slots {
			result.Assignments = append(result.Assignments, models.Assignment{
				ID:         uuid.NewString(),
				OfferingID: off.ID,
				Kind:       u.kind,
				SlotID:     slot.ID,
				RoomID:     &roomID,
			})
			occ.Commit(off.Teacher.ID, off.Section.ID, &roomID, slot.ID)
		}
		return true, ""
	}
	return false, e.pickReason(seen)
}

type blockCandidate struct {
	block     SlotBlock
	dayLoad   int
	afternoon bool
	penalty   int
	adjacent  bool
}

// sortCandidates ranks candidates: spread teacher load across days first,
// practicals prefer afternoon starts, then lower soft penalty, then avoid
// sitting adjacent to the teacher's existing classes, ties broken by earliest
// day, earliest start, slot id.
func sortCandidates(candidates []blockCandidate, kind models.SessionKind) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.dayLoad != b.dayLoad {
			return a.dayLoad < b.dayLoad
		}
		if kind == models.KindPractical && a.afternoon != b.afternoon {
			return a.afternoon
		}
		if a.penalty != b.penalty {
			return a.penalty < b.penalty
		}
		if a.adjacent != b.adjacent {
			return !a.adjacent
		}
		if a.block.Day() != b.block.Day() {
			return a.block.Day() < b.block.Day()
		}
		if a.block.StartMin() != b.block.StartMin() {
			return a.block.StartMin() < b.block.StartMin()
		}
		return a.block.Slots[0].ID < b.block.Slots[0].ID
	})
}

// pickRoom returns the smallest compatible free room for the block, or the
// failure reason that blocked every room. The specific reason survives only
// when every room failed the same way.
func pickRoom(off models.ResolvedOffering, kind models.SessionKind, block SlotBlock, rooms []models.Room, eval *Evaluator) (*models.Room, FailureReason) {
	seen := map[FailureReason]bool{}
	var best *models.Room
	bestTags := -1
	for i := range rooms {
		room := rooms[i]
		ok, reason := eval.Feasible(off, kind, block, &room)
		if !ok {
			seen[reason] = true
			continue
		}
		tags := tagMatches(off, room)
		if best == nil {
			best, bestTags = &rooms[i], tags
			continue
		}
		// rooms arrive capacity-ascending, so only a tag upgrade at equal
		// capacity displaces the current pick
		if room.Capacity == best.Capacity && tags > bestTags {
			best, bestTags = &rooms[i], tags
		}
		if room.Capacity > best.Capacity {
			break
		}
	}
	if best != nil {
		return best, ""
	}
	if len(seen) == 1 {
		for reason := range seen {
			return nil, reason
		}
	}
	return nil, ReasonNoRoomAvailable
}

func tagMatches(off models.ResolvedOffering, room models.Room) int {
	count := 0
	for _, tag := range off.Tags {
		if room.HasTag(tag) {
			count++
		}
	}
	return count
}

// orderOfferings sorts offerings into the fixed generation priority:
// has-practical first, then descending expected size, then ascending section
// year, ties by original input order.
func orderOfferings(offerings []models.ResolvedOffering) []models.ResolvedOffering {
	ordered := make([]models.ResolvedOffering, len(offerings))
	copy(ordered, offerings)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		aPrac := a.Course.PracticalHours > 0
		bPrac := b.Course.PracticalHours > 0
		if aPrac != bPrac {
			return aPrac
		}
		if a.ExpectedSize != b.ExpectedSize {
			return a.ExpectedSize > b.ExpectedSize
		}
		return a.Section.Year < b.Section.Year
	})
	return ordered
}

func sortedRooms(rooms []models.Room) []models.Room {
	sorted := make([]models.Room, len(rooms))
	copy(sorted, rooms)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Capacity != sorted[j].Capacity {
			return sorted[i].Capacity < sorted[j].Capacity
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// pickReason chooses the single diagnostic reason by the configured severity
// precedence. Room-level detail folds into NoRoomAvailable unless every room
// failure shared one specific reason.
func (e *Engine) pickReason(seen map[FailureReason]bool) FailureReason {
	detail := FailureReason("")
	switch {
	case seen[ReasonRoomBusy] && !seen[ReasonRoomTooSmall] && !seen[ReasonNoRoomAvailable]:
		detail = ReasonRoomBusy
	case seen[ReasonRoomTooSmall] && !seen[ReasonRoomBusy] && !seen[ReasonNoRoomAvailable]:
		detail = ReasonRoomTooSmall
	}
	if seen[ReasonRoomBusy] || seen[ReasonRoomTooSmall] {
		seen[ReasonNoRoomAvailable] = true
	}
	for _, reason := range e.cfg.ReasonPrecedence {
		if seen[reason] {
			if reason == ReasonNoRoomAvailable && detail != "" {
				return detail
			}
			return reason
		}
	}
	return ReasonUnknown
}
