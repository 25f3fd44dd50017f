package scheduler

import "github.com/campusgrid/timetable-api/internal/models"

// Occupancy is the explicit, versioned index of who holds which slot. It is
// the single source of truth for busy checks; it mutates only at commit time,
// which keeps the sequential-commit boundary of the generator clean.
type Occupancy struct {
	slotByID map[string]models.TimeSlot

	teacherSlots map[string][]string
	roomSlots    map[string][]string
	sectionSlots map[string][]string

	teacherDayHours  map[string]map[models.Weekday]int
	teacherWeekHours map[string]int

	version int
}

// NewOccupancy builds an empty index over the given slot grid.
func NewOccupancy(slots []models.TimeSlot) *Occupancy {
	byID := make(map[string]models.TimeSlot, len(slots))
	for _, s := range slots {
		byID[s.ID] = s
	}
	return &Occupancy{
		slotByID:         byID,
		teacherSlots:     make(map[string][]string),
		roomSlots:        make(map[string][]string),
		sectionSlots:     make(map[string][]string),
		teacherDayHours:  make(map[string]map[models.Weekday]int),
		teacherWeekHours: make(map[string]int),
	}
}

// Version increments every commit; snapshots taken at different versions are
// never equal.
func (o *Occupancy) Version() int {
	return o.version
}

// Commit registers one assignment's slot against its teacher, room, and
// section dimensions and bumps the version.
func (o *Occupancy) Commit(teacherID, sectionID string, roomID *string, slotID string) {
	slot, ok := o.slotByID[slotID]
	if !ok {
		return
	}
	hours := hoursOf(slot.DurationMin())
	if teacherID != "" {
		o.teacherSlots[teacherID] = append(o.teacherSlots[teacherID], slotID)
		if o.teacherDayHours[teacherID] == nil {
			o.teacherDayHours[teacherID] = make(map[models.Weekday]int)
		}
		o.teacherDayHours[teacherID][slot.Day] += hours
		o.teacherWeekHours[teacherID] += hours
	}
	if roomID != nil && *roomID != "" {
		o.roomSlots[*roomID] = append(o.roomSlots[*roomID], slotID)
	}
	if sectionID != "" {
		o.sectionSlots[sectionID] = append(o.sectionSlots[sectionID], slotID)
	}
	o.version++
}

// TeacherBusy reports whether the teacher already occupies anything
// overlapping the slot.
func (o *Occupancy) TeacherBusy(teacherID string, slot models.TimeSlot) bool {
	return o.anyOverlap(o.teacherSlots[teacherID], slot)
}

// RoomBusy reports whether the room already occupies anything overlapping
// the slot.
func (o *Occupancy) RoomBusy(roomID string, slot models.TimeSlot) bool {
	return o.anyOverlap(o.roomSlots[roomID], slot)
}

// SectionBusy reports whether the cohort already sits in anything
// overlapping the slot, regardless of which slot ids are involved.
func (o *Occupancy) SectionBusy(sectionID string, slot models.TimeSlot) bool {
	return o.anyOverlap(o.sectionSlots[sectionID], slot)
}

// TeacherDayHours returns committed teaching hours for the teacher on a day.
func (o *Occupancy) TeacherDayHours(teacherID string, day models.Weekday) int {
	return o.teacherDayHours[teacherID][day]
}

// TeacherWeekHours returns committed weekly teaching hours for the teacher.
func (o *Occupancy) TeacherWeekHours(teacherID string) int {
	return o.teacherWeekHours[teacherID]
}

// TeacherDayCount returns how many distinct committed slots the teacher holds
// on the given day. The generator uses it to spread load.
func (o *Occupancy) TeacherDayCount(teacherID string, day models.Weekday) int {
	count := 0
	for _, id := range o.teacherSlots[teacherID] {
		if o.slotByID[id].Day == day {
			count++
		}
	}
	return count
}

// TeacherAdjacent reports whether the teacher holds a slot touching the
// block's boundaries on the same day.
func (o *Occupancy) TeacherAdjacent(teacherID string, block SlotBlock) bool {
	for _, id := range o.teacherSlots[teacherID] {
		held := o.slotByID[id]
		if held.Day != block.Day() {
			continue
		}
		if held.EndMin == block.StartMin() || held.StartMin == block.EndMin() {
			return true
		}
	}
	return false
}

func (o *Occupancy) anyOverlap(held []string, slot models.TimeSlot) bool {
	for _, id := range held {
		if o.slotByID[id].Overlaps(slot) {
			return true
		}
	}
	return false
}
