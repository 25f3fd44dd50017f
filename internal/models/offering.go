package models

import (
	"time"

	"github.com/lib/pq"
)

// Offering is one course taught to one section, optionally by one teacher.
// A nil TeacherID leaves the offering unschedulable until filled in.
type Offering struct {
	ID           string         `db:"id" json:"id"`
	CourseID     string         `db:"course_id" json:"course_id"`
	SectionID    string         `db:"section_id" json:"section_id"`
	TeacherID    *string        `db:"teacher_id" json:"teacher_id,omitempty"`
	ExpectedSize int            `db:"expected_size" json:"expected_size"`
	Tags         pq.StringArray `db:"tags" json:"tags,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// ResolvedOffering is an offering with its foreign keys already dereferenced.
// The scheduler only ever sees this form; it never resolves ids itself.
type ResolvedOffering struct {
	Offering
	Course  Course
	Section Section
	Teacher *Teacher
}

// AvailabilitySet is the sparse teacher → slot availability relation. A
// teacher with no entry at all is available everywhere; that absence is an
// invariant of the data model, not an error.
type AvailabilitySet map[string]map[string]bool

// Available reports whether the teacher may teach in the given slot.
func (a AvailabilitySet) Available(teacherID, slotID string) bool {
	slots, ok := a[teacherID]
	if !ok {
		return true
	}
	return slots[slotID]
}

// Restricted reports whether the teacher declared an explicit availability set.
func (a AvailabilitySet) Restricted(teacherID string) bool {
	_, ok := a[teacherID]
	return ok
}

// TeacherAvailability is one persisted teacher→slot availability row.
type TeacherAvailability struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	SlotID    string    `db:"slot_id" json:"slot_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
