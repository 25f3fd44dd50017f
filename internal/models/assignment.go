package models

import "time"

// SessionKind is the teaching modality of a scheduled unit.
type SessionKind string

const (
	KindLecture   SessionKind = "L"
	KindTutorial  SessionKind = "T"
	KindPractical SessionKind = "P"
)

// Valid reports whether the kind is one of L, T, P.
func (k SessionKind) Valid() bool {
	switch k {
	case KindLecture, KindTutorial, KindPractical:
		return true
	}
	return false
}

// Assignment pins one offering unit to a slot and room. Practical blocks emit
// one row per atomic slot, all sharing offering, kind, and room. Locked rows
// are immutable inputs to regeneration and are only removed by explicit
// unlock + delete.
type Assignment struct {
	ID         string      `db:"id" json:"id"`
	OfferingID string      `db:"offering_id" json:"offering_id"`
	Kind       SessionKind `db:"kind" json:"kind"`
	SlotID     string      `db:"slot_id" json:"slot_id"`
	RoomID     *string     `db:"room_id" json:"room_id,omitempty"`
	Locked     bool        `db:"locked" json:"locked"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

// AssignmentFilter describes query params for listing assignments.
type AssignmentFilter struct {
	OfferingID string
	TeacherID  string
	SectionID  string
	RoomID     string
	Kind       string
	Day        string
	Locked     *bool
	Page       int
	PageSize   int
}

// Pagination carries list paging metadata in response envelopes.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
