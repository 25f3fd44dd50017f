package models

import "time"

// Weekday indexes the five teaching days of the weekly grid, Monday = 1.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

var weekdayNames = map[Weekday]string{
	Monday:    "MONDAY",
	Tuesday:   "TUESDAY",
	Wednesday: "WEDNESDAY",
	Thursday:  "THURSDAY",
	Friday:    "FRIDAY",
}

var weekdayIndex = map[string]Weekday{
	"MONDAY":    Monday,
	"TUESDAY":   Tuesday,
	"WEDNESDAY": Wednesday,
	"THURSDAY":  Thursday,
	"FRIDAY":    Friday,
}

// String returns the canonical upper-case day name.
func (d Weekday) String() string {
	if name, ok := weekdayNames[d]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether the weekday falls on the teaching grid.
func (d Weekday) Valid() bool {
	_, ok := weekdayNames[d]
	return ok
}

// ParseWeekday resolves a day name into its grid index, 0 when unknown.
func ParseWeekday(name string) Weekday {
	return weekdayIndex[name]
}

// TimeSlot is an atomic weekly time unit on the fixed grid. Slots are
// reference data maintained by configuration; the scheduler never writes them.
type TimeSlot struct {
	ID        string    `db:"id" json:"id"`
	Day       Weekday   `db:"day_of_week" json:"day_of_week"`
	StartMin  int       `db:"start_min" json:"start_min"`
	EndMin    int       `db:"end_min" json:"end_min"`
	IsLab     bool      `db:"is_lab" json:"is_lab"`
	Cluster   string    `db:"cluster" json:"cluster,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DurationMin returns the slot length in minutes.
func (s TimeSlot) DurationMin() int {
	return s.EndMin - s.StartMin
}

// Overlaps reports whether two slots collide on the weekly grid.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	if s.Day != other.Day {
		return false
	}
	return s.StartMin < other.EndMin && other.StartMin < s.EndMin
}
