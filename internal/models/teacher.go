package models

import "time"

// Teacher represents an instructor record with workload caps and scheduling
// preferences.
type Teacher struct {
	ID         string       `db:"id" json:"id"`
	Email      string       `db:"email" json:"email"`
	FullName   string       `db:"full_name" json:"full_name"`
	Active     bool         `db:"active" json:"active"`
	MaxPerDay  int          `db:"max_per_day" json:"max_per_day"`
	MaxPerWeek int          `db:"max_per_week" json:"max_per_week"`
	Prefs      TeacherPrefs `db:"-" json:"prefs"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// TeacherPrefs is the closed set of soft scheduling preferences. Preferences
// are validated at ingestion; the penalty model reads them as plain fields.
type TeacherPrefs struct {
	AvoidEarly    bool      `json:"avoid_early"`
	AvoidLate     bool      `json:"avoid_late"`
	PreferredDays []Weekday `json:"preferred_days,omitempty"`
}

// PrefersDay reports whether day is in the preferred set. An empty set means
// no day preference at all.
func (p TeacherPrefs) PrefersDay(day Weekday) bool {
	for _, d := range p.PreferredDays {
		if d == day {
			return true
		}
	}
	return false
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
