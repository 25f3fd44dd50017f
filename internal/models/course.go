package models

import "time"

// Course represents an academic course and its weekly hour requirement.
// PracticalHours > 0 means one multi-hour lab block per week, not that many
// separate hours.
type Course struct {
	ID             string    `db:"id" json:"id"`
	Code           string    `db:"code" json:"code"`
	Name           string    `db:"name" json:"name"`
	LectureHours   int       `db:"lecture_hours" json:"lecture_hours"`
	TutorialHours  int       `db:"tutorial_hours" json:"tutorial_hours"`
	PracticalHours int       `db:"practical_hours" json:"practical_hours"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Section is a student cohort; the unit that must never sit in two
// overlapping classes.
type Section struct {
	ID        string    `db:"id" json:"id"`
	Program   string    `db:"program" json:"program"`
	Year      int       `db:"year" json:"year"`
	Label     string    `db:"label" json:"label"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
