package models

import (
	"time"

	"github.com/lib/pq"
)

// RoomKind classifies physical teaching rooms.
type RoomKind string

const (
	RoomClassroom   RoomKind = "classroom"
	RoomLab         RoomKind = "lab"
	RoomDrawingHall RoomKind = "drawing-hall"
)

// Valid reports whether the kind is one of the known room classes.
func (k RoomKind) Valid() bool {
	switch k {
	case RoomClassroom, RoomLab, RoomDrawingHall:
		return true
	}
	return false
}

// Room represents a physical room on campus.
type Room struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Capacity  int            `db:"capacity" json:"capacity"`
	Kind      RoomKind       `db:"kind" json:"kind"`
	Tags      pq.StringArray `db:"tags" json:"tags,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// HasTag reports whether the room carries the given tag.
func (r Room) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
