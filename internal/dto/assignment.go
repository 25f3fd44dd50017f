package dto

// AssignmentListQuery filters persisted assignments.
type AssignmentListQuery struct {
	TeacherID  string `form:"teacherId"`
	SectionID  string `form:"sectionId"`
	RoomID     string `form:"roomId"`
	OfferingID string `form:"offeringId"`
	Day        string `form:"day"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

// LockAssignmentRequest toggles the lock flag on one assignment.
type LockAssignmentRequest struct {
	Locked *bool `json:"locked" validate:"required"`
}

// ApplyPlacementRequest moves an assignment onto a chosen alternative.
type ApplyPlacementRequest struct {
	SlotID string  `json:"slotId" validate:"required"`
	RoomID *string `json:"roomId"`
}
