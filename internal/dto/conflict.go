package dto

// ConflictCheckRequest pre-validates a manual placement before it is applied.
type ConflictCheckRequest struct {
	OfferingID string  `json:"offeringId" validate:"required"`
	Kind       string  `json:"kind" validate:"required,oneof=L T P"`
	SlotID     string  `json:"slotId" validate:"required"`
	RoomID     *string `json:"roomId"`
}

// ViolationView is one broken hard constraint.
type ViolationView struct {
	Constraint    string `json:"constraint"`
	Message       string `json:"message"`
	ConflictsWith string `json:"conflictsWith,omitempty"`
}

// ConflictCheckResponse reports whether the placement is admissible.
type ConflictCheckResponse struct {
	Valid      bool            `json:"valid"`
	Violations []ViolationView `json:"violations"`
}
