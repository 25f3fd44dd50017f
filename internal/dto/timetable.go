package dto

// GenerateTimetableRequest triggers a weekly generation run.
type GenerateTimetableRequest struct {
	DryRun bool `json:"dryRun"`
}

// AssignmentView is the wire shape of one scheduled session unit.
type AssignmentView struct {
	ID         string  `json:"id"`
	OfferingID string  `json:"offeringId"`
	Kind       string  `json:"kind"`
	SlotID     string  `json:"slotId"`
	Day        string  `json:"day,omitempty"`
	StartMin   int     `json:"startMin,omitempty"`
	EndMin     int     `json:"endMin,omitempty"`
	RoomID     *string `json:"roomId,omitempty"`
	Locked     bool    `json:"locked"`
}

// GenerationWarning reports one session unit the generator could not place.
type GenerationWarning struct {
	OfferingID string `json:"offeringId"`
	Kind       string `json:"kind"`
	Reason     string `json:"reason"`
	Message    string `json:"message"`
}

// GenerationStats summarises a generation run.
type GenerationStats struct {
	TotalOfferings     int     `json:"totalOfferings"`
	TotalUnitsRequired int     `json:"totalUnitsRequired"`
	SuccessfulUnits    int     `json:"successfulUnits"`
	FailedUnits        int     `json:"failedUnits"`
	Utilization        float64 `json:"utilization"`
	DurationMs         int64   `json:"durationMs"`
}

// GenerateTimetableResponse returns the produced week.
type GenerateTimetableResponse struct {
	Assignments []AssignmentView    `json:"assignments"`
	Warnings    []GenerationWarning `json:"warnings"`
	Stats       GenerationStats     `json:"stats"`
	DryRun      bool                `json:"dryRun"`
}
