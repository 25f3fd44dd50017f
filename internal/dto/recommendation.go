package dto

// RecommendationQuery selects which session unit of an offering to rescue.
type RecommendationQuery struct {
	Kind string `form:"kind" validate:"required,oneof=L T P"`
}

// AlternativeView is one ranked placement candidate.
type AlternativeView struct {
	SlotID       string   `json:"slotId"`
	Day          string   `json:"day"`
	StartMin     int      `json:"startMin"`
	EndMin       int      `json:"endMin"`
	RoomID       *string  `json:"roomId,omitempty"`
	RoomName     string   `json:"roomName,omitempty"`
	PenaltyDelta int      `json:"penaltyDelta"`
	Reasons      []string `json:"reasons"`
}

// RecommendationResponse lists alternatives for one offering unit.
type RecommendationResponse struct {
	OfferingID   string            `json:"offeringId"`
	Kind         string            `json:"kind"`
	Alternatives []AlternativeView `json:"alternatives"`
	Message      string            `json:"message,omitempty"`
	Cached       bool              `json:"cached"`
}
