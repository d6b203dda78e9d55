package floorplans

// DeleteResult reports what a floor plan deletion removed
type DeleteResult struct {
	EventID      string `json:"event_id"`
	Objects      int64  `json:"objects_deleted"`
	SeatsDeleted int64  `json:"seats_deleted"`
}
