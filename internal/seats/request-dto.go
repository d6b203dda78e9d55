package seats

import "seatkeep/internal/floorplans"

// GenerateSeatsRequest regenerates an event's inventory. Objects, when given,
// replace the stored layout for this run only.
type GenerateSeatsRequest struct {
	Force   bool                       `json:"force"`
	Objects []floorplans.ObjectRequest `json:"objects" binding:"omitempty,dive"`
}

type RenumberSeatsRequest struct {
	Scheme string `json:"scheme" binding:"required"`
}

type UpdateTierPriceRequest struct {
	Tier  string   `json:"tier" binding:"required"`
	Price *float64 `json:"price" binding:"required,min=0"`
}

type ListSeatsQuery struct {
	Section string `form:"section"`
	Tier    string `form:"tier"`
}
