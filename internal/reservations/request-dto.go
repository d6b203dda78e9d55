package reservations

type ReserveRequest struct {
	SeatIDs    []string `json:"seat_ids" binding:"required,min=1,dive,uuid"`
	OwnerRef   string   `json:"owner_ref" binding:"required,max=100"`
	TTLSeconds int      `json:"ttl_seconds" binding:"min=0"`
}

type CommitRequest struct {
	PromoCode string `json:"promo_code" binding:"max=50"`
}

type CancelRequest struct {
	SeatIDs []string `json:"seat_ids" binding:"omitempty,dive,uuid"`
}
