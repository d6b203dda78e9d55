package checkins

type CheckinRequest struct {
	RegistrationID string `json:"registration_id" binding:"required,max=100"`
	IdempotencyKey string `json:"idempotency_key" binding:"max=255"`
	Operator       string `json:"operator" binding:"max=100"`
	DeviceID       string `json:"device_id" binding:"max=100"`
	Location       string `json:"location" binding:"max=255"`
}

type ScanRequest struct {
	Token          string `json:"token" binding:"required"`
	IdempotencyKey string `json:"idempotency_key" binding:"max=255"`
	Operator       string `json:"operator" binding:"max=100"`
	DeviceID       string `json:"device_id" binding:"max=100"`
	Location       string `json:"location" binding:"max=255"`
}
