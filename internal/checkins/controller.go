package checkins

import (
	"net/http"

	"seatkeep/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// IdempotencyHeader may carry the idempotency key instead of the body
const IdempotencyHeader = "Idempotency-Key"

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func idempotencyKey(ctx *gin.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	return ctx.GetHeader(IdempotencyHeader)
}

func respondResult(ctx *gin.Context, result *Result) {
	if result.Already {
		response.RespondJSON(ctx, "success", http.StatusOK, "Attendee is already checked in", result, nil)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Check-in recorded successfully", result, nil)
}

func (c *Controller) Checkin(ctx *gin.Context) {
	var req CheckinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	result, err := c.service.Checkin(ctx.Request.Context(), ctx.Param("eventId"), req.RegistrationID,
		idempotencyKey(ctx, req.IdempotencyKey),
		Metadata{Operator: req.Operator, DeviceID: req.DeviceID, Location: req.Location, Source: SourceManual})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	respondResult(ctx, result)
}

func (c *Controller) Scan(ctx *gin.Context) {
	var req ScanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	result, err := c.service.Scan(ctx.Request.Context(), ctx.Param("eventId"), req.Token,
		idempotencyKey(ctx, req.IdempotencyKey),
		Metadata{Operator: req.Operator, DeviceID: req.DeviceID, Location: req.Location, Source: SourceQR})
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	respondResult(ctx, result)
}

func (c *Controller) GetCheckin(ctx *gin.Context) {
	record, err := c.service.Get(ctx.Request.Context(), ctx.Param("eventId"), ctx.Param("registrationId"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Check-in retrieved successfully", record, nil)
}

func (c *Controller) GetPass(ctx *gin.Context) {
	png, err := c.service.Pass(ctx.Request.Context(), ctx.Param("eventId"), ctx.Param("registrationId"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "image/png", png)
}
