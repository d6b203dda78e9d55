package reservations

import (
	"net/http"
	"time"

	"seatkeep/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
	jobs    *JobProcessor
}

// NewController wires the handlers; jobs may be nil when the sweeper is off
func NewController(service Service, jobs *JobProcessor) *Controller {
	return &Controller{service: service, jobs: jobs}
}

func (c *Controller) Reserve(ctx *gin.Context) {
	var req ReserveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	reservation, err := c.service.Reserve(ctx.Request.Context(), ctx.Param("eventId"), req.SeatIDs, req.OwnerRef, ttl)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Seats reserved successfully", reservation, nil)
}

func (c *Controller) GetReservation(ctx *gin.Context) {
	reservation, err := c.service.GetReservation(ctx.Request.Context(), ctx.Param("ownerRef"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Reservation retrieved successfully", reservation, nil)
}

func (c *Controller) Commit(ctx *gin.Context) {
	var req CommitRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RespondBindError(ctx, err)
			return
		}
	}

	receipt, err := c.service.Commit(ctx.Request.Context(), ctx.Param("ownerRef"), req.PromoCode)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Reservation committed successfully", receipt, nil)
}

func (c *Controller) Release(ctx *gin.Context) {
	result, err := c.service.Release(ctx.Request.Context(), ctx.Param("ownerRef"), ReasonReleased)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hold released successfully", result, nil)
}

func (c *Controller) Cancel(ctx *gin.Context) {
	var req CancelRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RespondBindError(ctx, err)
			return
		}
	}

	result, err := c.service.Cancel(ctx.Request.Context(), ctx.Param("ownerRef"), req.SeatIDs)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats cancelled successfully", result, nil)
}

// GetJobStatus reports the hold sweeper state
func (c *Controller) GetJobStatus(ctx *gin.Context) {
	if c.jobs == nil {
		response.RespondJSON(ctx, "success", http.StatusOK, "Hold sweeper disabled", gin.H{"status": "disabled"}, nil)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Hold sweeper status", c.jobs.GetJobStatus(), nil)
}
