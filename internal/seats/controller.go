package seats

import (
	"net/http"

	"seatkeep/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) GenerateSeats(ctx *gin.Context) {
	var req GenerateSeatsRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RespondBindError(ctx, err)
			return
		}
	}

	result, err := c.service.GenerateSeats(ctx.Request.Context(), ctx.Param("eventId"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Seats generated successfully", result, nil)
}

func (c *Controller) RenumberSeats(ctx *gin.Context) {
	var req RenumberSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	result, err := c.service.RenumberSeats(ctx.Request.Context(), ctx.Param("eventId"), req.Scheme)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats renumbered successfully", result, nil)
}

func (c *Controller) UpdateTierPrice(ctx *gin.Context) {
	var req UpdateTierPriceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	result, err := c.service.UpdateTierPrice(ctx.Request.Context(), ctx.Param("eventId"), req.Tier, *req.Price)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Tier price updated successfully", result, nil)
}

func (c *Controller) ListSeats(ctx *gin.Context) {
	var q ListSeatsQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	availability, err := c.service.ListSeats(ctx.Request.Context(), ctx.Param("eventId"), q)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats retrieved successfully", availability, nil)
}
