package floorplans

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

func (c *Controller) GetFloorPlan(ctx *gin.Context) {
	plan, err := c.service.GetFloorPlan(ctx.Request.Context(), ctx.Param("eventId"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Floor plan retrieved successfully", plan, nil)
}

func (c *Controller) SaveLayout(ctx *gin.Context) {
	var req SaveLayoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	plan, err := c.service.SaveLayout(ctx.Request.Context(), ctx.Param("eventId"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Floor plan saved successfully", plan, nil)
}

func (c *Controller) DeleteFloorPlan(ctx *gin.Context) {
	result, err := c.service.DeleteFloorPlan(ctx.Request.Context(), ctx.Param("eventId"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Floor plan deleted successfully", result, nil)
}
