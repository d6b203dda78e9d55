package capacity

import (
	"net/http"

	"seatkeep/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type CapacityQuery struct {
	ExpectedAttendance int `form:"expected_attendance" binding:"min=0"`
}

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) GetCapacity(ctx *gin.Context) {
	var q CapacityQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	report, err := c.service.AggregateCapacity(ctx.Request.Context(), ctx.Param("eventId"), q.ExpectedAttendance)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Capacity calculated successfully", report, nil)
}

func SetupCapacityRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/events/:eventId/capacity", controller.GetCapacity) // GET /api/v1/events/:eventId/capacity?expected_attendance=N
}
