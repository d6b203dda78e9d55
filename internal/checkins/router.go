package checkins

import (
	"github.com/gin-gonic/gin"
)

func SetupCheckinRoutes(rg *gin.RouterGroup, controller *Controller) {
	checkins := rg.Group("/events/:eventId/checkins")
	{
		checkins.POST("", controller.Checkin)                         // POST /api/v1/events/:eventId/checkins
		checkins.POST("/scan", controller.Scan)                       // POST /api/v1/events/:eventId/checkins/scan
		checkins.GET("/:registrationId", controller.GetCheckin)       // GET /api/v1/events/:eventId/checkins/:registrationId
		checkins.GET("/:registrationId/pass.png", controller.GetPass) // GET /api/v1/events/:eventId/checkins/:registrationId/pass.png
	}
}
