package floorplans

import (
	"github.com/gin-gonic/gin"
)

// SetupFloorPlanRoutes registers the layout routes; admin guards the write routes.
func SetupFloorPlanRoutes(rg *gin.RouterGroup, controller *Controller, admin ...gin.HandlerFunc) {
	rg.GET("/events/:eventId/floor-plan", controller.GetFloorPlan) // GET /api/v1/events/:eventId/floor-plan

	adminEvents := rg.Group("/admin/events")
	adminEvents.Use(admin...)
	{
		adminEvents.PUT("/:eventId/floor-plan", controller.SaveLayout)         // PUT /api/v1/admin/events/:eventId/floor-plan
		adminEvents.DELETE("/:eventId/floor-plan", controller.DeleteFloorPlan) // DELETE /api/v1/admin/events/:eventId/floor-plan
	}
}
