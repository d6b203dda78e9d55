package seats

import (
	"github.com/gin-gonic/gin"
)

func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller, admin ...gin.HandlerFunc) {

	// PUBLIC AVAILABILITY

	rg.GET("/events/:eventId/seats", controller.ListSeats) // GET /api/v1/events/:eventId/seats?section=&tier=

	// ADMIN INVENTORY OPERATIONS

	adminSeats := rg.Group("/admin/events/:eventId/seats")
	adminSeats.Use(admin...)
	{
		adminSeats.POST("/generate", controller.GenerateSeats) // POST /api/v1/admin/events/:eventId/seats/generate
		adminSeats.POST("/renumber", controller.RenumberSeats) // POST /api/v1/admin/events/:eventId/seats/renumber
		adminSeats.PATCH("/price", controller.UpdateTierPrice) // PATCH /api/v1/admin/events/:eventId/seats/price
	}
}
