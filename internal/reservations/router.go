package reservations

import (
	"github.com/gin-gonic/gin"
)

func SetupReservationRoutes(rg *gin.RouterGroup, controller *Controller, admin ...gin.HandlerFunc) {

	// BUYER FLOW

	rg.POST("/events/:eventId/reservations", controller.Reserve) // POST /api/v1/events/:eventId/reservations

	reservations := rg.Group("/reservations")
	{
		reservations.GET("/:ownerRef", controller.GetReservation) // GET /api/v1/reservations/:ownerRef
		reservations.DELETE("/:ownerRef", controller.Release)     // DELETE /api/v1/reservations/:ownerRef
		reservations.POST("/:ownerRef/commit", controller.Commit) // POST /api/v1/reservations/:ownerRef/commit
	}

	// ADMIN OPERATIONS

	adminReservations := rg.Group("/admin/reservations")
	adminReservations.Use(admin...)
	{
		adminReservations.GET("/jobs", controller.GetJobStatus)          // GET /api/v1/admin/reservations/jobs
		adminReservations.POST("/:ownerRef/release", controller.Release) // POST /api/v1/admin/reservations/:ownerRef/release
		adminReservations.POST("/:ownerRef/cancel", controller.Cancel)   // POST /api/v1/admin/reservations/:ownerRef/cancel
	}
}
