// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"seatkeep/internal/capacity"
	"seatkeep/internal/checkins"
	"seatkeep/internal/floorplans"
	"seatkeep/internal/promocodes"
	"seatkeep/internal/reservations"
	"seatkeep/internal/seats"
	"seatkeep/internal/shared/config"
	"seatkeep/internal/shared/database"
	"seatkeep/internal/shared/middleware"
	"seatkeep/pkg/cache"
	"seatkeep/pkg/messaging"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	cache     cache.Service
	publisher messaging.Publisher

	// Services shared between route groups and background workers
	seatRepo     seats.Repository
	floorPlans   floorplans.Service
	promoCodes   promocodes.Service
	reservations reservations.Service
	checkins     checkins.Service
	jobs         *reservations.JobProcessor
}

// NewRouter wires every service on top of the shared connections
func NewRouter(cfg *config.Config, db *database.DB, publisher messaging.Publisher) *Router {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	r := &Router{
		config:    cfg,
		db:        db,
		cache:     cache.NewService(db.GetRedisClient()),
		publisher: publisher,
	}

	sqlDB := db.GetSQL()
	r.seatRepo = seats.NewRepository(sqlDB)
	// deleting a floor plan removes the event's seats in the same transaction
	r.floorPlans = floorplans.NewService(floorplans.NewRepository(sqlDB), r.cache, publisher, r.seatRepo.DeleteByEventTx)
	r.promoCodes = promocodes.NewService(promocodes.NewRepository(sqlDB))
	r.reservations = reservations.NewService(reservations.NewRepository(sqlDB), r.promoCodes, r.cache, publisher, cfg.Holds)
	r.checkins = checkins.NewService(checkins.NewRepository(sqlDB), publisher, cfg.Checkin)

	if cfg.Holds.SweeperEnabled {
		r.jobs = reservations.NewJobProcessor(r.reservations, &reservations.JobConfig{
			SweepInterval: cfg.Holds.SweeperInterval,
			BatchSize:     cfg.Holds.SweeperBatchSize,
		})
	}
	return r
}

// Reservations exposes the hold manager to the payment listener
func (r *Router) Reservations() reservations.Service {
	return r.reservations
}

// Checkins exposes the check-in ledger
func (r *Router) Checkins() checkins.Service {
	return r.checkins
}

// Jobs returns the hold sweeper, nil when it is disabled
func (r *Router) Jobs() *reservations.JobProcessor {
	return r.jobs
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	admin := []gin.HandlerFunc{middleware.JWTAuthWithConfig(r.config), middleware.RequireAdmin()}

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		floorplans.SetupFloorPlanRoutes(api, floorplans.NewController(r.floorPlans), admin...)
		capacity.SetupCapacityRoutes(api, capacity.NewController(capacity.NewService(r.floorPlans, r.cache)))
		r.setupSeatRoutes(api, admin)
		reservations.SetupReservationRoutes(api, reservations.NewController(r.reservations, r.jobs), admin...)
		promocodes.SetupPromoCodeRoutes(api, promocodes.NewController(r.promoCodes), admin...)
		checkins.SetupCheckinRoutes(api, checkins.NewController(r.checkins))
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		// Perform health checks
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "seatkeep",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "seatkeep",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		status := gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"database":    r.db.Driver(),
			"redis_cache": r.db.GetRedisClient() != nil,
			"timestamp":   time.Now(),
		}
		if r.jobs != nil {
			status["hold_sweeper"] = r.jobs.GetJobStatus()
		}
		c.JSON(http.StatusOK, status)
	})
}

// setupSeatRoutes configures seat inventory routes
func (r *Router) setupSeatRoutes(rg *gin.RouterGroup, admin []gin.HandlerFunc) {
	seatService := seats.NewService(r.seatRepo, r.floorPlans, r.cache, r.publisher)
	seats.SetupSeatRoutes(rg, seats.NewController(seatService), admin...)
}
