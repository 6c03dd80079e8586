package router

import (
	"github.com/gin-gonic/gin"

	"pricing-rollup/app/controller"
	"pricing-rollup/logger"
)

type Controllers struct {
	Health      *controller.HealthController
	Rollup      *controller.RollupController
	Reservation *controller.ReservationController
	Component   *controller.ComponentController
}

// SetupRoutes builds the gin engine with every route of the service
func SetupRoutes(controllers *Controllers, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))

	// Health
	if controllers.Health != nil {
		r.GET("/healthcheck", controllers.Health.HealthCheck)
	}

	orders := r.Group("/orders/:orderId")
	orders.Use(controller.RequireOrganization())
	{
		// Rollup
		if controllers.Rollup != nil {
			orders.GET("/rollup", controllers.Rollup.GetRollup)
		}

		// Reservations
		if controllers.Reservation != nil {
			orders.POST("/reservations", controllers.Reservation.Reserve)
			orders.POST("/reservations/release", controllers.Reservation.Release)
			orders.POST("/reservations/reconcile", controllers.Reservation.Reconcile)
			orders.GET("/reservations/rollup", controllers.Reservation.GetRollupView)
		}

		// Accepted components
		if controllers.Component != nil {
			orders.POST("/line-items/:lineItemId/components", controllers.Component.Accept)
		}
	}

	return r
}
