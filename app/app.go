package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pricing-rollup/app/controller"
	"pricing-rollup/app/router"
	"pricing-rollup/config"
	"pricing-rollup/db"
	"pricing-rollup/logger"
	"pricing-rollup/repository"
	"pricing-rollup/service"
)

// Initialize connects to the database, wires repositories, services and controllers, and
// returns the HTTP server ready to listen on cfg.Addr()
func Initialize(ctx context.Context, cfg config.Config, log *logger.Logger) (*http.Server, error) {
	// Initialize database connection
	if err := db.InitDB(ctx, cfg.Database, log); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	lineItemRepo := repository.NewLineItemRepository(db.DB, log)
	componentRepo := repository.NewComponentRepository(db.DB, log)
	treeVersionRepo := repository.NewTreeVersionRepository(db.DB, log)
	reservationRepo := repository.NewReservationRepository(db.DB, log)

	// Initialize services
	rollupService := service.NewRollupService(lineItemRepo, componentRepo, treeVersionRepo, log)
	reservationService := service.NewReservationService(rollupService, reservationRepo, log)
	componentService := service.NewComponentService(rollupService, componentRepo, log)

	// Create controllers
	controllers := &router.Controllers{
		Health:      controller.NewHealthController(),
		Rollup:      controller.NewRollupController(rollupService, log),
		Reservation: controller.NewReservationController(reservationService, log),
		Component:   controller.NewComponentController(componentService, log),
	}

	engine := router.SetupRoutes(controllers, log)

	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}
