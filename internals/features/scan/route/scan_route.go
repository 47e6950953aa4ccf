package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/cache"
	eventService "rajabrawijaya_backend/internals/features/events/service"
	"rajabrawijaya_backend/internals/features/scan/controller"
	"rajabrawijaya_backend/internals/middlewares"
)

// ScanRoutes memasang endpoint scan QR. Rate limit lebih ketat dari
// endpoint lain karena dipanggil beruntun dari lapangan.
func ScanRoutes(r fiber.Router, db *gorm.DB, c cache.Cache, ev *eventService.EventService) {
	ctrl := controller.NewScanController(db, c, ev)

	g := r.Group("/scan", middlewares.ScanRateLimiter())
	g.Post("/absensi", ctrl.ScanAbsensi)
	g.Post("/konsumsi", ctrl.ScanKonsumsi)
}
