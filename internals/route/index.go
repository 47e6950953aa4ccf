package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/cache"
	absensiRoute "rajabrawijaya_backend/internals/features/absensi/route"
	eventBroker "rajabrawijaya_backend/internals/features/events/broker"
	eventRoute "rajabrawijaya_backend/internals/features/events/route"
	eventService "rajabrawijaya_backend/internals/features/events/service"
	generatorRoute "rajabrawijaya_backend/internals/features/generator/route"
	kegiatanRoute "rajabrawijaya_backend/internals/features/kegiatan/route"
	konsumsiRoute "rajabrawijaya_backend/internals/features/konsumsi/route"
	panitiaRoute "rajabrawijaya_backend/internals/features/panitia/route"
	scanRoute "rajabrawijaya_backend/internals/features/scan/route"
	authRoute "rajabrawijaya_backend/internals/features/users/auth/route"
	authMiddleware "rajabrawijaya_backend/internals/middlewares/auth"
)

// SetupRoutes merakit seluruh endpoint API.
// /api/v1 publik hanya untuk login; sisanya di balik AuthMiddleware.
// Urutan penting: route publik dipasang dulu, karena guard grup protected
// terdaftar sebagai Use pada prefix yang sama.
func SetupRoutes(app *fiber.App, db *gorm.DB, appCache cache.Cache, broker *eventBroker.Broker) {
	events := eventService.NewEventService(db, broker)

	api := app.Group("/api/v1")
	authRoute.PublicAuthRoutes(api, db)

	protected := app.Group("/api/v1", authMiddleware.AuthMiddleware(db))
	authRoute.ProtectedAuthRoutes(protected, db)

	panitiaRoute.PanitiaRoutes(protected, db, appCache)
	kegiatanRoute.KegiatanRoutes(protected, db)
	absensiRoute.AbsensiRoutes(protected, db, appCache, events)
	konsumsiRoute.KonsumsiRoutes(protected, db, appCache, events)
	scanRoute.ScanRoutes(protected, db, appCache, events)
	generatorRoute.GeneratorRoutes(protected, db)
	eventRoute.EventRoutes(protected, db, broker)
}
