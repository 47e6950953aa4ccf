package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/cache"
	eventService "rajabrawijaya_backend/internals/features/events/service"
	"rajabrawijaya_backend/internals/features/konsumsi/controller"
	userModel "rajabrawijaya_backend/internals/features/users/model"
	authMiddleware "rajabrawijaya_backend/internals/middlewares/auth"
)

func KonsumsiRoutes(r fiber.Router, db *gorm.DB, c cache.Cache, ev *eventService.EventService) {
	ctrl := controller.NewKonsumsiController(db, c, ev)

	g := r.Group("/konsumsi")
	g.Get("/", ctrl.List)
	g.Post("/lookup", ctrl.Lookup)
	g.Patch("/pair", ctrl.UpdatePair)

	admin := g.Group("/", authMiddleware.RequireRoles(userModel.RoleAdmin))
	admin.Post("/reset", ctrl.BulkReset)
}
