package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/cache"
	"rajabrawijaya_backend/internals/features/absensi/controller"
	eventService "rajabrawijaya_backend/internals/features/events/service"
	userModel "rajabrawijaya_backend/internals/features/users/model"
	authMiddleware "rajabrawijaya_backend/internals/middlewares/auth"
)

func AbsensiRoutes(r fiber.Router, db *gorm.DB, c cache.Cache, ev *eventService.EventService) {
	ctrl := controller.NewAbsensiController(db, c, ev)

	g := r.Group("/absensi")
	g.Get("/", ctrl.List)
	g.Get("/rekap", ctrl.Rekap)
	g.Post("/lookup", ctrl.Lookup)
	g.Patch("/:id", ctrl.Update)

	admin := g.Group("/", authMiddleware.RequireRoles(userModel.RoleAdmin))
	admin.Delete("/:id", ctrl.Delete)
}
