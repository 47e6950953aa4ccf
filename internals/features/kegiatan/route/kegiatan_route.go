package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/features/kegiatan/controller"
	userModel "rajabrawijaya_backend/internals/features/users/model"
	authMiddleware "rajabrawijaya_backend/internals/middlewares/auth"
)

func KegiatanRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewKegiatanController(db)

	g := r.Group("/kegiatan")
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.GetByID)

	admin := g.Group("/", authMiddleware.RequireRoles(userModel.RoleAdmin))
	admin.Post("/", ctrl.Create)
	admin.Put("/:id", ctrl.Update)
	admin.Delete("/:id", ctrl.Delete)
	admin.Post("/:id/rangkaian", ctrl.CreateRangkaian)
	admin.Put("/:id/rangkaian/:rangkaian_id", ctrl.UpdateRangkaian)
	admin.Delete("/:id/rangkaian/:rangkaian_id", ctrl.DeleteRangkaian)
}
