package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/features/generator/controller"
	userModel "rajabrawijaya_backend/internals/features/users/model"
	authMiddleware "rajabrawijaya_backend/internals/middlewares/auth"
)

func GeneratorRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewGeneratorController(db)

	r.Post("/generate",
		authMiddleware.RequireRoles(userModel.RoleAdmin),
		ctrl.Generate)
}
