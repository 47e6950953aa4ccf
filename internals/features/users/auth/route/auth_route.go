package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/features/users/auth/controller"
	userModel "rajabrawijaya_backend/internals/features/users/model"
	"rajabrawijaya_backend/internals/middlewares"
	authMiddleware "rajabrawijaya_backend/internals/middlewares/auth"
)

// PublicAuthRoutes wajib dipasang SEBELUM grup ber-AuthMiddleware dibuat,
// supaya login tidak ikut tertahan guard token.
func PublicAuthRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAuthController(db)
	r.Post("/login", middlewares.LoginRateLimiter(), ctrl.Login)
}

func ProtectedAuthRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAuthController(db)

	r.Post("/logout", ctrl.Logout)
	r.Get("/me", ctrl.Me)
	r.Post("/users",
		authMiddleware.RequireRoles(userModel.RoleAdmin),
		ctrl.Register)
}
