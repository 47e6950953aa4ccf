package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/cache"
	"rajabrawijaya_backend/internals/features/panitia/controller"
	authMiddleware "rajabrawijaya_backend/internals/middlewares/auth"
	userModel "rajabrawijaya_backend/internals/features/users/model"
)

// PanitiaRoutes memasang endpoint manajemen panitia.
// Mutasi dan export hanya untuk admin; baca boleh operator.
func PanitiaRoutes(r fiber.Router, db *gorm.DB, c cache.Cache) {
	ctrl := controller.NewPanitiaController(db, c)

	g := r.Group("/panitia")
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.GetByID)
	g.Get("/:id/qr", ctrl.QrPNG)

	admin := g.Group("/", authMiddleware.RequireRoles(userModel.RoleAdmin))
	admin.Post("/", ctrl.Create)
	admin.Put("/:id", ctrl.Update)
	admin.Delete("/:id", ctrl.Delete)
	admin.Post("/:id/qr/regenerate", ctrl.RegenerateQr)
	admin.Post("/import", ctrl.ImportCSV)
	admin.Get("/export/csv", ctrl.ExportCSV)
	admin.Get("/export/json", ctrl.ExportJSON)
	admin.Get("/export/qr-zip", ctrl.ExportQrZip)
}
