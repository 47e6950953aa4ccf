package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/features/events/broker"
	"rajabrawijaya_backend/internals/features/events/controller"
)

func EventRoutes(r fiber.Router, db *gorm.DB, b *broker.Broker) {
	ctrl := controller.NewEventController(db, b)

	g := r.Group("/events")
	g.Get("/", ctrl.ListSince)
	g.Get("/stream", ctrl.Stream)
}
