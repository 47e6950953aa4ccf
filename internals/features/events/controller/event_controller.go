package controller

import (
	"bufio"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/features/events/broker"
	"rajabrawijaya_backend/internals/features/events/service"
	helper "rajabrawijaya_backend/internals/helpers"
)

type EventController struct {
	DB      *gorm.DB
	Service *service.EventService
	Broker  *broker.Broker
}

func NewEventController(db *gorm.DB, b *broker.Broker) *EventController {
	return &EventController{
		DB:      db,
		Service: service.NewEventService(db, b),
		Broker:  b,
	}
}

/* ===================== POLLING SINCE-ID ===================== */
// GET /events?after_id=N&limit=M
// Jalur rekonsiliasi: klien yang baru reconnect menyusul event yang terlewat.
func (ctrl *EventController) ListSince(c *fiber.Ctx) error {
	afterID, _ := strconv.ParseInt(c.Query("after_id", "0"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit", "200"))

	events, err := ctrl.Service.ListSince(afterID, limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membaca event")
	}

	lastID := afterID
	if len(events) > 0 {
		lastID = events[len(events)-1].EventId
	}
	return helper.JsonOK(c, "Event scan", fiber.Map{
		"events":  events,
		"last_id": lastID,
	})
}

/* ===================== SSE STREAM ===================== */
// GET /events/stream
// Kanal push utama. Format: "id: <event_id>\ndata: <json>\n\n";
// heartbeat komentar tiap 15 detik supaya proxy tidak memutus koneksi idle.
func (ctrl *EventController) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	sub := ctrl.Broker.Subscribe()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer ctrl.Broker.Unsubscribe(sub)

		heartbeat := time.NewTicker(15 * time.Second)
		defer heartbeat.Stop()

		for {
			select {
			case ev, ok := <-sub.Ch:
				if !ok {
					return
				}
				data, err := sonic.Marshal(ev)
				if err != nil {
					log.Printf("[SSE] marshal err: %v", err)
					continue
				}
				if _, err := fmt.Fprintf(w, "id: %d\ndata: %s\n\n", ev.EventId, data); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					// klien menutup koneksi
					return
				}
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
	return nil
}
