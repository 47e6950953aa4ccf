package service

import (
	"log"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/features/events/broker"
	"rajabrawijaya_backend/internals/features/events/model"
)

// EventService menulis log event scan dan meneruskannya ke broker SSE.
// Emit dipanggil SETELAH transaksi mutasi commit, supaya event tidak pernah
// mendahului state yang bisa dibaca klien.
type EventService struct {
	DB     *gorm.DB
	Broker *broker.Broker
}

func NewEventService(db *gorm.DB, b *broker.Broker) *EventService {
	return &EventService{DB: db, Broker: b}
}

func (s *EventService) Emit(evType, entity string, panitiaID, kegiatanID uuid.UUID, snapshot interface{}) {
	payload, err := sonic.Marshal(snapshot)
	if err != nil {
		log.Printf("[EVENT] gagal marshal payload: %v", err)
		payload = []byte("{}")
	}

	ev := model.ScanEventModel{
		EventType:       evType,
		EventEntity:     entity,
		EventPanitiaId:  panitiaID,
		EventKegiatanId: kegiatanID,
		EventPayload:    datatypes.JSON(payload),
	}
	if err := s.DB.Create(&ev).Error; err != nil {
		log.Printf("[EVENT] gagal simpan event: %v", err)
		return
	}
	if s.Broker != nil {
		s.Broker.Publish(ev)
	}
}

// ListSince mengambil event dengan id > afterID (kursor klien polling).
func (s *EventService) ListSince(afterID int64, limit int) ([]model.ScanEventModel, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	var events []model.ScanEventModel
	err := s.DB.
		Where("event_id > ?", afterID).
		Order("event_id ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
