package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"

	EntityAbsensi  = "absensi"
	EntityKonsumsi = "konsumsi"
)

// Log event append-only. Id auto-increment dipakai klien dashboard sebagai
// kursor "sejak event terakhir yang saya lihat".
type ScanEventModel struct {
	EventId         int64          `gorm:"primaryKey;autoIncrement;column:event_id" json:"event_id"`
	EventType       string         `gorm:"size:16;not null;column:event_type" json:"event_type"`
	EventEntity     string         `gorm:"size:16;not null;column:event_entity" json:"event_entity"`
	EventPanitiaId  uuid.UUID      `gorm:"type:uuid;not null;index;column:event_panitia_id" json:"event_panitia_id"`
	EventKegiatanId uuid.UUID      `gorm:"type:uuid;not null;index;column:event_kegiatan_id" json:"event_kegiatan_id"`
	EventPayload    datatypes.JSON `gorm:"column:event_payload" json:"event_payload"`
	EventCreatedAt  time.Time      `gorm:"column:event_created_at;autoCreateTime;index" json:"event_created_at"`
}

func (ScanEventModel) TableName() string { return "scan_events" }
