package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PanitiaModel struct {
	PanitiaId uuid.UUID `gorm:"type:uuid;primaryKey;column:panitia_id" json:"panitia_id"`

	// unique_id dibagikan keluar (isi payload QR); id internal tidak pernah keluar.
	PanitiaUniqueId string `gorm:"size:32;not null;uniqueIndex;column:panitia_unique_id" json:"panitia_unique_id"`

	PanitiaNim         string `gorm:"size:32;not null;uniqueIndex;column:panitia_nim"  json:"panitia_nim"`
	PanitiaNamaLengkap string `gorm:"size:120;not null;column:panitia_nama_lengkap"    json:"panitia_nama_lengkap"`
	PanitiaDivisi      string `gorm:"size:80;not null;index;column:panitia_divisi"     json:"panitia_divisi"`
	PanitiaIsActive    bool   `gorm:"not null;default:true;column:panitia_is_active"   json:"panitia_is_active"`

	// Payload JSON mentah yang di-encode ke QR, disimpan untuk regenerasi PNG.
	PanitiaQrPayload datatypes.JSON `gorm:"column:panitia_qr_payload" json:"panitia_qr_payload,omitempty"`

	PanitiaCreatedAt time.Time  `gorm:"column:panitia_created_at;autoCreateTime" json:"panitia_created_at"`
	PanitiaUpdatedAt *time.Time `gorm:"column:panitia_updated_at;autoUpdateTime" json:"panitia_updated_at,omitempty"`
}

func (PanitiaModel) TableName() string { return "panitia_peserta" }

func (m *PanitiaModel) BeforeCreate(tx *gorm.DB) error {
	if m.PanitiaId == uuid.Nil {
		m.PanitiaId = uuid.New()
	}
	return nil
}
