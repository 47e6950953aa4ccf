package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"rajabrawijaya_backend/internals/features/panitia/model"
)

/* ===================== REQUEST ===================== */

type CreatePanitiaRequest struct {
	NamaLengkap string `json:"panitia_nama_lengkap" validate:"required,min=3,max=120"`
	Nim         string `json:"panitia_nim" validate:"required,min=3,max=32"`
	Divisi      string `json:"panitia_divisi" validate:"required,min=2,max=80"`
}

type UpdatePanitiaRequest struct {
	NamaLengkap *string `json:"panitia_nama_lengkap" validate:"omitempty,min=3,max=120"`
	Divisi      *string `json:"panitia_divisi" validate:"omitempty,min=2,max=80"`
	IsActive    *bool   `json:"panitia_is_active" validate:"omitempty"`
}

/* ===================== RESPONSE ===================== */

type PanitiaResponse struct {
	PanitiaId   uuid.UUID      `json:"panitia_id"`
	UniqueId    string         `json:"panitia_unique_id"`
	NamaLengkap string         `json:"panitia_nama_lengkap"`
	Nim         string         `json:"panitia_nim"`
	Divisi      string         `json:"panitia_divisi"`
	IsActive    bool           `json:"panitia_is_active"`
	QrPayload   datatypes.JSON `json:"panitia_qr_payload,omitempty"`
	CreatedAt   time.Time      `json:"panitia_created_at"`
}

func FromPanitiaModel(m *model.PanitiaModel) PanitiaResponse {
	return PanitiaResponse{
		PanitiaId:   m.PanitiaId,
		UniqueId:    m.PanitiaUniqueId,
		NamaLengkap: m.PanitiaNamaLengkap,
		Nim:         m.PanitiaNim,
		Divisi:      m.PanitiaDivisi,
		IsActive:    m.PanitiaIsActive,
		QrPayload:   m.PanitiaQrPayload,
		CreatedAt:   m.PanitiaCreatedAt,
	}
}

/* ===================== CSV IMPORT ===================== */

// Satu baris gagal tidak membatalkan baris lain; pelapor per baris.
type ImportRowError struct {
	Baris int    `json:"baris"`
	Pesan string `json:"pesan"`
}

type ImportResult struct {
	Dibuat    int              `json:"dibuat"`
	Dilewati  int              `json:"dilewati"`
	Gagal     int              `json:"gagal"`
	Kesalahan []ImportRowError `json:"kesalahan,omitempty"`
}
