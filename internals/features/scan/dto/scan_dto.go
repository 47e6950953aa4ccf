package dto

import (
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// Isi QR yang ditempel di kartu panitia. Semua field selain unique_id/nim
// hanya petunjuk tampilan; identitas selalu diresolve ulang dari DB.
type QRPayload struct {
	UniqueId string `json:"unique_id"`
	Nama     string `json:"nama"`
	Nim      string `json:"nim"`
	Divisi   string `json:"divisi"`
	IssuedAt string `json:"issued_at,omitempty"`
}

// ParseQRPayload menolak JSON rusak atau payload tanpa kunci identitas.
func ParseQRPayload(raw string) (*QRPayload, error) {
	var p QRPayload
	if err := sonic.UnmarshalString(raw, &p); err != nil {
		return nil, err
	}
	p.UniqueId = strings.TrimSpace(p.UniqueId)
	p.Nim = strings.TrimSpace(p.Nim)
	return &p, nil
}

func (p *QRPayload) HasIdentity() bool {
	return p.UniqueId != "" || p.Nim != ""
}

type ScanAbsensiRequest struct {
	// Payload mentah hasil scan (string JSON dari QR)
	Payload     string     `json:"payload" validate:"required"`
	KegiatanId  uuid.UUID  `json:"kegiatan_id" validate:"required"`
	RangkaianId *uuid.UUID `json:"rangkaian_id" validate:"omitempty"`
	// Opsional; default tanggal rangkaian / kegiatan / hari ini (WIB)
	Tanggal string `json:"tanggal" validate:"omitempty"`
}

type ScanKonsumsiRequest struct {
	Payload     string     `json:"payload" validate:"required"`
	KegiatanId  uuid.UUID  `json:"kegiatan_id" validate:"required"`
	RangkaianId *uuid.UUID `json:"rangkaian_id" validate:"omitempty"`
	Tanggal     string     `json:"tanggal" validate:"omitempty"`
	Jenis       string     `json:"jenis" validate:"required,oneof=konsumsi_1 konsumsi_2"`
}
