package dto

import (
	"time"

	"github.com/google/uuid"

	"rajabrawijaya_backend/internals/features/kegiatan/model"
)

/* ===================== REQUEST ===================== */

type CreateKegiatanRequest struct {
	Nama           string   `json:"kegiatan_nama" validate:"required,min=3,max=160"`
	JenisRangkaian string   `json:"kegiatan_jenis_rangkaian" validate:"required,oneof=single multiple"`
	Tanggal        *string  `json:"kegiatan_tanggal" validate:"omitempty"`
	Divisi         []string `json:"kegiatan_divisi" validate:"omitempty,dive,min=1"`
}

type UpdateKegiatanRequest struct {
	Nama           *string  `json:"kegiatan_nama" validate:"omitempty,min=3,max=160"`
	JenisRangkaian *string  `json:"kegiatan_jenis_rangkaian" validate:"omitempty,oneof=single multiple"`
	Tanggal        *string  `json:"kegiatan_tanggal" validate:"omitempty"`
	IsActive       *bool    `json:"kegiatan_is_active" validate:"omitempty"`
	Divisi         []string `json:"kegiatan_divisi" validate:"omitempty,dive,min=1"`
}

type CreateRangkaianRequest struct {
	Judul   string `json:"rangkaian_judul" validate:"required,min=3,max=160"`
	Tanggal string `json:"rangkaian_tanggal" validate:"required"`
	Urutan  int    `json:"rangkaian_urutan" validate:"omitempty,min=0"`
}

type UpdateRangkaianRequest struct {
	Judul   *string `json:"rangkaian_judul" validate:"omitempty,min=3,max=160"`
	Tanggal *string `json:"rangkaian_tanggal" validate:"omitempty"`
	Urutan  *int    `json:"rangkaian_urutan" validate:"omitempty,min=0"`
}

/* ===================== RESPONSE ===================== */

type KegiatanResponse struct {
	KegiatanId     uuid.UUID           `json:"kegiatan_id"`
	Nama           string              `json:"kegiatan_nama"`
	JenisRangkaian string              `json:"kegiatan_jenis_rangkaian"`
	Tanggal        *time.Time          `json:"kegiatan_tanggal"`
	IsActive       bool                `json:"kegiatan_is_active"`
	Divisi         []string            `json:"kegiatan_divisi"`
	Rangkaian      []RangkaianResponse `json:"kegiatan_rangkaian,omitempty"`
	CreatedAt      time.Time           `json:"kegiatan_created_at"`
}

type RangkaianResponse struct {
	RangkaianId uuid.UUID `json:"rangkaian_id"`
	Judul       string    `json:"rangkaian_judul"`
	Tanggal     time.Time `json:"rangkaian_tanggal"`
	Urutan      int       `json:"rangkaian_urutan"`
}

func FromKegiatanModel(m *model.KegiatanModel, divisi []model.KegiatanDivisiModel, rangkaian []model.KegiatanRangkaianModel) KegiatanResponse {
	resp := KegiatanResponse{
		KegiatanId:     m.KegiatanId,
		Nama:           m.KegiatanNama,
		JenisRangkaian: m.KegiatanJenisRangkaian,
		Tanggal:        m.KegiatanTanggal,
		IsActive:       m.KegiatanIsActive,
		Divisi:         make([]string, 0, len(divisi)),
		CreatedAt:      m.KegiatanCreatedAt,
	}
	for _, d := range divisi {
		resp.Divisi = append(resp.Divisi, d.KegiatanDivisiNama)
	}
	for i := range rangkaian {
		resp.Rangkaian = append(resp.Rangkaian, FromRangkaianModel(&rangkaian[i]))
	}
	return resp
}

func FromRangkaianModel(m *model.KegiatanRangkaianModel) RangkaianResponse {
	return RangkaianResponse{
		RangkaianId: m.RangkaianId,
		Judul:       m.RangkaianJudul,
		Tanggal:     m.RangkaianTanggal,
		Urutan:      m.RangkaianUrutan,
	}
}
