package dto

import (
	"time"

	"github.com/google/uuid"

	"rajabrawijaya_backend/internals/features/konsumsi/model"
)

/* =========================================================
 * REQUESTS
 * ========================================================= */

type LookupKonsumsiRequest struct {
	Nim         string     `json:"nim" validate:"required,max=32"`
	KegiatanId  uuid.UUID  `json:"kegiatan_id" validate:"required"`
	RangkaianId *uuid.UUID `json:"rangkaian_id" validate:"omitempty"`
	Tanggal     string     `json:"tanggal" validate:"required"`
}

// Update pasangan (admin): kedua jenis ditulis dalam satu transaksi.
type UpdatePairRequest struct {
	Nim         string     `json:"nim" validate:"required,max=32"`
	KegiatanId  uuid.UUID  `json:"kegiatan_id" validate:"required"`
	RangkaianId *uuid.UUID `json:"rangkaian_id" validate:"omitempty"`
	Tanggal     string     `json:"tanggal" validate:"required"`

	StatusKonsumsi1 string  `json:"status_konsumsi_1" validate:"required,oneof=belum_diambil sudah_diambil"`
	StatusKonsumsi2 string  `json:"status_konsumsi_2" validate:"required,oneof=belum_diambil sudah_diambil"`
	Petugas         *string `json:"petugas" validate:"omitempty,max=120"`
	Catatan         *string `json:"catatan" validate:"omitempty,max=500"`
}

type BulkResetRequest struct {
	KegiatanId  uuid.UUID  `json:"kegiatan_id" validate:"required"`
	RangkaianId *uuid.UUID `json:"rangkaian_id" validate:"omitempty"`
	Tanggal     string     `json:"tanggal" validate:"required"`
	// kosong = semua jenis
	Jenis string `json:"jenis" validate:"omitempty,oneof=konsumsi_1 konsumsi_2"`
}

type FilterKonsumsiRequest struct {
	KegiatanId  uuid.UUID  `query:"kegiatan_id" validate:"required"`
	RangkaianId *uuid.UUID `query:"rangkaian_id" validate:"omitempty"`
	Tanggal     string     `query:"tanggal" validate:"required"`
	Divisi      *string    `query:"divisi" validate:"omitempty,max=80"`
	Search      *string    `query:"search" validate:"omitempty,max=120"`
}

/* =========================================================
 * RESPONSES
 * ========================================================= */

type KonsumsiResponse struct {
	KonsumsiId  uuid.UUID  `json:"konsumsi_id"`
	PanitiaId   uuid.UUID  `json:"panitia_id"`
	KegiatanId  uuid.UUID  `json:"kegiatan_id"`
	RangkaianId *uuid.UUID `json:"rangkaian_id,omitempty"`
	Tanggal     time.Time  `json:"tanggal"`
	Jenis       string     `json:"jenis"`
	Status      string     `json:"status_pengambilan"`
	Waktu       *time.Time `json:"waktu_pengambilan,omitempty"`
	Metode      string     `json:"metode"`
	Petugas     *string    `json:"petugas,omitempty"`
	Catatan     *string    `json:"catatan,omitempty"`
}

func FromKonsumsiModel(m model.AbsensiKonsumsiModel) KonsumsiResponse {
	return KonsumsiResponse{
		KonsumsiId:  m.KonsumsiId,
		PanitiaId:   m.KonsumsiPanitiaId,
		KegiatanId:  m.KonsumsiKegiatanId,
		RangkaianId: m.KonsumsiRangkaianId,
		Tanggal:     m.KonsumsiTanggal,
		Jenis:       m.KonsumsiJenis,
		Status:      m.KonsumsiStatusPengambilan,
		Waktu:       m.KonsumsiWaktuPengambilan,
		Metode:      m.KonsumsiMetode,
		Petugas:     m.KonsumsiPetugas,
		Catatan:     m.KonsumsiCatatan,
	}
}

// Snapshot pasangan untuk respons lookup/update/scan.
type PairSnapshot struct {
	PanitiaNama  string             `json:"panitia_nama"`
	PanitiaNim   string             `json:"panitia_nim"`
	Divisi       string             `json:"divisi"`
	KegiatanNama string             `json:"kegiatan_nama,omitempty"`
	Pair         []KonsumsiResponse `json:"pair"`
}

func PairFromModels(rows []model.AbsensiKonsumsiModel) []KonsumsiResponse {
	out := make([]KonsumsiResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromKonsumsiModel(r))
	}
	return out
}

// Item list dashboard konsumsi: satu baris per panitia per jenis (join).
type KonsumsiListItem struct {
	KonsumsiId  uuid.UUID  `gorm:"column:konsumsi_id" json:"konsumsi_id"`
	PanitiaId   uuid.UUID  `gorm:"column:konsumsi_panitia_id" json:"panitia_id"`
	NamaLengkap string     `gorm:"column:panitia_nama_lengkap" json:"nama_lengkap"`
	Nim         string     `gorm:"column:panitia_nim" json:"nim"`
	Divisi      string     `gorm:"column:panitia_divisi" json:"divisi"`
	Jenis       string     `gorm:"column:konsumsi_jenis" json:"jenis"`
	Status      string     `gorm:"column:konsumsi_status_pengambilan" json:"status_pengambilan"`
	Waktu       *time.Time `gorm:"column:konsumsi_waktu_pengambilan" json:"waktu_pengambilan,omitempty"`
}
