package dto

import (
	"time"

	"github.com/google/uuid"

	"rajabrawijaya_backend/internals/features/absensi/model"
)

/* =========================================================
 * REQUESTS
 * ========================================================= */

// Lookup/create: kunci manusiawi (nim) + kunci kegiatan.
type LookupAbsensiRequest struct {
	Nim         string     `json:"nim" validate:"required,max=32"`
	KegiatanId  uuid.UUID  `json:"kegiatan_id" validate:"required"`
	RangkaianId *uuid.UUID `json:"rangkaian_id" validate:"omitempty"`
	Tanggal     string     `json:"tanggal" validate:"required"` // YYYY-MM-DD
}

// Update (partial, admin)
type UpdateAbsensiRequest struct {
	Status     string     `json:"status" validate:"required,oneof=Hadir 'Tidak Hadir' Izin Sakit"`
	Metode     *string    `json:"metode" validate:"omitempty,max=16"`
	Catatan    *string    `json:"catatan" validate:"omitempty,max=500"`
	Keterangan *string    `json:"keterangan" validate:"omitempty,max=500"`
	Waktu      *time.Time `json:"waktu" validate:"omitempty"`
}

// Filter / List (query)
type FilterAbsensiRequest struct {
	KegiatanId  uuid.UUID  `query:"kegiatan_id" validate:"required"`
	RangkaianId *uuid.UUID `query:"rangkaian_id" validate:"omitempty"`
	Tanggal     string     `query:"tanggal" validate:"required"`
	Status      *string    `query:"status" validate:"omitempty,oneof=Hadir 'Tidak Hadir' Izin Sakit"`
	Divisi      *string    `query:"divisi" validate:"omitempty,max=80"`
	Search      *string    `query:"search" validate:"omitempty,max=120"`
}

/* =========================================================
 * RESPONSES
 * ========================================================= */

type AbsensiResponse struct {
	AbsensiId   uuid.UUID  `json:"absensi_id"`
	PanitiaId   uuid.UUID  `json:"panitia_id"`
	KegiatanId  uuid.UUID  `json:"kegiatan_id"`
	RangkaianId *uuid.UUID `json:"rangkaian_id,omitempty"`
	Tanggal     time.Time  `json:"tanggal"`
	Status      string     `json:"status"`
	Waktu       *time.Time `json:"waktu,omitempty"`
	Metode      string     `json:"metode"`
	Catatan     *string    `json:"catatan,omitempty"`
	Keterangan  *string    `json:"keterangan,omitempty"`
}

func FromAbsensiModel(m model.AbsensiModel) AbsensiResponse {
	return AbsensiResponse{
		AbsensiId:   m.AbsensiId,
		PanitiaId:   m.AbsensiPanitiaId,
		KegiatanId:  m.AbsensiKegiatanId,
		RangkaianId: m.AbsensiRangkaianId,
		Tanggal:     m.AbsensiTanggal,
		Status:      m.AbsensiStatus,
		Waktu:       m.AbsensiWaktu,
		Metode:      m.AbsensiMetode,
		Catatan:     m.AbsensiCatatan,
		Keterangan:  m.AbsensiKeterangan,
	}
}

// Item list dashboard: baris absensi + konteks panitia (hasil join).
type AbsensiListItem struct {
	AbsensiId   uuid.UUID  `gorm:"column:absensi_id" json:"absensi_id"`
	PanitiaId   uuid.UUID  `gorm:"column:absensi_panitia_id" json:"panitia_id"`
	NamaLengkap string     `gorm:"column:panitia_nama_lengkap" json:"nama_lengkap"`
	Nim         string     `gorm:"column:panitia_nim" json:"nim"`
	Divisi      string     `gorm:"column:panitia_divisi" json:"divisi"`
	Status      string     `gorm:"column:absensi_status" json:"status"`
	Waktu       *time.Time `gorm:"column:absensi_waktu" json:"waktu,omitempty"`
	Metode      string     `gorm:"column:absensi_metode" json:"metode"`
	Tanggal     time.Time  `gorm:"column:absensi_tanggal" json:"tanggal"`
}

// Snapshot gabungan untuk hasil scan / update: baris + konteks tampilan.
type AbsensiSnapshot struct {
	Absensi      AbsensiResponse `json:"absensi"`
	PanitiaNama  string          `json:"panitia_nama"`
	PanitiaNim   string          `json:"panitia_nim"`
	Divisi       string          `json:"divisi"`
	KegiatanNama string          `json:"kegiatan_nama"`
	StatusLama   *string         `json:"status_sebelumnya,omitempty"`
}

type RekapAbsensi struct {
	Hadir      int64 `json:"hadir"`
	TidakHadir int64 `json:"tidak_hadir"`
	Izin       int64 `json:"izin"`
	Sakit      int64 `json:"sakit"`
	Total      int64 `json:"total"`
}
