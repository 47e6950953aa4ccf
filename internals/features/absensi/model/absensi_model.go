package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusHadir      = "Hadir"
	StatusTidakHadir = "Tidak Hadir"
	StatusIzin       = "Izin"
	StatusSakit      = "Sakit"

	MetodeQRCode = "QR Code"
	MetodeManual = "Manual"
)

func StatusValid(s string) bool {
	switch s {
	case StatusHadir, StatusTidakHadir, StatusIzin, StatusSakit:
		return true
	}
	return false
}

// Satu baris per (panitia, kegiatan, rangkaian-or-null, tanggal).
// Keunikan kunci ditegakkan oleh index unik parsial (lihat databases.Migrate).
// Invariant: absensi_waktu terisi ⇔ status = Hadir.
type AbsensiModel struct {
	AbsensiId uuid.UUID `gorm:"type:uuid;primaryKey;column:absensi_id" json:"absensi_id"`

	AbsensiPanitiaId   uuid.UUID  `gorm:"type:uuid;not null;index;column:absensi_panitia_id" json:"absensi_panitia_id"`
	AbsensiKegiatanId  uuid.UUID  `gorm:"type:uuid;not null;index;column:absensi_kegiatan_id" json:"absensi_kegiatan_id"`
	AbsensiRangkaianId *uuid.UUID `gorm:"type:uuid;index;column:absensi_rangkaian_id" json:"absensi_rangkaian_id,omitempty"`
	AbsensiTanggal     time.Time  `gorm:"type:date;not null;column:absensi_tanggal" json:"absensi_tanggal"`

	AbsensiStatus string     `gorm:"size:16;not null;default:'Tidak Hadir';column:absensi_status" json:"absensi_status"`
	AbsensiWaktu  *time.Time `gorm:"column:absensi_waktu" json:"absensi_waktu,omitempty"`
	AbsensiMetode string     `gorm:"size:16;not null;default:Manual;column:absensi_metode" json:"absensi_metode"`

	AbsensiCatatan    *string  `gorm:"column:absensi_catatan" json:"absensi_catatan,omitempty"`
	AbsensiKeterangan *string  `gorm:"column:absensi_keterangan" json:"absensi_keterangan,omitempty"`
	AbsensiLatitude   *float64 `gorm:"column:absensi_latitude" json:"absensi_latitude,omitempty"`
	AbsensiLongitude  *float64 `gorm:"column:absensi_longitude" json:"absensi_longitude,omitempty"`

	AbsensiCreatedAt time.Time  `gorm:"column:absensi_created_at;autoCreateTime" json:"absensi_created_at"`
	AbsensiUpdatedAt *time.Time `gorm:"column:absensi_updated_at;autoUpdateTime" json:"absensi_updated_at,omitempty"`
}

func (AbsensiModel) TableName() string { return "absensi" }

func (m *AbsensiModel) BeforeCreate(tx *gorm.DB) error {
	if m.AbsensiId == uuid.Nil {
		m.AbsensiId = uuid.New()
	}
	return nil
}
