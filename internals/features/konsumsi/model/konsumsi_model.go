package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	JenisKonsumsi1 = "konsumsi_1"
	JenisKonsumsi2 = "konsumsi_2"

	StatusBelumDiambil = "belum_diambil"
	StatusSudahDiambil = "sudah_diambil"
)

// JenisOrdinal memberi urutan tahap pengambilan. Aturan antrian:
// tahap i hanya boleh diambil setelah semua tahap < i selesai.
// Kalau suatu saat ada konsumsi_3, cukup tambah di map ini.
var JenisOrdinal = map[string]int{
	JenisKonsumsi1: 1,
	JenisKonsumsi2: 2,
}

func JenisValid(j string) bool {
	_, ok := JenisOrdinal[j]
	return ok
}

// SemuaJenis urut berdasarkan ordinal.
func SemuaJenis() []string {
	return []string{JenisKonsumsi1, JenisKonsumsi2}
}

// Satu baris per (panitia, kegiatan, rangkaian-or-null, tanggal, jenis).
// Baris selalu dibuat berpasangan (semua jenis sekaligus), di-update per jenis.
type AbsensiKonsumsiModel struct {
	KonsumsiId uuid.UUID `gorm:"type:uuid;primaryKey;column:konsumsi_id" json:"konsumsi_id"`

	KonsumsiPanitiaId   uuid.UUID  `gorm:"type:uuid;not null;index;column:konsumsi_panitia_id" json:"konsumsi_panitia_id"`
	KonsumsiKegiatanId  uuid.UUID  `gorm:"type:uuid;not null;index;column:konsumsi_kegiatan_id" json:"konsumsi_kegiatan_id"`
	KonsumsiRangkaianId *uuid.UUID `gorm:"type:uuid;index;column:konsumsi_rangkaian_id" json:"konsumsi_rangkaian_id,omitempty"`
	KonsumsiTanggal     time.Time  `gorm:"type:date;not null;column:konsumsi_tanggal" json:"konsumsi_tanggal"`
	KonsumsiJenis       string     `gorm:"size:16;not null;column:konsumsi_jenis" json:"konsumsi_jenis"`

	KonsumsiStatusPengambilan string     `gorm:"size:16;not null;default:belum_diambil;column:konsumsi_status_pengambilan" json:"konsumsi_status_pengambilan"`
	KonsumsiWaktuPengambilan  *time.Time `gorm:"column:konsumsi_waktu_pengambilan" json:"konsumsi_waktu_pengambilan,omitempty"`

	KonsumsiMetode  string  `gorm:"size:16;not null;default:Manual;column:konsumsi_metode" json:"konsumsi_metode"`
	KonsumsiPetugas *string `gorm:"size:120;column:konsumsi_petugas" json:"konsumsi_petugas,omitempty"`
	KonsumsiCatatan *string `gorm:"column:konsumsi_catatan" json:"konsumsi_catatan,omitempty"`

	KonsumsiCreatedAt time.Time  `gorm:"column:konsumsi_created_at;autoCreateTime" json:"konsumsi_created_at"`
	KonsumsiUpdatedAt *time.Time `gorm:"column:konsumsi_updated_at;autoUpdateTime" json:"konsumsi_updated_at,omitempty"`
}

func (AbsensiKonsumsiModel) TableName() string { return "absensi_konsumsi" }

func (m *AbsensiKonsumsiModel) BeforeCreate(tx *gorm.DB) error {
	if m.KonsumsiId == uuid.Nil {
		m.KonsumsiId = uuid.New()
	}
	return nil
}
