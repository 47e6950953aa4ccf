package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	JenisRangkaianSingle   = "single"
	JenisRangkaianMultiple = "multiple"

	// Penanda wildcard di allowlist divisi: semua divisi boleh ikut.
	DivisiSemua = "Semua"
)

type KegiatanModel struct {
	KegiatanId             uuid.UUID `gorm:"type:uuid;primaryKey;column:kegiatan_id" json:"kegiatan_id"`
	KegiatanNama           string    `gorm:"size:160;not null;column:kegiatan_nama" json:"kegiatan_nama"`
	KegiatanJenisRangkaian string    `gorm:"size:16;not null;default:single;column:kegiatan_jenis_rangkaian" json:"kegiatan_jenis_rangkaian"`
	KegiatanTanggal        *time.Time `gorm:"type:date;column:kegiatan_tanggal" json:"kegiatan_tanggal,omitempty"`
	KegiatanIsActive       bool      `gorm:"not null;default:true;column:kegiatan_is_active" json:"kegiatan_is_active"`

	KegiatanCreatedAt time.Time  `gorm:"column:kegiatan_created_at;autoCreateTime" json:"kegiatan_created_at"`
	KegiatanUpdatedAt *time.Time `gorm:"column:kegiatan_updated_at;autoUpdateTime" json:"kegiatan_updated_at,omitempty"`

	KegiatanDivisi    []KegiatanDivisiModel    `gorm:"foreignKey:KegiatanDivisiKegiatanId;references:KegiatanId" json:"kegiatan_divisi,omitempty"`
	KegiatanRangkaian []KegiatanRangkaianModel `gorm:"foreignKey:RangkaianKegiatanId;references:KegiatanId" json:"kegiatan_rangkaian,omitempty"`
}

func (KegiatanModel) TableName() string { return "kegiatan" }

func (m *KegiatanModel) BeforeCreate(tx *gorm.DB) error {
	if m.KegiatanId == uuid.Nil {
		m.KegiatanId = uuid.New()
	}
	return nil
}

// Allowlist divisi per kegiatan. Satu baris per divisi, atau satu baris
// wildcard "Semua".
type KegiatanDivisiModel struct {
	KegiatanDivisiId         uuid.UUID `gorm:"type:uuid;primaryKey;column:kegiatan_divisi_id" json:"kegiatan_divisi_id"`
	KegiatanDivisiKegiatanId uuid.UUID `gorm:"type:uuid;not null;index;column:kegiatan_divisi_kegiatan_id" json:"kegiatan_divisi_kegiatan_id"`
	KegiatanDivisiNama       string    `gorm:"size:80;not null;column:kegiatan_divisi_nama" json:"kegiatan_divisi_nama"`
	KegiatanDivisiIsWajib    bool      `gorm:"not null;default:false;column:kegiatan_divisi_is_wajib" json:"kegiatan_divisi_is_wajib"`
	KegiatanDivisiIsActive   bool      `gorm:"not null;default:true;column:kegiatan_divisi_is_active" json:"kegiatan_divisi_is_active"`

	KegiatanDivisiCreatedAt time.Time `gorm:"column:kegiatan_divisi_created_at;autoCreateTime" json:"kegiatan_divisi_created_at"`
}

func (KegiatanDivisiModel) TableName() string { return "kegiatan_divisi" }

func (m *KegiatanDivisiModel) BeforeCreate(tx *gorm.DB) error {
	if m.KegiatanDivisiId == uuid.Nil {
		m.KegiatanDivisiId = uuid.New()
	}
	return nil
}

// Sub-acara (hari) untuk kegiatan ber-jenis multiple.
type KegiatanRangkaianModel struct {
	RangkaianId         uuid.UUID `gorm:"type:uuid;primaryKey;column:rangkaian_id" json:"rangkaian_id"`
	RangkaianKegiatanId uuid.UUID `gorm:"type:uuid;not null;index;column:rangkaian_kegiatan_id" json:"rangkaian_kegiatan_id"`
	RangkaianJudul      string    `gorm:"size:160;not null;column:rangkaian_judul" json:"rangkaian_judul"`
	RangkaianTanggal    time.Time `gorm:"type:date;not null;column:rangkaian_tanggal" json:"rangkaian_tanggal"`
	RangkaianUrutan     int       `gorm:"not null;default:0;column:rangkaian_urutan" json:"rangkaian_urutan"`
	RangkaianIsActive   bool      `gorm:"not null;default:true;column:rangkaian_is_active" json:"rangkaian_is_active"`

	RangkaianCreatedAt time.Time `gorm:"column:rangkaian_created_at;autoCreateTime" json:"rangkaian_created_at"`
}

func (KegiatanRangkaianModel) TableName() string { return "kegiatan_rangkaian" }

func (m *KegiatanRangkaianModel) BeforeCreate(tx *gorm.DB) error {
	if m.RangkaianId == uuid.Nil {
		m.RangkaianId = uuid.New()
	}
	return nil
}
