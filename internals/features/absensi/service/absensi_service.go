package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rajabrawijaya_backend/internals/features/absensi/model"
	helper "rajabrawijaya_backend/internals/helpers"
)

var (
	// Dikembalikan markPresent kalau status sudah Hadir: scan ganda ditolak,
	// bukan diterima diam-diam. Baris yang sudah ada ikut dikembalikan
	// supaya UI bisa menampilkan "sudah absen jam HH:MM".
	ErrAlreadyPresent = errors.New("panitia sudah tercatat hadir")

	ErrAbsensiNotFound = errors.New("data absensi tidak ditemukan")
	ErrStatusInvalid   = errors.New("status absensi tidak dikenal")
)

// AbsensiKey: kunci alami satu baris absensi. RangkaianId nil berarti
// "kegiatan penuh" dan dicocokkan dengan IS NULL, bukan sentinel.
type AbsensiKey struct {
	PanitiaId   uuid.UUID
	KegiatanId  uuid.UUID
	RangkaianId *uuid.UUID
	Tanggal     time.Time
}

type StatusMeta struct {
	Metode     string
	Catatan    *string
	Keterangan *string
	Waktu      *time.Time
}

type AbsensiService struct {
	DB *gorm.DB
}

func NewAbsensiService(db *gorm.DB) *AbsensiService {
	return &AbsensiService{DB: db}
}

func (s *AbsensiService) db(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.DB
}

func (s *AbsensiService) whereKey(q *gorm.DB, k AbsensiKey) *gorm.DB {
	q = q.Where("absensi_panitia_id = ? AND absensi_kegiatan_id = ? AND absensi_tanggal = ?",
		k.PanitiaId, k.KegiatanId, helper.DateOnly(k.Tanggal))
	if k.RangkaianId == nil {
		return q.Where("absensi_rangkaian_id IS NULL")
	}
	return q.Where("absensi_rangkaian_id = ?", *k.RangkaianId)
}

// GetOrCreate: insert-or-fetch di atas constraint unik, BUKAN select-then-insert.
// INSERT .. ON CONFLICT DO NOTHING menyerahkan keputusan race ke index unik
// parsial; kalau insert kalah race, baris pemenang diambil ulang.
// Mengembalikan baris + flag created.
func (s *AbsensiService) GetOrCreate(tx *gorm.DB, k AbsensiKey) (*model.AbsensiModel, bool, error) {
	db := s.db(tx)

	row := model.AbsensiModel{
		AbsensiPanitiaId:   k.PanitiaId,
		AbsensiKegiatanId:  k.KegiatanId,
		AbsensiRangkaianId: k.RangkaianId,
		AbsensiTanggal:     helper.DateOnly(k.Tanggal),
		AbsensiStatus:      model.StatusTidakHadir,
		AbsensiMetode:      model.MetodeManual,
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return &row, true, nil
	}

	var existing model.AbsensiModel
	if err := s.whereKey(db.Model(&model.AbsensiModel{}), k).First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// MarkPresent: jalur scan QR. Guard satu arah: hanya boleh kalau status
// belum Hadir. Guard ditegakkan lewat UPDATE bersyarat sehingga dua scan
// bersamaan hanya satu yang menang.
func (s *AbsensiService) MarkPresent(tx *gorm.DB, k AbsensiKey, metode string) (*model.AbsensiModel, error) {
	db := s.db(tx)

	row, _, err := s.GetOrCreate(db, k)
	if err != nil {
		return nil, err
	}
	if row.AbsensiStatus == model.StatusHadir {
		return row, ErrAlreadyPresent
	}

	now := time.Now()
	res := db.Model(&model.AbsensiModel{}).
		Where("absensi_id = ? AND absensi_status <> ?", row.AbsensiId, model.StatusHadir).
		Updates(map[string]interface{}{
			"absensi_status": model.StatusHadir,
			"absensi_waktu":  now,
			"absensi_metode": metode,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	var updated model.AbsensiModel
	if err := db.Where("absensi_id = ?", row.AbsensiId).First(&updated).Error; err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		// kalah race dari scan lain
		return &updated, ErrAlreadyPresent
	}
	return &updated, nil
}

// SetStatus: koreksi admin, transisi bebas ke empat status manapun.
// Target Hadir tanpa waktu eksplisit distempel sekarang; target selain Hadir
// mengosongkan waktu (invariant: waktu terisi ⇔ Hadir).
func (s *AbsensiService) SetStatus(tx *gorm.DB, absensiID uuid.UUID, status string, meta StatusMeta) (*model.AbsensiModel, string, error) {
	if !model.StatusValid(status) {
		return nil, "", ErrStatusInvalid
	}
	db := s.db(tx)

	var row model.AbsensiModel
	if err := db.Where("absensi_id = ?", absensiID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrAbsensiNotFound
		}
		return nil, "", err
	}
	prevStatus := row.AbsensiStatus

	updates := map[string]interface{}{
		"absensi_status": status,
	}
	if status == model.StatusHadir {
		if meta.Waktu != nil {
			updates["absensi_waktu"] = *meta.Waktu
		} else {
			updates["absensi_waktu"] = time.Now()
		}
	} else {
		updates["absensi_waktu"] = nil
	}
	if meta.Metode != "" {
		updates["absensi_metode"] = meta.Metode
	}
	if meta.Catatan != nil {
		updates["absensi_catatan"] = *meta.Catatan
	}
	if meta.Keterangan != nil {
		updates["absensi_keterangan"] = *meta.Keterangan
	}

	if err := db.Model(&model.AbsensiModel{}).
		Where("absensi_id = ?", absensiID).
		Updates(updates).Error; err != nil {
		return nil, "", err
	}

	var updated model.AbsensiModel
	if err := db.Where("absensi_id = ?", absensiID).First(&updated).Error; err != nil {
		return nil, "", err
	}
	return &updated, prevStatus, nil
}

func (s *AbsensiService) Delete(tx *gorm.DB, absensiID uuid.UUID) (*model.AbsensiModel, error) {
	db := s.db(tx)

	var row model.AbsensiModel
	if err := db.Where("absensi_id = ?", absensiID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAbsensiNotFound
		}
		return nil, err
	}
	if err := db.Delete(&model.AbsensiModel{}, "absensi_id = ?", absensiID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
