package service

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rajabrawijaya_backend/internals/features/konsumsi/model"
	helper "rajabrawijaya_backend/internals/helpers"
)

var (
	ErrAlreadyTaken     = errors.New("konsumsi sudah diambil")
	ErrSequencing       = errors.New("konsumsi tahap sebelumnya belum diambil")
	ErrJenisInvalid     = errors.New("jenis konsumsi tidak dikenal")
	ErrStatusInvalid    = errors.New("status pengambilan tidak dikenal")
	ErrKonsumsiNotFound = errors.New("data konsumsi tidak ditemukan")
)

type KonsumsiKey struct {
	PanitiaId   uuid.UUID
	KegiatanId  uuid.UUID
	RangkaianId *uuid.UUID
	Tanggal     time.Time
}

type PengambilanMeta struct {
	Metode  string
	Petugas *string
	Catatan *string
}

type KonsumsiService struct {
	DB *gorm.DB
}

func NewKonsumsiService(db *gorm.DB) *KonsumsiService {
	return &KonsumsiService{DB: db}
}

func (s *KonsumsiService) db(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.DB
}

func (s *KonsumsiService) whereKey(q *gorm.DB, k KonsumsiKey) *gorm.DB {
	q = q.Where("konsumsi_panitia_id = ? AND konsumsi_kegiatan_id = ? AND konsumsi_tanggal = ?",
		k.PanitiaId, k.KegiatanId, helper.DateOnly(k.Tanggal))
	if k.RangkaianId == nil {
		return q.Where("konsumsi_rangkaian_id IS NULL")
	}
	return q.Where("konsumsi_rangkaian_id = ?", *k.RangkaianId)
}

// GetOrCreatePair memastikan SEMUA jenis konsumsi ada untuk kunci ini
// (baris dibuat berpasangan, tidak pernah satu saja). Insert-or-fetch via
// ON CONFLICT DO NOTHING; hasil diurutkan berdasarkan ordinal jenis.
func (s *KonsumsiService) GetOrCreatePair(tx *gorm.DB, k KonsumsiKey) ([]model.AbsensiKonsumsiModel, int, error) {
	db := s.db(tx)
	created := 0

	for _, jenis := range model.SemuaJenis() {
		row := model.AbsensiKonsumsiModel{
			KonsumsiPanitiaId:         k.PanitiaId,
			KonsumsiKegiatanId:        k.KegiatanId,
			KonsumsiRangkaianId:       k.RangkaianId,
			KonsumsiTanggal:           helper.DateOnly(k.Tanggal),
			KonsumsiJenis:             jenis,
			KonsumsiStatusPengambilan: model.StatusBelumDiambil,
			KonsumsiMetode:            "Manual",
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return nil, 0, res.Error
		}
		created += int(res.RowsAffected)
	}

	rows, err := s.fetchPair(db, k)
	if err != nil {
		return nil, 0, err
	}
	return rows, created, nil
}

func (s *KonsumsiService) fetchPair(db *gorm.DB, k KonsumsiKey) ([]model.AbsensiKonsumsiModel, error) {
	var rows []model.AbsensiKonsumsiModel
	if err := s.whereKey(db.Model(&model.AbsensiKonsumsiModel{}), k).Find(&rows).Error; err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool {
		return model.JenisOrdinal[rows[i].KonsumsiJenis] < model.JenisOrdinal[rows[j].KonsumsiJenis]
	})
	return rows, nil
}

// MarkTaken: jalur scan konsumsi. Urutan validasi:
//  1. semua tahap dengan ordinal lebih kecil harus sudah_diambil (antrian
//     distribusi fisik satu jalur, tahap 2 tidak boleh melompati tahap 1);
//  2. tahap target belum boleh sudah_diambil (scan ganda ditolak);
//  3. baru update status + stempel waktu, lewat UPDATE bersyarat.
func (s *KonsumsiService) MarkTaken(tx *gorm.DB, k KonsumsiKey, jenis string, meta PengambilanMeta) (*model.AbsensiKonsumsiModel, error) {
	if !model.JenisValid(jenis) {
		return nil, ErrJenisInvalid
	}
	db := s.db(tx)

	rows, _, err := s.GetOrCreatePair(db, k)
	if err != nil {
		return nil, err
	}

	targetOrd := model.JenisOrdinal[jenis]
	var target *model.AbsensiKonsumsiModel
	for i := range rows {
		ord := model.JenisOrdinal[rows[i].KonsumsiJenis]
		if ord < targetOrd && rows[i].KonsumsiStatusPengambilan != model.StatusSudahDiambil {
			return &rows[i], ErrSequencing
		}
		if ord == targetOrd {
			target = &rows[i]
		}
	}
	if target == nil {
		return nil, ErrKonsumsiNotFound
	}
	if target.KonsumsiStatusPengambilan == model.StatusSudahDiambil {
		return target, ErrAlreadyTaken
	}

	now := time.Now()
	updates := map[string]interface{}{
		"konsumsi_status_pengambilan": model.StatusSudahDiambil,
		"konsumsi_waktu_pengambilan":  now,
	}
	if meta.Metode != "" {
		updates["konsumsi_metode"] = meta.Metode
	}
	if meta.Petugas != nil {
		updates["konsumsi_petugas"] = *meta.Petugas
	}
	if meta.Catatan != nil {
		updates["konsumsi_catatan"] = *meta.Catatan
	}

	res := db.Model(&model.AbsensiKonsumsiModel{}).
		Where("konsumsi_id = ? AND konsumsi_status_pengambilan <> ?", target.KonsumsiId, model.StatusSudahDiambil).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}

	var updated model.AbsensiKonsumsiModel
	if err := db.Where("konsumsi_id = ?", target.KonsumsiId).First(&updated).Error; err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return &updated, ErrAlreadyTaken
	}
	return &updated, nil
}

// SetStatusPair: override admin untuk KEDUA jenis sekaligus, all-or-nothing.
// Dua baris ditulis dalam satu transaksi; kalau salah satu baris tidak ada,
// seluruh edit dibatalkan supaya pasangan tidak pernah setengah ter-update.
func (s *KonsumsiService) SetStatusPair(tx *gorm.DB, k KonsumsiKey, statuses map[string]string, meta PengambilanMeta) ([]model.AbsensiKonsumsiModel, error) {
	for jenis, status := range statuses {
		if !model.JenisValid(jenis) {
			return nil, ErrJenisInvalid
		}
		if status != model.StatusBelumDiambil && status != model.StatusSudahDiambil {
			return nil, ErrStatusInvalid
		}
	}

	run := func(db *gorm.DB) error {
		now := time.Now()
		for _, jenis := range model.SemuaJenis() {
			status, ok := statuses[jenis]
			if !ok {
				continue
			}
			updates := map[string]interface{}{
				"konsumsi_status_pengambilan": status,
			}
			if status == model.StatusSudahDiambil {
				updates["konsumsi_waktu_pengambilan"] = now
			} else {
				updates["konsumsi_waktu_pengambilan"] = nil
			}
			if meta.Metode != "" {
				updates["konsumsi_metode"] = meta.Metode
			}
			if meta.Petugas != nil {
				updates["konsumsi_petugas"] = *meta.Petugas
			}
			if meta.Catatan != nil {
				updates["konsumsi_catatan"] = *meta.Catatan
			}

			res := s.whereKey(db.Model(&model.AbsensiKonsumsiModel{}), k).
				Where("konsumsi_jenis = ?", jenis).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrKonsumsiNotFound
			}
		}
		return nil
	}

	var err error
	if tx != nil {
		// caller sudah memegang transaksi
		err = run(tx)
	} else {
		err = s.DB.Transaction(run)
	}
	if err != nil {
		return nil, err
	}
	return s.fetchPair(s.db(tx), k)
}

// BulkReset mengembalikan baris yang cocok ke belum_diambil dan
// mengosongkan stempel waktu. jenis kosong berarti semua jenis.
func (s *KonsumsiService) BulkReset(tx *gorm.DB, kegiatanID uuid.UUID, tanggal time.Time, rangkaianID *uuid.UUID, jenis string) (int64, error) {
	if jenis != "" && !model.JenisValid(jenis) {
		return 0, ErrJenisInvalid
	}
	db := s.db(tx)

	q := db.Model(&model.AbsensiKonsumsiModel{}).
		Where("konsumsi_kegiatan_id = ? AND konsumsi_tanggal = ?", kegiatanID, helper.DateOnly(tanggal))
	if rangkaianID == nil {
		q = q.Where("konsumsi_rangkaian_id IS NULL")
	} else {
		q = q.Where("konsumsi_rangkaian_id = ?", *rangkaianID)
	}
	if jenis != "" {
		q = q.Where("konsumsi_jenis = ?", jenis)
	}

	res := q.Updates(map[string]interface{}{
		"konsumsi_status_pengambilan": model.StatusBelumDiambil,
		"konsumsi_waktu_pengambilan":  nil,
	})
	return res.RowsAffected, res.Error
}
