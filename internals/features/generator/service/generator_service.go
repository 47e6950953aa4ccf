package service

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	absensiModel "rajabrawijaya_backend/internals/features/absensi/model"
	kegiatanService "rajabrawijaya_backend/internals/features/kegiatan/service"
	konsumsiModel "rajabrawijaya_backend/internals/features/konsumsi/model"
	panitiaModel "rajabrawijaya_backend/internals/features/panitia/model"
	helper "rajabrawijaya_backend/internals/helpers"
)

type GenerateResult struct {
	AbsensiDibuat    int `json:"absensi_dibuat"`
	AbsensiSudahAda  int `json:"absensi_sudah_ada"`
	KonsumsiDibuat   int `json:"konsumsi_dibuat"`
	KonsumsiSudahAda int `json:"konsumsi_sudah_ada"`
	PanitiaEligible  int `json:"panitia_eligible"`
}

// GeneratorService mem-pra-populasi baris absensi + pasangan konsumsi untuk
// semua panitia eligible pada satu (kegiatan, tanggal, rangkaian?). Tujuannya
// menghindari race pembuatan-malas saat jam sibuk scan, dan supaya listing
// tidak bolong untuk panitia yang belum pernah discan.
//
// Idempoten: baris yang sudah ada dilewati lewat ON CONFLICT DO NOTHING;
// dijalankan dua kali, run kedua tidak membuat baris baru dan tidak menyentuh
// baris lama.
type GeneratorService struct {
	DB          *gorm.DB
	Eligibility *kegiatanService.EligibilityService
}

func NewGeneratorService(db *gorm.DB) *GeneratorService {
	return &GeneratorService{
		DB:          db,
		Eligibility: kegiatanService.NewEligibilityService(db),
	}
}

// EligiblePanitia mengambil panitia aktif yang divisinya lolos allowlist.
func (s *GeneratorService) EligiblePanitia(tx *gorm.DB, kegiatanID uuid.UUID) ([]panitiaModel.PanitiaModel, error) {
	db := tx
	if db == nil {
		db = s.DB
	}
	list, wildcard, err := s.Eligibility.Allowlist(db, kegiatanID)
	if err != nil {
		return nil, err
	}

	q := db.Model(&panitiaModel.PanitiaModel{}).Where("panitia_is_active = ?", true)
	if !wildcard {
		q = q.Where("panitia_divisi IN ?", list)
	}
	var members []panitiaModel.PanitiaModel
	if err := q.Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (s *GeneratorService) Generate(tx *gorm.DB, kegiatanID uuid.UUID, tanggal time.Time, rangkaianID *uuid.UUID) (*GenerateResult, error) {
	db := tx
	if db == nil {
		db = s.DB
	}

	// Validasi kegiatan + rangkaian lewat resolver yang sama dengan jalur scan.
	if _, err := s.Eligibility.Check(db, kegiatanService.AnyDivisi, kegiatanID, rangkaianID); err != nil {
		if _, forbidden := err.(*kegiatanService.ErrDivisiForbidden); !forbidden {
			return nil, err
		}
	}

	members, err := s.EligiblePanitia(db, kegiatanID)
	if err != nil {
		return nil, err
	}

	res := &GenerateResult{PanitiaEligible: len(members)}
	tgl := helper.DateOnly(tanggal)

	if len(members) == 0 {
		return res, nil
	}

	absensiRows := make([]absensiModel.AbsensiModel, 0, len(members))
	konsumsiRows := make([]konsumsiModel.AbsensiKonsumsiModel, 0, len(members)*len(konsumsiModel.SemuaJenis()))
	for _, m := range members {
		absensiRows = append(absensiRows, absensiModel.AbsensiModel{
			AbsensiPanitiaId:   m.PanitiaId,
			AbsensiKegiatanId:  kegiatanID,
			AbsensiRangkaianId: rangkaianID,
			AbsensiTanggal:     tgl,
			AbsensiStatus:      absensiModel.StatusTidakHadir,
			AbsensiMetode:      absensiModel.MetodeManual,
		})
		for _, jenis := range konsumsiModel.SemuaJenis() {
			konsumsiRows = append(konsumsiRows, konsumsiModel.AbsensiKonsumsiModel{
				KonsumsiPanitiaId:         m.PanitiaId,
				KonsumsiKegiatanId:        kegiatanID,
				KonsumsiRangkaianId:      rangkaianID,
				KonsumsiTanggal:           tgl,
				KonsumsiJenis:             jenis,
				KonsumsiStatusPengambilan: konsumsiModel.StatusBelumDiambil,
				KonsumsiMetode:            "Manual",
			})
		}
	}

	r1 := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&absensiRows, 200)
	if r1.Error != nil {
		return nil, r1.Error
	}
	res.AbsensiDibuat = int(r1.RowsAffected)
	res.AbsensiSudahAda = len(absensiRows) - res.AbsensiDibuat

	r2 := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&konsumsiRows, 200)
	if r2.Error != nil {
		return nil, r2.Error
	}
	res.KonsumsiDibuat = int(r2.RowsAffected)
	res.KonsumsiSudahAda = len(konsumsiRows) - res.KonsumsiDibuat

	return res, nil
}
