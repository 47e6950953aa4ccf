package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/features/kegiatan/model"
)

var (
	ErrKegiatanNotFound  = errors.New("kegiatan tidak ditemukan atau tidak aktif")
	ErrRangkaianNotFound = errors.New("rangkaian tidak ditemukan atau tidak aktif")
)

// AnyDivisi dipakai pemanggil yang cuma butuh validasi kegiatan/rangkaian
// dan menangani sendiri hasil penolakan divisi (mis. bulk generator).
const AnyDivisi = ""

// ErrDivisiForbidden membawa allowlist supaya pesan penolakan bisa menyebutkan
// divisi mana saja yang diizinkan.
type ErrDivisiForbidden struct {
	Divisi    string
	Allowlist []string
}

func (e *ErrDivisiForbidden) Error() string {
	return fmt.Sprintf("divisi %q tidak diizinkan ikut kegiatan ini (diizinkan: %s)",
		e.Divisi, strings.Join(e.Allowlist, ", "))
}

type EligibilityResult struct {
	Kegiatan  model.KegiatanModel
	Rangkaian *model.KegiatanRangkaianModel
	Allowlist []string
	Wildcard  bool
}

// EligibilityService memutuskan apakah divisi seorang panitia boleh ikut
// suatu kegiatan (dan rangkaian opsionalnya). Wajib dijalankan sebelum
// mutasi state di semua jalur tulis: scan, edit manual, bulk generate.
type EligibilityService struct {
	DB *gorm.DB
}

func NewEligibilityService(db *gorm.DB) *EligibilityService {
	return &EligibilityService{DB: db}
}

func (s *EligibilityService) db(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.DB
}

// Allowlist mengambil daftar divisi aktif untuk kegiatan, plus flag wildcard.
func (s *EligibilityService) Allowlist(tx *gorm.DB, kegiatanID uuid.UUID) ([]string, bool, error) {
	var entries []model.KegiatanDivisiModel
	if err := s.db(tx).
		Where("kegiatan_divisi_kegiatan_id = ? AND kegiatan_divisi_is_active = ?", kegiatanID, true).
		Order("kegiatan_divisi_nama ASC").
		Find(&entries).Error; err != nil {
		return nil, false, err
	}

	wildcard := false
	list := make([]string, 0, len(entries))
	for _, e := range entries {
		nama := strings.TrimSpace(e.KegiatanDivisiNama)
		if nama == model.DivisiSemua {
			wildcard = true
		}
		list = append(list, nama)
	}
	return list, wildcard, nil
}

// Check memvalidasi kegiatan, rangkaian (kalau ada), lalu divisi.
// Pencocokan divisi exact-match setelah trim; normalisasi kapital dilakukan
// di jalur tulis (helper.NormalizeDivisi), bukan di sini.
func (s *EligibilityService) Check(tx *gorm.DB, divisi string, kegiatanID uuid.UUID, rangkaianID *uuid.UUID) (*EligibilityResult, error) {
	db := s.db(tx)

	var kegiatan model.KegiatanModel
	if err := db.
		Where("kegiatan_id = ? AND kegiatan_is_active = ?", kegiatanID, true).
		First(&kegiatan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKegiatanNotFound
		}
		return nil, err
	}

	res := &EligibilityResult{Kegiatan: kegiatan}

	if rangkaianID != nil {
		var rangkaian model.KegiatanRangkaianModel
		if err := db.
			Where("rangkaian_id = ? AND rangkaian_kegiatan_id = ? AND rangkaian_is_active = ?",
				*rangkaianID, kegiatanID, true).
			First(&rangkaian).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRangkaianNotFound
			}
			return nil, err
		}
		res.Rangkaian = &rangkaian
	}

	list, wildcard, err := s.Allowlist(db, kegiatanID)
	if err != nil {
		return nil, err
	}
	res.Allowlist = list
	res.Wildcard = wildcard

	if wildcard {
		return res, nil
	}
	target := strings.TrimSpace(divisi)
	for _, d := range list {
		if d == target {
			return res, nil
		}
	}
	return nil, &ErrDivisiForbidden{Divisi: target, Allowlist: list}
}
