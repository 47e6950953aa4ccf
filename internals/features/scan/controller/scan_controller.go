package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/cache"
	absensiDto "rajabrawijaya_backend/internals/features/absensi/dto"
	absensiModel "rajabrawijaya_backend/internals/features/absensi/model"
	absensiService "rajabrawijaya_backend/internals/features/absensi/service"
	eventModel "rajabrawijaya_backend/internals/features/events/model"
	eventService "rajabrawijaya_backend/internals/features/events/service"
	kegiatanService "rajabrawijaya_backend/internals/features/kegiatan/service"
	konsumsiDto "rajabrawijaya_backend/internals/features/konsumsi/dto"
	konsumsiModel "rajabrawijaya_backend/internals/features/konsumsi/model"
	konsumsiService "rajabrawijaya_backend/internals/features/konsumsi/service"
	panitiaModel "rajabrawijaya_backend/internals/features/panitia/model"
	"rajabrawijaya_backend/internals/features/scan/dto"
	helper "rajabrawijaya_backend/internals/helpers"
)

// ScanController: gerbang semua scan QR. Alur per scan:
// parse payload → resolve panitia → resolve kegiatan + eligibility →
// delegasi ke store absensi/konsumsi. Langkah resolve+mutasi berjalan dalam
// SATU transaksi; gagal di langkah manapun tidak meninggalkan tulisan parsial.
type ScanController struct {
	DB          *gorm.DB
	Absensi     *absensiService.AbsensiService
	Konsumsi    *konsumsiService.KonsumsiService
	Eligibility *kegiatanService.EligibilityService
	Events      *eventService.EventService
	Cache       cache.Cache
}

func NewScanController(db *gorm.DB, c cache.Cache, ev *eventService.EventService) *ScanController {
	return &ScanController{
		DB:          db,
		Absensi:     absensiService.NewAbsensiService(db),
		Konsumsi:    konsumsiService.NewKonsumsiService(db),
		Eligibility: kegiatanService.NewEligibilityService(db),
		Events:      ev,
		Cache:       c,
	}
}

// resolvePanitia: kunci otoritatif adalah unique_id; nim hanya fallback untuk
// kartu lama. Field lain di payload tidak pernah dipercaya untuk identitas.
func (ctrl *ScanController) resolvePanitia(tx *gorm.DB, p *dto.QRPayload) (*panitiaModel.PanitiaModel, error) {
	var member panitiaModel.PanitiaModel
	q := tx.Where("panitia_is_active = ?", true)
	if p.UniqueId != "" {
		q = q.Where("panitia_unique_id = ?", p.UniqueId)
	} else {
		q = q.Where("panitia_nim = ?", helper.NormalizeNIM(p.Nim))
	}
	if err := q.First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (ctrl *ScanController) resolveTanggal(raw string, elig *kegiatanService.EligibilityResult) (time.Time, error) {
	if raw != "" {
		return helper.ParseTanggal(raw)
	}
	if elig.Rangkaian != nil {
		return helper.DateOnly(elig.Rangkaian.RangkaianTanggal), nil
	}
	if elig.Kegiatan.KegiatanTanggal != nil {
		return helper.DateOnly(*elig.Kegiatan.KegiatanTanggal), nil
	}
	return helper.TodayJakarta(), nil
}

/* ===================== SCAN ABSENSI ===================== */
// POST /scan/absensi
func (ctrl *ScanController) ScanAbsensi(c *fiber.Ctx) error {
	var req dto.ScanAbsensiRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	v := validator.New()
	if err := v.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	payload, err := dto.ParseQRPayload(req.Payload)
	if err != nil || !payload.HasIdentity() {
		return fiber.NewError(fiber.StatusBadRequest, "QR tidak terbaca atau bukan QR panitia")
	}

	// ===== TRANSACTION START =====
	tx := ctrl.DB.Begin()
	if tx.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, tx.Error.Error())
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	member, err := ctrl.resolvePanitia(tx, payload)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Panitia tidak ditemukan atau tidak aktif")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	elig, err := ctrl.Eligibility.Check(tx, member.PanitiaDivisi, req.KegiatanId, req.RangkaianId)
	if err != nil {
		tx.Rollback()
		return mapEligibilityError(c, err)
	}

	tanggal, err := ctrl.resolveTanggal(req.Tanggal, elig)
	if err != nil {
		tx.Rollback()
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	row, err := ctrl.Absensi.MarkPresent(tx, absensiService.AbsensiKey{
		PanitiaId:   member.PanitiaId,
		KegiatanId:  req.KegiatanId,
		RangkaianId: req.RangkaianId,
		Tanggal:     tanggal,
	}, absensiModel.MetodeQRCode)

	if err != nil {
		if errors.Is(err, absensiService.ErrAlreadyPresent) {
			// state sudah final; commit supaya baris auto-create tetap ada
			if cErr := tx.Commit().Error; cErr != nil {
				return fiber.NewError(fiber.StatusInternalServerError, cErr.Error())
			}
			return helper.JsonConflict(c, sudahAbsenMessage(row), snapshotAbsensi(member, elig, row))
		}
		tx.Rollback()
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal mencatat kehadiran")
	}

	if err := tx.Commit().Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	// ===== TRANSACTION END =====

	ctrl.Cache.Invalidate(c.UserContext(), fmt.Sprintf("absensi:%s:*", req.KegiatanId))
	ctrl.Events.Emit(eventModel.EventCreated, eventModel.EntityAbsensi,
		member.PanitiaId, req.KegiatanId, absensiDto.FromAbsensiModel(*row))

	return helper.JsonOK(c, "Kehadiran berhasil dicatat", snapshotAbsensi(member, elig, row))
}

/* ===================== SCAN KONSUMSI ===================== */
// POST /scan/konsumsi
func (ctrl *ScanController) ScanKonsumsi(c *fiber.Ctx) error {
	var req dto.ScanKonsumsiRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	v := validator.New()
	if err := v.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	payload, err := dto.ParseQRPayload(req.Payload)
	if err != nil || !payload.HasIdentity() {
		return fiber.NewError(fiber.StatusBadRequest, "QR tidak terbaca atau bukan QR panitia")
	}

	// ===== TRANSACTION START =====
	tx := ctrl.DB.Begin()
	if tx.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, tx.Error.Error())
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	member, err := ctrl.resolvePanitia(tx, payload)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Panitia tidak ditemukan atau tidak aktif")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	elig, err := ctrl.Eligibility.Check(tx, member.PanitiaDivisi, req.KegiatanId, req.RangkaianId)
	if err != nil {
		tx.Rollback()
		return mapEligibilityError(c, err)
	}

	tanggal, err := ctrl.resolveTanggal(req.Tanggal, elig)
	if err != nil {
		tx.Rollback()
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	operator, _ := c.Locals("user_name").(string)
	var petugas *string
	if operator != "" {
		petugas = &operator
	}

	key := konsumsiService.KonsumsiKey{
		PanitiaId:   member.PanitiaId,
		KegiatanId:  req.KegiatanId,
		RangkaianId: req.RangkaianId,
		Tanggal:     tanggal,
	}
	row, err := ctrl.Konsumsi.MarkTaken(tx, key, req.Jenis, konsumsiService.PengambilanMeta{
		Metode:  "QR Code",
		Petugas: petugas,
	})

	if err != nil {
		switch {
		case errors.Is(err, konsumsiService.ErrSequencing):
			if cErr := tx.Commit().Error; cErr != nil {
				return fiber.NewError(fiber.StatusInternalServerError, cErr.Error())
			}
			return helper.JsonConflict(c, "Konsumsi 1 harus diambil lebih dulu", snapshotKonsumsi(member, elig, row))
		case errors.Is(err, konsumsiService.ErrAlreadyTaken):
			if cErr := tx.Commit().Error; cErr != nil {
				return fiber.NewError(fiber.StatusInternalServerError, cErr.Error())
			}
			return helper.JsonConflict(c, sudahDiambilMessage(row), snapshotKonsumsi(member, elig, row))
		case errors.Is(err, konsumsiService.ErrJenisInvalid):
			tx.Rollback()
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		default:
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal mencatat pengambilan konsumsi")
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	// ===== TRANSACTION END =====

	ctrl.Cache.Invalidate(c.UserContext(), fmt.Sprintf("konsumsi:%s:*", req.KegiatanId))
	ctrl.Events.Emit(eventModel.EventCreated, eventModel.EntityKonsumsi,
		member.PanitiaId, req.KegiatanId, konsumsiDto.FromKonsumsiModel(*row))

	return helper.JsonOK(c, "Pengambilan konsumsi berhasil dicatat", snapshotKonsumsi(member, elig, row))
}

/* ===================== helpers ===================== */

func snapshotAbsensi(member *panitiaModel.PanitiaModel, elig *kegiatanService.EligibilityResult, row *absensiModel.AbsensiModel) absensiDto.AbsensiSnapshot {
	snap := absensiDto.AbsensiSnapshot{
		PanitiaNama:  member.PanitiaNamaLengkap,
		PanitiaNim:   member.PanitiaNim,
		Divisi:       member.PanitiaDivisi,
		KegiatanNama: elig.Kegiatan.KegiatanNama,
	}
	if row != nil {
		snap.Absensi = absensiDto.FromAbsensiModel(*row)
	}
	return snap
}

func snapshotKonsumsi(member *panitiaModel.PanitiaModel, elig *kegiatanService.EligibilityResult, row *konsumsiModel.AbsensiKonsumsiModel) konsumsiDto.PairSnapshot {
	snap := konsumsiDto.PairSnapshot{
		PanitiaNama:  member.PanitiaNamaLengkap,
		PanitiaNim:   member.PanitiaNim,
		Divisi:       member.PanitiaDivisi,
		KegiatanNama: elig.Kegiatan.KegiatanNama,
	}
	if row != nil {
		snap.Pair = []konsumsiDto.KonsumsiResponse{konsumsiDto.FromKonsumsiModel(*row)}
	}
	return snap
}

func sudahDiambilMessage(row *konsumsiModel.AbsensiKonsumsiModel) string {
	if row != nil && row.KonsumsiWaktuPengambilan != nil {
		return "Konsumsi sudah diambil jam " + row.KonsumsiWaktuPengambilan.Format("15:04")
	}
	return "Konsumsi sudah diambil"
}

func sudahAbsenMessage(row *absensiModel.AbsensiModel) string {
	if row != nil && row.AbsensiWaktu != nil {
		return "Sudah absen jam " + row.AbsensiWaktu.Format("15:04")
	}
	return "Panitia sudah tercatat hadir"
}

func mapEligibilityError(c *fiber.Ctx, err error) error {
	var forbidden *kegiatanService.ErrDivisiForbidden
	switch {
	case errors.As(err, &forbidden):
		return helper.JsonForbidden(c, forbidden.Error(), forbidden.Allowlist)
	case errors.Is(err, kegiatanService.ErrKegiatanNotFound),
		errors.Is(err, kegiatanService.ErrRangkaianNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
