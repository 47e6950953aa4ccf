package controller

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/cache"
	eventModel "rajabrawijaya_backend/internals/features/events/model"
	eventService "rajabrawijaya_backend/internals/features/events/service"
	generatorService "rajabrawijaya_backend/internals/features/generator/service"
	kegiatanService "rajabrawijaya_backend/internals/features/kegiatan/service"
	"rajabrawijaya_backend/internals/features/konsumsi/dto"
	"rajabrawijaya_backend/internals/features/konsumsi/model"
	"rajabrawijaya_backend/internals/features/konsumsi/service"
	panitiaModel "rajabrawijaya_backend/internals/features/panitia/model"
	helper "rajabrawijaya_backend/internals/helpers"
)

type KonsumsiController struct {
	DB          *gorm.DB
	Service     *service.KonsumsiService
	Eligibility *kegiatanService.EligibilityService
	Generator   *generatorService.GeneratorService
	Events      *eventService.EventService
	Cache       cache.Cache
}

func NewKonsumsiController(db *gorm.DB, c cache.Cache, ev *eventService.EventService) *KonsumsiController {
	return &KonsumsiController{
		DB:          db,
		Service:     service.NewKonsumsiService(db),
		Eligibility: kegiatanService.NewEligibilityService(db),
		Generator:   generatorService.NewGeneratorService(db),
		Events:      ev,
		Cache:       c,
	}
}

func (ctrl *KonsumsiController) resolvePanitia(nim string) (*panitiaModel.PanitiaModel, error) {
	var p panitiaModel.PanitiaModel
	if err := ctrl.DB.
		Where("panitia_nim = ? AND panitia_is_active = ?", helper.NormalizeNIM(nim), true).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Panitia tidak ditemukan atau tidak aktif")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return &p, nil
}

/* ===================== LOOKUP / CREATE PAIR ===================== */
// POST /konsumsi/lookup
// Pasangan (konsumsi_1 + konsumsi_2) dibuat otomatis kalau belum ada.
func (ctrl *KonsumsiController) Lookup(c *fiber.Ctx) error {
	var req dto.LookupKonsumsiRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	v := validator.New()
	if err := v.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	tanggal, err := helper.ParseTanggal(req.Tanggal)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	p, ferr := ctrl.resolvePanitia(req.Nim)
	if ferr != nil {
		return ferr
	}
	elig, err := ctrl.Eligibility.Check(ctrl.DB, p.PanitiaDivisi, req.KegiatanId, req.RangkaianId)
	if err != nil {
		return mapEligibilityError(c, err)
	}

	rows, _, err := ctrl.Service.GetOrCreatePair(ctrl.DB, service.KonsumsiKey{
		PanitiaId:   p.PanitiaId,
		KegiatanId:  req.KegiatanId,
		RangkaianId: req.RangkaianId,
		Tanggal:     tanggal,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membaca data konsumsi")
	}

	return helper.JsonOK(c, "Data konsumsi ditemukan", dto.PairSnapshot{
		PanitiaNama:  p.PanitiaNamaLengkap,
		PanitiaNim:   p.PanitiaNim,
		Divisi:       p.PanitiaDivisi,
		KegiatanNama: elig.Kegiatan.KegiatanNama,
		Pair:         dto.PairFromModels(rows),
	})
}

/* ===================== UPDATE PAIR (admin) ===================== */
// PATCH /konsumsi/pair
// Kedua jenis ditulis all-or-nothing; pasangan tidak pernah setengah ter-update.
func (ctrl *KonsumsiController) UpdatePair(c *fiber.Ctx) error {
	var req dto.UpdatePairRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	v := validator.New()
	if err := v.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	tanggal, err := helper.ParseTanggal(req.Tanggal)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	p, ferr := ctrl.resolvePanitia(req.Nim)
	if ferr != nil {
		return ferr
	}

	key := service.KonsumsiKey{
		PanitiaId:   p.PanitiaId,
		KegiatanId:  req.KegiatanId,
		RangkaianId: req.RangkaianId,
		Tanggal:     tanggal,
	}
	statuses := map[string]string{
		model.JenisKonsumsi1: req.StatusKonsumsi1,
		model.JenisKonsumsi2: req.StatusKonsumsi2,
	}
	meta := service.PengambilanMeta{
		Metode:  "Manual",
		Petugas: req.Petugas,
		Catatan: req.Catatan,
	}

	rows, err := ctrl.Service.SetStatusPair(nil, key, statuses, meta)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrKonsumsiNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Pasangan konsumsi tidak lengkap")
		case errors.Is(err, service.ErrJenisInvalid), errors.Is(err, service.ErrStatusInvalid):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal update konsumsi")
		}
	}

	ctrl.invalidate(c, req.KegiatanId)
	ctrl.Events.Emit(eventModel.EventUpdated, eventModel.EntityKonsumsi,
		p.PanitiaId, req.KegiatanId, dto.PairFromModels(rows))

	return helper.JsonUpdated(c, "Konsumsi berhasil diupdate", dto.PairSnapshot{
		PanitiaNama: p.PanitiaNamaLengkap,
		PanitiaNim:  p.PanitiaNim,
		Divisi:      p.PanitiaDivisi,
		Pair:        dto.PairFromModels(rows),
	})
}

/* ===================== BULK RESET (admin) ===================== */
// POST /konsumsi/reset
func (ctrl *KonsumsiController) BulkReset(c *fiber.Ctx) error {
	var req dto.BulkResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	v := validator.New()
	if err := v.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	tanggal, err := helper.ParseTanggal(req.Tanggal)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	affected, err := ctrl.Service.BulkReset(ctrl.DB, req.KegiatanId, tanggal, req.RangkaianId, req.Jenis)
	if err != nil {
		if errors.Is(err, service.ErrJenisInvalid) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal reset konsumsi")
	}

	ctrl.invalidate(c, req.KegiatanId)
	ctrl.Events.Emit(eventModel.EventUpdated, eventModel.EntityKonsumsi,
		uuid.Nil, req.KegiatanId, fiber.Map{"reset": affected, "jenis": req.Jenis})

	return helper.JsonOK(c, "Konsumsi berhasil direset", fiber.Map{"baris_terpengaruh": affected})
}

/* ===================== LIST ===================== */
// GET /konsumsi?kegiatan_id=&tanggal=&rangkaian_id=&divisi=&search=
func (ctrl *KonsumsiController) List(c *fiber.Ctx) error {
	var req dto.FilterKonsumsiRequest
	if err := c.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Query tidak valid")
	}
	v := validator.New()
	if err := v.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	tanggal, err := helper.ParseTanggal(req.Tanggal)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	paging := helper.ResolvePaging(c, 50, 200)

	// ensureExists, jalur sama dengan listing absensi
	if _, err := ctrl.Generator.Generate(ctrl.DB, req.KegiatanId, tanggal, req.RangkaianId); err != nil {
		if errors.Is(err, kegiatanService.ErrKegiatanNotFound) || errors.Is(err, kegiatanService.ErrRangkaianNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal pra-populasi konsumsi")
	}

	q := ctrl.DB.Table("absensi_konsumsi").
		Select("absensi_konsumsi.konsumsi_id, absensi_konsumsi.konsumsi_panitia_id, absensi_konsumsi.konsumsi_jenis, absensi_konsumsi.konsumsi_status_pengambilan, absensi_konsumsi.konsumsi_waktu_pengambilan, panitia_peserta.panitia_nama_lengkap, panitia_peserta.panitia_nim, panitia_peserta.panitia_divisi").
		Joins("JOIN panitia_peserta ON panitia_peserta.panitia_id = absensi_konsumsi.konsumsi_panitia_id").
		Where("absensi_konsumsi.konsumsi_kegiatan_id = ? AND absensi_konsumsi.konsumsi_tanggal = ?", req.KegiatanId, tanggal)
	if req.RangkaianId == nil {
		q = q.Where("absensi_konsumsi.konsumsi_rangkaian_id IS NULL")
	} else {
		q = q.Where("absensi_konsumsi.konsumsi_rangkaian_id = ?", *req.RangkaianId)
	}
	if req.Divisi != nil {
		q = q.Where("panitia_peserta.panitia_divisi = ?", *req.Divisi)
	}
	if req.Search != nil && *req.Search != "" {
		like := "%" + *req.Search + "%"
		q = q.Where("panitia_peserta.panitia_nama_lengkap LIKE ? OR panitia_peserta.panitia_nim LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var items []dto.KonsumsiListItem
	if err := q.Order("panitia_peserta.panitia_nama_lengkap ASC, absensi_konsumsi.konsumsi_jenis ASC").
		Offset(paging.Offset).Limit(paging.Limit).
		Scan(&items).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonList(c, "Daftar konsumsi", items,
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

func (ctrl *KonsumsiController) invalidate(c *fiber.Ctx, kegiatanID uuid.UUID) {
	ctrl.Cache.Invalidate(c.UserContext(), fmt.Sprintf("konsumsi:%s:*", kegiatanID))
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
