package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/cache"
	"rajabrawijaya_backend/internals/features/absensi/dto"
	"rajabrawijaya_backend/internals/features/absensi/model"
	"rajabrawijaya_backend/internals/features/absensi/service"
	eventModel "rajabrawijaya_backend/internals/features/events/model"
	eventService "rajabrawijaya_backend/internals/features/events/service"
	generatorService "rajabrawijaya_backend/internals/features/generator/service"
	kegiatanService "rajabrawijaya_backend/internals/features/kegiatan/service"
	panitiaModel "rajabrawijaya_backend/internals/features/panitia/model"
	helper "rajabrawijaya_backend/internals/helpers"
)

type AbsensiController struct {
	DB          *gorm.DB
	Service     *service.AbsensiService
	Eligibility *kegiatanService.EligibilityService
	Generator   *generatorService.GeneratorService
	Events      *eventService.EventService
	Cache       cache.Cache
}

func NewAbsensiController(db *gorm.DB, c cache.Cache, ev *eventService.EventService) *AbsensiController {
	return &AbsensiController{
		DB:          db,
		Service:     service.NewAbsensiService(db),
		Eligibility: kegiatanService.NewEligibilityService(db),
		Generator:   generatorService.NewGeneratorService(db),
		Events:      ev,
		Cache:       c,
	}
}

/* ===================== LOOKUP / CREATE ===================== */
// POST /absensi/lookup
// Baris dibuat otomatis (default Tidak Hadir) saat pertama kali di-lookup.
// Ini disengaja: state di-pra-populasi saat pertama dilihat, bukan bug.
func (ctrl *AbsensiController) Lookup(c *fiber.Ctx) error {
	var req dto.LookupAbsensiRequest
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

	var p panitiaModel.PanitiaModel
	if err := ctrl.DB.
		Where("panitia_nim = ? AND panitia_is_active = ?", helper.NormalizeNIM(req.Nim), true).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Panitia tidak ditemukan atau tidak aktif")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	elig, err := ctrl.Eligibility.Check(ctrl.DB, p.PanitiaDivisi, req.KegiatanId, req.RangkaianId)
	if err != nil {
		return mapEligibilityError(c, err)
	}

	row, _, err := ctrl.Service.GetOrCreate(ctrl.DB, service.AbsensiKey{
		PanitiaId:   p.PanitiaId,
		KegiatanId:  req.KegiatanId,
		RangkaianId: req.RangkaianId,
		Tanggal:     tanggal,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membaca data absensi")
	}

	return helper.JsonOK(c, "Data absensi ditemukan", dto.AbsensiSnapshot{
		Absensi:      dto.FromAbsensiModel(*row),
		PanitiaNama:  p.PanitiaNamaLengkap,
		PanitiaNim:   p.PanitiaNim,
		Divisi:       p.PanitiaDivisi,
		KegiatanNama: elig.Kegiatan.KegiatanNama,
	})
}

/* ===================== LIST ===================== */
// GET /absensi?kegiatan_id=&tanggal=&rangkaian_id=&status=&divisi=&search=
// ensureExists: generator dijalankan dulu supaya listing tidak bolong untuk
// panitia eligible yang belum pernah discan.
func (ctrl *AbsensiController) List(c *fiber.Ctx) error {
	var req dto.FilterAbsensiRequest
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

	if _, err := ctrl.Generator.Generate(ctrl.DB, req.KegiatanId, tanggal, req.RangkaianId); err != nil {
		if errors.Is(err, kegiatanService.ErrKegiatanNotFound) || errors.Is(err, kegiatanService.ErrRangkaianNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal pra-populasi absensi")
	}

	type cached struct {
		Items []dto.AbsensiListItem `json:"items"`
		Total int64                 `json:"total"`
	}

	cacheKey := fmt.Sprintf("absensi:%s:%s:%s:%s:%s:%s:%d:%d",
		req.KegiatanId, req.Tanggal, uuidOrDash(req.RangkaianId),
		strOrDash(req.Status), strOrDash(req.Divisi), strOrDash(req.Search),
		paging.Page, paging.PerPage)
	if raw, ok := ctrl.Cache.Get(c.UserContext(), cacheKey); ok {
		var hit cached
		if err := sonic.UnmarshalString(raw, &hit); err == nil {
			return helper.JsonList(c, "Daftar absensi (cache)", hit.Items,
				helper.BuildPaginationFromPage(hit.Total, paging.Page, paging.PerPage))
		}
	}

	q := ctrl.DB.Table("absensi").
		Select("absensi.absensi_id, absensi.absensi_panitia_id, absensi.absensi_status, absensi.absensi_waktu, absensi.absensi_metode, absensi.absensi_tanggal, panitia_peserta.panitia_nama_lengkap, panitia_peserta.panitia_nim, panitia_peserta.panitia_divisi").
		Joins("JOIN panitia_peserta ON panitia_peserta.panitia_id = absensi.absensi_panitia_id").
		Where("absensi.absensi_kegiatan_id = ? AND absensi.absensi_tanggal = ?", req.KegiatanId, tanggal)
	if req.RangkaianId == nil {
		q = q.Where("absensi.absensi_rangkaian_id IS NULL")
	} else {
		q = q.Where("absensi.absensi_rangkaian_id = ?", *req.RangkaianId)
	}
	if req.Status != nil {
		q = q.Where("absensi.absensi_status = ?", *req.Status)
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

	var items []dto.AbsensiListItem
	if err := q.Order("panitia_peserta.panitia_nama_lengkap ASC").
		Offset(paging.Offset).Limit(paging.Limit).
		Scan(&items).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if raw, err := sonic.MarshalString(cached{Items: items, Total: total}); err == nil {
		ctrl.Cache.Set(c.UserContext(), cacheKey, raw, 5*time.Second)
	}

	return helper.JsonList(c, "Daftar absensi", items,
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

/* ===================== REKAP ===================== */
// GET /absensi/rekap?kegiatan_id=&tanggal=&rangkaian_id=
func (ctrl *AbsensiController) Rekap(c *fiber.Ctx) error {
	kegiatanID, err := uuid.Parse(c.Query("kegiatan_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "kegiatan_id tidak valid")
	}
	tanggal, err := helper.ParseTanggal(c.Query("tanggal"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	var rangkaianID *uuid.UUID
	if raw := c.Query("rangkaian_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "rangkaian_id tidak valid")
		}
		rangkaianID = &id
	}

	type rekapRow struct {
		Status string `gorm:"column:absensi_status"`
		Jumlah int64  `gorm:"column:jumlah"`
	}
	q := ctrl.DB.Model(&model.AbsensiModel{}).
		Select("absensi_status, COUNT(*) AS jumlah").
		Where("absensi_kegiatan_id = ? AND absensi_tanggal = ?", kegiatanID, tanggal).
		Group("absensi_status")
	if rangkaianID == nil {
		q = q.Where("absensi_rangkaian_id IS NULL")
	} else {
		q = q.Where("absensi_rangkaian_id = ?", *rangkaianID)
	}

	var rows []rekapRow
	if err := q.Scan(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	rekap := dto.RekapAbsensi{}
	for _, r := range rows {
		switch r.Status {
		case model.StatusHadir:
			rekap.Hadir = r.Jumlah
		case model.StatusTidakHadir:
			rekap.TidakHadir = r.Jumlah
		case model.StatusIzin:
			rekap.Izin = r.Jumlah
		case model.StatusSakit:
			rekap.Sakit = r.Jumlah
		}
		rekap.Total += r.Jumlah
	}
	return helper.JsonOK(c, "Rekap absensi", rekap)
}

/* ===================== UPDATE (admin) ===================== */
// PATCH /absensi/:id
func (ctrl *AbsensiController) Update(c *fiber.Ctx) error {
	absensiID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID tidak valid")
	}
	var req dto.UpdateAbsensiRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	v := validator.New()
	if err := v.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	meta := service.StatusMeta{
		Catatan:    req.Catatan,
		Keterangan: req.Keterangan,
		Waktu:      req.Waktu,
	}
	if req.Metode != nil {
		meta.Metode = *req.Metode
	} else {
		meta.Metode = model.MetodeManual
	}

	updated, prevStatus, err := ctrl.Service.SetStatus(ctrl.DB, absensiID, req.Status, meta)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAbsensiNotFound):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrStatusInvalid):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal update absensi")
		}
	}

	ctrl.invalidate(c, updated.AbsensiKegiatanId)
	ctrl.Events.Emit(eventModel.EventUpdated, eventModel.EntityAbsensi,
		updated.AbsensiPanitiaId, updated.AbsensiKegiatanId, dto.FromAbsensiModel(*updated))

	return helper.JsonUpdated(c, "Absensi berhasil diupdate", dto.AbsensiSnapshot{
		Absensi:    dto.FromAbsensiModel(*updated),
		StatusLama: &prevStatus,
	})
}

/* ===================== DELETE (admin) ===================== */
// DELETE /absensi/:id
func (ctrl *AbsensiController) Delete(c *fiber.Ctx) error {
	absensiID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID tidak valid")
	}

	deleted, err := ctrl.Service.Delete(ctrl.DB, absensiID)
	if err != nil {
		if errors.Is(err, service.ErrAbsensiNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal hapus absensi")
	}

	ctrl.invalidate(c, deleted.AbsensiKegiatanId)
	ctrl.Events.Emit(eventModel.EventDeleted, eventModel.EntityAbsensi,
		deleted.AbsensiPanitiaId, deleted.AbsensiKegiatanId, dto.FromAbsensiModel(*deleted))

	return helper.JsonDeleted(c, "Absensi berhasil dihapus", dto.FromAbsensiModel(*deleted))
}

func (ctrl *AbsensiController) invalidate(c *fiber.Ctx, kegiatanID uuid.UUID) {
	ctrl.Cache.Invalidate(c.UserContext(), fmt.Sprintf("absensi:%s:*", kegiatanID))
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

func uuidOrDash(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}

func strOrDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
