package controller

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/cache"
	"rajabrawijaya_backend/internals/features/panitia/dto"
	"rajabrawijaya_backend/internals/features/panitia/model"
	"rajabrawijaya_backend/internals/features/panitia/service"
	helper "rajabrawijaya_backend/internals/helpers"
)

type PanitiaController struct {
	DB    *gorm.DB
	Cache cache.Cache
}

func NewPanitiaController(db *gorm.DB, c cache.Cache) *PanitiaController {
	return &PanitiaController{DB: db, Cache: c}
}

var validate = validator.New()

/* ===================== CREATE ===================== */
// POST /panitia
func (ctrl *PanitiaController) Create(c *fiber.Ctx) error {
	var req dto.CreatePanitiaRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	p := model.PanitiaModel{
		PanitiaNim:         helper.NormalizeNIM(req.Nim),
		PanitiaNamaLengkap: helper.NormalizeNama(req.NamaLengkap),
		PanitiaDivisi:      helper.NormalizeDivisi(req.Divisi),
		PanitiaIsActive:    true,
	}
	p.PanitiaUniqueId = service.BuildUniqueId(p.PanitiaNim)

	payload, err := service.BuildQrPayload(&p)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat payload QR")
	}
	p.PanitiaQrPayload = payload

	if err := ctrl.DB.Create(&p).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") ||
			strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return fiber.NewError(fiber.StatusConflict, "NIM sudah terdaftar")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan panitia")
	}

	ctrl.invalidate(c)
	return helper.JsonCreated(c, "Panitia berhasil didaftarkan", dto.FromPanitiaModel(&p))
}

/* ===================== LIST & DETAIL ===================== */
// GET /panitia?divisi=&search=&is_active=
func (ctrl *PanitiaController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 50, 200)

	q := ctrl.DB.Model(&model.PanitiaModel{})
	if divisi := c.Query("divisi"); divisi != "" {
		q = q.Where("panitia_divisi = ?", helper.NormalizeDivisi(divisi))
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("panitia_nama_lengkap LIKE ? OR panitia_nim LIKE ?", like, like)
	}
	if isActive := c.Query("is_active"); isActive != "" {
		q = q.Where("panitia_is_active = ?", isActive == "true")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var list []model.PanitiaModel
	if err := q.Order("panitia_nama_lengkap ASC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&list).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	items := make([]dto.PanitiaResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.FromPanitiaModel(&list[i]))
	}
	return helper.JsonList(c, "Daftar panitia", items,
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GET /panitia/:id
func (ctrl *PanitiaController) GetByID(c *fiber.Ctx) error {
	p, ferr := ctrl.findByID(c.Params("id"))
	if ferr != nil {
		return ferr
	}
	return helper.JsonOK(c, "Detail panitia", dto.FromPanitiaModel(p))
}

/* ===================== UPDATE ===================== */
// PUT /panitia/:id
// NIM tidak bisa diganti; NIM baru berarti orang baru.
func (ctrl *PanitiaController) Update(c *fiber.Ctx) error {
	p, ferr := ctrl.findByID(c.Params("id"))
	if ferr != nil {
		return ferr
	}
	var req dto.UpdatePanitiaRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	identityChanged := false
	if req.NamaLengkap != nil {
		p.PanitiaNamaLengkap = helper.NormalizeNama(*req.NamaLengkap)
		identityChanged = true
	}
	if req.Divisi != nil {
		p.PanitiaDivisi = helper.NormalizeDivisi(*req.Divisi)
		identityChanged = true
	}
	if req.IsActive != nil {
		p.PanitiaIsActive = *req.IsActive
	}
	if identityChanged {
		payload, err := service.BuildQrPayload(p)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal memperbarui payload QR")
		}
		p.PanitiaQrPayload = payload
	}

	if err := ctrl.DB.Save(p).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal update panitia")
	}

	ctrl.invalidate(c)
	return helper.JsonUpdated(c, "Panitia berhasil diupdate", dto.FromPanitiaModel(p))
}

/* ===================== DELETE ===================== */
// DELETE /panitia/:id
func (ctrl *PanitiaController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID panitia tidak valid")
	}
	res := ctrl.DB.Delete(&model.PanitiaModel{}, "panitia_id = ?", id)
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menghapus panitia")
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Panitia tidak ditemukan")
	}
	ctrl.invalidate(c)
	return helper.JsonDeleted(c, "Panitia berhasil dihapus", fiber.Map{"panitia_id": id})
}

/* ===================== QR ===================== */
// GET /panitia/:id/qr
// PNG dirender on-demand dari payload tersimpan.
func (ctrl *PanitiaController) QrPNG(c *fiber.Ctx) error {
	p, ferr := ctrl.findByID(c.Params("id"))
	if ferr != nil {
		return ferr
	}
	if len(p.PanitiaQrPayload) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Panitia belum memiliki payload QR")
	}
	img, err := service.RenderQrPNG(p.PanitiaQrPayload)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal merender QR")
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`inline; filename="qr_%s.png"`, p.PanitiaNim))
	return c.Send(img)
}

// POST /panitia/:id/qr/regenerate
// Payload ditulis ulang (issued_at baru); unique_id tetap.
func (ctrl *PanitiaController) RegenerateQr(c *fiber.Ctx) error {
	p, ferr := ctrl.findByID(c.Params("id"))
	if ferr != nil {
		return ferr
	}
	payload, err := service.BuildQrPayload(p)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat payload QR")
	}
	p.PanitiaQrPayload = payload
	if err := ctrl.DB.Save(p).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan payload QR")
	}
	return helper.JsonUpdated(c, "Payload QR berhasil dibuat ulang", dto.FromPanitiaModel(p))
}

/* ===================== HELPERS ===================== */

func (ctrl *PanitiaController) findByID(raw string) (*model.PanitiaModel, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "ID panitia tidak valid")
	}
	var p model.PanitiaModel
	if err := ctrl.DB.First(&p, "panitia_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Panitia tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return &p, nil
}

func (ctrl *PanitiaController) invalidate(c *fiber.Ctx) {
	ctrl.Cache.Invalidate(c.UserContext(), "panitia:*")
}
