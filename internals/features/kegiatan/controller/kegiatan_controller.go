package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/features/kegiatan/dto"
	"rajabrawijaya_backend/internals/features/kegiatan/model"
	helper "rajabrawijaya_backend/internals/helpers"
)

type KegiatanController struct {
	DB *gorm.DB
}

func NewKegiatanController(db *gorm.DB) *KegiatanController {
	return &KegiatanController{DB: db}
}

var validate = validator.New()

func parseOptionalTanggal(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := helper.ParseTanggal(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

/* ===================== CREATE ===================== */
// POST /kegiatan
func (ctrl *KegiatanController) Create(c *fiber.Ctx) error {
	var req dto.CreateKegiatanRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	tanggal, err := parseOptionalTanggal(req.Tanggal)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	kegiatan := model.KegiatanModel{
		KegiatanNama:           req.Nama,
		KegiatanJenisRangkaian: req.JenisRangkaian,
		KegiatanTanggal:        tanggal,
		KegiatanIsActive:       true,
	}

	tx := ctrl.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&kegiatan).Error; err != nil {
		tx.Rollback()
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat kegiatan")
	}
	divisiRows, err := replaceDivisi(tx, kegiatan.KegiatanId, req.Divisi)
	if err != nil {
		tx.Rollback()
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan allowlist divisi")
	}
	if err := tx.Commit().Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan kegiatan")
	}

	return helper.JsonCreated(c, "Kegiatan berhasil dibuat",
		dto.FromKegiatanModel(&kegiatan, divisiRows, nil))
}

// replaceDivisi menulis ulang allowlist. Nama divisi dinormalisasi saat
// ditulis supaya pengecekan eligibility cukup exact match.
func replaceDivisi(tx *gorm.DB, kegiatanID uuid.UUID, divisi []string) ([]model.KegiatanDivisiModel, error) {
	if err := tx.Where("kegiatan_divisi_kegiatan_id = ?", kegiatanID).
		Delete(&model.KegiatanDivisiModel{}).Error; err != nil {
		return nil, err
	}
	if len(divisi) == 0 {
		return nil, nil
	}
	rows := make([]model.KegiatanDivisiModel, 0, len(divisi))
	seen := map[string]bool{}
	for _, d := range divisi {
		nama := helper.NormalizeDivisi(d)
		if nama == "" || seen[nama] {
			continue
		}
		seen[nama] = true
		rows = append(rows, model.KegiatanDivisiModel{
			KegiatanDivisiKegiatanId: kegiatanID,
			KegiatanDivisiNama:       nama,
			KegiatanDivisiIsActive:   true,
		})
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

/* ===================== LIST & DETAIL ===================== */
// GET /kegiatan
func (ctrl *KegiatanController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := ctrl.DB.Model(&model.KegiatanModel{})
	if search := c.Query("search"); search != "" {
		q = q.Where("kegiatan_nama LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var list []model.KegiatanModel
	if err := q.Preload("KegiatanDivisi").Preload("KegiatanRangkaian").
		Order("kegiatan_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&list).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	items := make([]dto.KegiatanResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.FromKegiatanModel(&list[i], list[i].KegiatanDivisi, list[i].KegiatanRangkaian))
	}
	return helper.JsonList(c, "Daftar kegiatan", items,
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GET /kegiatan/:id
func (ctrl *KegiatanController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID kegiatan tidak valid")
	}
	var kegiatan model.KegiatanModel
	if err := ctrl.DB.Preload("KegiatanDivisi").Preload("KegiatanRangkaian").
		First(&kegiatan, "kegiatan_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Kegiatan tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "Detail kegiatan",
		dto.FromKegiatanModel(&kegiatan, kegiatan.KegiatanDivisi, kegiatan.KegiatanRangkaian))
}

/* ===================== UPDATE ===================== */
// PUT /kegiatan/:id
func (ctrl *KegiatanController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID kegiatan tidak valid")
	}
	var req dto.UpdateKegiatanRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var kegiatan model.KegiatanModel
	if err := ctrl.DB.First(&kegiatan, "kegiatan_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Kegiatan tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if req.Nama != nil {
		kegiatan.KegiatanNama = *req.Nama
	}
	if req.JenisRangkaian != nil {
		kegiatan.KegiatanJenisRangkaian = *req.JenisRangkaian
	}
	if req.Tanggal != nil {
		tanggal, err := parseOptionalTanggal(req.Tanggal)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		kegiatan.KegiatanTanggal = tanggal
	}
	if req.IsActive != nil {
		kegiatan.KegiatanIsActive = *req.IsActive
	}

	tx := ctrl.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Save(&kegiatan).Error; err != nil {
		tx.Rollback()
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal update kegiatan")
	}
	var divisiRows []model.KegiatanDivisiModel
	if req.Divisi != nil {
		divisiRows, err = replaceDivisi(tx, kegiatan.KegiatanId, req.Divisi)
		if err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan allowlist divisi")
		}
	} else {
		if err := tx.Where("kegiatan_divisi_kegiatan_id = ?", kegiatan.KegiatanId).
			Find(&divisiRows).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}
	if err := tx.Commit().Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menyimpan kegiatan")
	}

	return helper.JsonUpdated(c, "Kegiatan berhasil diupdate",
		dto.FromKegiatanModel(&kegiatan, divisiRows, nil))
}

/* ===================== DELETE ===================== */
// DELETE /kegiatan/:id
// Allowlist dan rangkaian ikut terhapus; baris absensi/konsumsi dibiarkan
// sebagai arsip.
func (ctrl *KegiatanController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID kegiatan tidak valid")
	}

	tx := ctrl.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	res := tx.Delete(&model.KegiatanModel{}, "kegiatan_id = ?", id)
	if res.Error != nil {
		tx.Rollback()
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menghapus kegiatan")
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return fiber.NewError(fiber.StatusNotFound, "Kegiatan tidak ditemukan")
	}
	if err := tx.Where("kegiatan_divisi_kegiatan_id = ?", id).
		Delete(&model.KegiatanDivisiModel{}).Error; err != nil {
		tx.Rollback()
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menghapus allowlist divisi")
	}
	if err := tx.Where("rangkaian_kegiatan_id = ?", id).
		Delete(&model.KegiatanRangkaianModel{}).Error; err != nil {
		tx.Rollback()
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menghapus rangkaian")
	}
	if err := tx.Commit().Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menghapus kegiatan")
	}

	return helper.JsonDeleted(c, "Kegiatan berhasil dihapus", fiber.Map{"kegiatan_id": id})
}

/* ===================== RANGKAIAN ===================== */

// POST /kegiatan/:id/rangkaian
func (ctrl *KegiatanController) CreateRangkaian(c *fiber.Ctx) error {
	kegiatanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID kegiatan tidak valid")
	}
	var req dto.CreateRangkaianRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	tanggal, err := helper.ParseTanggal(req.Tanggal)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var kegiatan model.KegiatanModel
	if err := ctrl.DB.First(&kegiatan, "kegiatan_id = ?", kegiatanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Kegiatan tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if kegiatan.KegiatanJenisRangkaian != model.JenisRangkaianMultiple {
		return fiber.NewError(fiber.StatusBadRequest, "Kegiatan ini bukan kegiatan ber-rangkaian")
	}

	rangkaian := model.KegiatanRangkaianModel{
		RangkaianKegiatanId: kegiatanID,
		RangkaianJudul:      req.Judul,
		RangkaianTanggal:    tanggal,
		RangkaianUrutan:     req.Urutan,
		RangkaianIsActive:   true,
	}
	if err := ctrl.DB.Create(&rangkaian).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat rangkaian")
	}
	return helper.JsonCreated(c, "Rangkaian berhasil dibuat", dto.FromRangkaianModel(&rangkaian))
}

// PUT /kegiatan/:id/rangkaian/:rangkaian_id
func (ctrl *KegiatanController) UpdateRangkaian(c *fiber.Ctx) error {
	kegiatanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID kegiatan tidak valid")
	}
	rangkaianID, err := uuid.Parse(c.Params("rangkaian_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID rangkaian tidak valid")
	}
	var req dto.UpdateRangkaianRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var rangkaian model.KegiatanRangkaianModel
	if err := ctrl.DB.
		First(&rangkaian, "rangkaian_id = ? AND rangkaian_kegiatan_id = ?", rangkaianID, kegiatanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Rangkaian tidak ditemukan")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if req.Judul != nil {
		rangkaian.RangkaianJudul = *req.Judul
	}
	if req.Tanggal != nil {
		tanggal, err := helper.ParseTanggal(*req.Tanggal)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		rangkaian.RangkaianTanggal = tanggal
	}
	if req.Urutan != nil {
		rangkaian.RangkaianUrutan = *req.Urutan
	}

	if err := ctrl.DB.Save(&rangkaian).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal update rangkaian")
	}
	return helper.JsonUpdated(c, "Rangkaian berhasil diupdate", dto.FromRangkaianModel(&rangkaian))
}

// DELETE /kegiatan/:id/rangkaian/:rangkaian_id
func (ctrl *KegiatanController) DeleteRangkaian(c *fiber.Ctx) error {
	kegiatanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID kegiatan tidak valid")
	}
	rangkaianID, err := uuid.Parse(c.Params("rangkaian_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "ID rangkaian tidak valid")
	}

	res := ctrl.DB.Delete(&model.KegiatanRangkaianModel{},
		"rangkaian_id = ? AND rangkaian_kegiatan_id = ?", rangkaianID, kegiatanID)
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menghapus rangkaian")
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Rangkaian tidak ditemukan")
	}
	return helper.JsonDeleted(c, "Rangkaian berhasil dihapus", fiber.Map{"rangkaian_id": rangkaianID})
}
