package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/features/generator/service"
	kegiatanService "rajabrawijaya_backend/internals/features/kegiatan/service"
	helper "rajabrawijaya_backend/internals/helpers"
)

type GeneratorController struct {
	DB      *gorm.DB
	Service *service.GeneratorService
}

func NewGeneratorController(db *gorm.DB) *GeneratorController {
	return &GeneratorController{
		DB:      db,
		Service: service.NewGeneratorService(db),
	}
}

type generateRequest struct {
	KegiatanId  uuid.UUID  `json:"kegiatan_id" validate:"required"`
	RangkaianId *uuid.UUID `json:"rangkaian_id" validate:"omitempty"`
	Tanggal     string     `json:"tanggal" validate:"required"`
}

// POST /generate
// Aksi maintenance eksplisit; endpoint list memanggil service yang sama
// secara implisit sebelum query.
func (ctrl *GeneratorController) Generate(c *fiber.Ctx) error {
	var req generateRequest
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

	res, err := ctrl.Service.Generate(ctrl.DB, req.KegiatanId, tanggal, req.RangkaianId)
	if err != nil {
		if errors.Is(err, kegiatanService.ErrKegiatanNotFound) || errors.Is(err, kegiatanService.ErrRangkaianNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal generate baris absensi/konsumsi")
	}

	return helper.JsonOK(c, "Generate selesai", res)
}
