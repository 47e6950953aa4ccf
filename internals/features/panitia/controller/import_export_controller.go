package controller

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"rajabrawijaya_backend/internals/features/panitia/dto"
	"rajabrawijaya_backend/internals/features/panitia/model"
	"rajabrawijaya_backend/internals/features/panitia/service"
	helper "rajabrawijaya_backend/internals/helpers"
)

// Header wajib file import. Urutan kolom bebas, nama kolom tidak.
var importHeader = []string{"nama_lengkap", "nim", "divisi"}

/* ===================== IMPORT CSV ===================== */
// POST /panitia/import (multipart, field "file")
// Baris gagal dilaporkan per nomor baris; baris valid tetap masuk.
func (ctrl *PanitiaController) ImportCSV(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "File CSV tidak ditemukan di field 'file'")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Gagal membuka file CSV")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "File CSV kosong atau rusak")
	}
	colIndex := map[string]int{}
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range importHeader {
		if _, ok := colIndex[required]; !ok {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Kolom '%s' tidak ditemukan di header CSV", required))
		}
	}

	result := dto.ImportResult{}
	seenNim := map[string]int{}
	baris := 1

	for {
		baris++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Gagal++
			result.Kesalahan = append(result.Kesalahan, dto.ImportRowError{
				Baris: baris, Pesan: "Baris tidak bisa dibaca: " + err.Error(),
			})
			continue
		}

		nama := helper.NormalizeNama(record[colIndex["nama_lengkap"]])
		nim := helper.NormalizeNIM(record[colIndex["nim"]])
		divisi := helper.NormalizeDivisi(record[colIndex["divisi"]])

		if nama == "" || nim == "" || divisi == "" {
			result.Gagal++
			result.Kesalahan = append(result.Kesalahan, dto.ImportRowError{
				Baris: baris, Pesan: "nama_lengkap, nim, dan divisi wajib diisi",
			})
			continue
		}
		if firstRow, dup := seenNim[nim]; dup {
			result.Gagal++
			result.Kesalahan = append(result.Kesalahan, dto.ImportRowError{
				Baris: baris, Pesan: fmt.Sprintf("NIM %s duplikat dengan baris %d", nim, firstRow),
			})
			continue
		}
		seenNim[nim] = baris

		var existing int64
		if err := ctrl.DB.Model(&model.PanitiaModel{}).
			Where("panitia_nim = ?", nim).Count(&existing).Error; err != nil {
			result.Gagal++
			result.Kesalahan = append(result.Kesalahan, dto.ImportRowError{
				Baris: baris, Pesan: err.Error(),
			})
			continue
		}
		if existing > 0 {
			result.Dilewati++
			continue
		}

		p := model.PanitiaModel{
			PanitiaNim:         nim,
			PanitiaNamaLengkap: nama,
			PanitiaDivisi:      divisi,
			PanitiaIsActive:    true,
		}
		p.PanitiaUniqueId = service.BuildUniqueId(nim)
		payload, err := service.BuildQrPayload(&p)
		if err != nil {
			result.Gagal++
			result.Kesalahan = append(result.Kesalahan, dto.ImportRowError{
				Baris: baris, Pesan: "Gagal membuat payload QR",
			})
			continue
		}
		p.PanitiaQrPayload = payload

		if err := ctrl.DB.Create(&p).Error; err != nil {
			result.Gagal++
			result.Kesalahan = append(result.Kesalahan, dto.ImportRowError{
				Baris: baris, Pesan: err.Error(),
			})
			continue
		}
		result.Dibuat++
	}

	ctrl.invalidate(c)
	return helper.JsonOK(c, "Import panitia selesai", result)
}

/* ===================== EXPORT ===================== */

func (ctrl *PanitiaController) exportList(c *fiber.Ctx) ([]model.PanitiaModel, error) {
	q := ctrl.DB.Model(&model.PanitiaModel{}).Order("panitia_divisi ASC, panitia_nama_lengkap ASC")
	if divisi := c.Query("divisi"); divisi != "" {
		q = q.Where("panitia_divisi = ?", helper.NormalizeDivisi(divisi))
	}
	var list []model.PanitiaModel
	if err := q.Find(&list).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return list, nil
}

// GET /panitia/export/csv
func (ctrl *PanitiaController) ExportCSV(c *fiber.Ctx) error {
	list, err := ctrl.exportList(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"unique_id", "nama_lengkap", "nim", "divisi", "is_active"})
	for i := range list {
		p := &list[i]
		_ = w.Write([]string{
			p.PanitiaUniqueId,
			p.PanitiaNamaLengkap,
			p.PanitiaNim,
			p.PanitiaDivisi,
			fmt.Sprintf("%t", p.PanitiaIsActive),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menulis CSV")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="panitia_%s.csv"`, time.Now().Format("20060102")))
	return c.Send(buf.Bytes())
}

// GET /panitia/export/json
func (ctrl *PanitiaController) ExportJSON(c *fiber.Ctx) error {
	list, err := ctrl.exportList(c)
	if err != nil {
		return err
	}
	items := make([]dto.PanitiaResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.FromPanitiaModel(&list[i]))
	}
	return helper.JsonOK(c, "Export panitia", items)
}

// GET /panitia/export/qr-zip
// Satu PNG per panitia aktif, dinamai <divisi>/<nim>_<nama>.png.
func (ctrl *PanitiaController) ExportQrZip(c *fiber.Ctx) error {
	list, err := ctrl.exportList(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i := range list {
		p := &list[i]
		if !p.PanitiaIsActive || len(p.PanitiaQrPayload) == 0 {
			continue
		}
		img, err := service.RenderQrPNG(p.PanitiaQrPayload)
		if err != nil {
			continue
		}
		name := fmt.Sprintf("%s/%s_%s.png",
			sanitizeFilename(p.PanitiaDivisi),
			p.PanitiaNim,
			sanitizeFilename(p.PanitiaNamaLengkap))
		entry, err := zw.Create(name)
		if err != nil {
			zw.Close()
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal menulis arsip ZIP")
		}
		if _, err := entry.Write(img); err != nil {
			zw.Close()
			return fiber.NewError(fiber.StatusInternalServerError, "Gagal menulis arsip ZIP")
		}
	}
	if err := zw.Close(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal menutup arsip ZIP")
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="qr_panitia_%s.zip"`, time.Now().Format("20060102")))
	return c.Send(buf.Bytes())
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", "*", "", "?", "", "\"", "", "<", "", ">", "", "|", "")
	return strings.TrimSpace(replacer.Replace(s))
}
