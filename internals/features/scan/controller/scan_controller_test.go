package controller_test

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/cache"
	absensiModel "rajabrawijaya_backend/internals/features/absensi/model"
	eventBroker "rajabrawijaya_backend/internals/features/events/broker"
	eventModel "rajabrawijaya_backend/internals/features/events/model"
	eventService "rajabrawijaya_backend/internals/features/events/service"
	kegiatanModel "rajabrawijaya_backend/internals/features/kegiatan/model"
	konsumsiModel "rajabrawijaya_backend/internals/features/konsumsi/model"
	panitiaModel "rajabrawijaya_backend/internals/features/panitia/model"
	"rajabrawijaya_backend/internals/features/scan/controller"
	"rajabrawijaya_backend/internals/testutil"
)

type fixture struct {
	app *fiber.App
	db  *gorm.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)

	mem := cache.NewMemoryCache(64)
	t.Cleanup(func() { _ = mem.Close() })

	ev := eventService.NewEventService(db, eventBroker.New())
	ctrl := controller.NewScanController(db, mem, ev)

	app := fiber.New()
	app.Post("/scan/absensi", ctrl.ScanAbsensi)
	app.Post("/scan/konsumsi", ctrl.ScanKonsumsi)
	return &fixture{app: app, db: db}
}

func (f *fixture) seedKegiatan(t *testing.T, divisi ...string) *kegiatanModel.KegiatanModel {
	t.Helper()
	k := kegiatanModel.KegiatanModel{
		KegiatanNama:           "Open House",
		KegiatanJenisRangkaian: kegiatanModel.JenisRangkaianSingle,
		KegiatanIsActive:       true,
	}
	require.NoError(t, f.db.Create(&k).Error)
	for _, d := range divisi {
		require.NoError(t, f.db.Create(&kegiatanModel.KegiatanDivisiModel{
			KegiatanDivisiKegiatanId: k.KegiatanId,
			KegiatanDivisiNama:       d,
			KegiatanDivisiIsActive:   true,
		}).Error)
	}
	return &k
}

func (f *fixture) seedPanitia(t *testing.T, nim, divisi string) *panitiaModel.PanitiaModel {
	t.Helper()
	p := panitiaModel.PanitiaModel{
		PanitiaUniqueId:    "uid-" + nim,
		PanitiaNim:         nim,
		PanitiaNamaLengkap: "Panitia " + nim,
		PanitiaDivisi:      divisi,
		PanitiaIsActive:    true,
	}
	require.NoError(t, f.db.Create(&p).Error)
	return &p
}

func qrPayload(p *panitiaModel.PanitiaModel) string {
	raw, _ := sonic.MarshalString(map[string]string{
		"unique_id": p.PanitiaUniqueId,
		"nama":      p.PanitiaNamaLengkap,
		"nim":       p.PanitiaNim,
		"divisi":    p.PanitiaDivisi,
	})
	return raw
}

func (f *fixture) post(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	raw, err := sonic.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, sonic.Unmarshal(raw, &body))
	return body
}

func TestScanAbsensi_BerhasilLaluScanGanda(t *testing.T) {
	f := newFixture(t)
	k := f.seedKegiatan(t, kegiatanModel.DivisiSemua)
	p := f.seedPanitia(t, "NIM100", "Acara")

	body := map[string]interface{}{
		"payload":     qrPayload(p),
		"kegiatan_id": k.KegiatanId,
		"tanggal":     "2026-08-12",
	}

	resp := f.post(t, "/scan/absensi", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var row absensiModel.AbsensiModel
	require.NoError(t, f.db.Where("absensi_panitia_id = ?", p.PanitiaId).First(&row).Error)
	assert.Equal(t, absensiModel.StatusHadir, row.AbsensiStatus)
	assert.Equal(t, absensiModel.MetodeQRCode, row.AbsensiMetode)
	require.NotNil(t, row.AbsensiWaktu)

	// satu scan sukses = satu event new-scan
	var events []eventModel.ScanEventModel
	require.NoError(t, f.db.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, eventModel.EventCreated, events[0].EventType)
	assert.Equal(t, eventModel.EntityAbsensi, events[0].EventEntity)

	// scan kedua: konflik + snapshot, tanpa event baru
	resp2 := f.post(t, "/scan/absensi", body)
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
	payload := decodeBody(t, resp2)
	assert.Contains(t, payload["message"], "sudah")
	assert.NotNil(t, payload["detail"], "snapshot kondisi sekarang ikut dikirim")

	require.NoError(t, f.db.Find(&events).Error)
	assert.Len(t, events, 1)
}

func TestScanAbsensi_QRRusak(t *testing.T) {
	f := newFixture(t)
	k := f.seedKegiatan(t, kegiatanModel.DivisiSemua)

	resp := f.post(t, "/scan/absensi", map[string]interface{}{
		"payload":     "bukan-json{{{",
		"kegiatan_id": k.KegiatanId,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScanAbsensi_TanpaIdentitas(t *testing.T) {
	f := newFixture(t)
	k := f.seedKegiatan(t, kegiatanModel.DivisiSemua)

	resp := f.post(t, "/scan/absensi", map[string]interface{}{
		"payload":     `{"nama":"Orang Tanpa Id"}`,
		"kegiatan_id": k.KegiatanId,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScanAbsensi_DivisiTidakDiizinkan(t *testing.T) {
	f := newFixture(t)
	k := f.seedKegiatan(t, "Konsumsi")
	p := f.seedPanitia(t, "NIM101", "Humas")

	resp := f.post(t, "/scan/absensi", map[string]interface{}{
		"payload":     qrPayload(p),
		"kegiatan_id": k.KegiatanId,
		"tanggal":     "2026-08-12",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	payload := decodeBody(t, resp)
	assert.NotNil(t, payload["detail"], "allowlist divisi ikut dikirim")

	// tidak ada baris yang tertinggal
	var count int64
	require.NoError(t, f.db.Model(&absensiModel.AbsensiModel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestScanAbsensi_PanitiaTidakDikenal(t *testing.T) {
	f := newFixture(t)
	k := f.seedKegiatan(t, kegiatanModel.DivisiSemua)

	resp := f.post(t, "/scan/absensi", map[string]interface{}{
		"payload":     `{"unique_id":"tidak-terdaftar"}`,
		"kegiatan_id": k.KegiatanId,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// Identitas selalu dari DB: payload dengan unique_id milik A tapi nama/nim
// milik B tetap tercatat sebagai A.
func TestScanAbsensi_UniqueIdMenangAtasFieldLain(t *testing.T) {
	f := newFixture(t)
	k := f.seedKegiatan(t, kegiatanModel.DivisiSemua)
	a := f.seedPanitia(t, "NIM102", "Acara")
	b := f.seedPanitia(t, "NIM103", "Humas")

	payload, _ := sonic.MarshalString(map[string]string{
		"unique_id": a.PanitiaUniqueId,
		"nama":      b.PanitiaNamaLengkap,
		"nim":       b.PanitiaNim,
		"divisi":    b.PanitiaDivisi,
	})
	resp := f.post(t, "/scan/absensi", map[string]interface{}{
		"payload":     payload,
		"kegiatan_id": k.KegiatanId,
		"tanggal":     "2026-08-12",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, f.db.Model(&absensiModel.AbsensiModel{}).
		Where("absensi_panitia_id = ?", a.PanitiaId).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	require.NoError(t, f.db.Model(&absensiModel.AbsensiModel{}).
		Where("absensi_panitia_id = ?", b.PanitiaId).Count(&count).Error)
	assert.Zero(t, count)
}

func TestScanKonsumsi_UrutanDitegakkan(t *testing.T) {
	f := newFixture(t)
	k := f.seedKegiatan(t, kegiatanModel.DivisiSemua)
	p := f.seedPanitia(t, "NIM104", "Acara")

	mkBody := func(jenis string) map[string]interface{} {
		return map[string]interface{}{
			"payload":     qrPayload(p),
			"kegiatan_id": k.KegiatanId,
			"tanggal":     "2026-08-12",
			"jenis":       jenis,
		}
	}

	// tahap 2 duluan: ditolak, tapi pasangan baris tetap dibuat
	resp := f.post(t, "/scan/konsumsi", mkBody(konsumsiModel.JenisKonsumsi2))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var count int64
	require.NoError(t, f.db.Model(&konsumsiModel.AbsensiKonsumsiModel{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	// tahap 1 lalu tahap 2: keduanya sukses
	resp = f.post(t, "/scan/konsumsi", mkBody(konsumsiModel.JenisKonsumsi1))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = f.post(t, "/scan/konsumsi", mkBody(konsumsiModel.JenisKonsumsi2))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// pengulangan tahap 1: konflik dengan pesan waktu pengambilan
	resp = f.post(t, "/scan/konsumsi", mkBody(konsumsiModel.JenisKonsumsi1))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	payload := decodeBody(t, resp)
	assert.Contains(t, fmt.Sprint(payload["message"]), "sudah")
}

func TestScanKonsumsi_JenisTidakValid(t *testing.T) {
	f := newFixture(t)
	k := f.seedKegiatan(t, kegiatanModel.DivisiSemua)
	p := f.seedPanitia(t, "NIM105", "Acara")

	resp := f.post(t, "/scan/konsumsi", map[string]interface{}{
		"payload":     qrPayload(p),
		"kegiatan_id": k.KegiatanId,
		"jenis":       "konsumsi_9",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

// Guard anti scan ganda tetap menahan walau dua scan masuk hampir bersamaan.
func TestScanAbsensi_DuaScanBeruntun(t *testing.T) {
	f := newFixture(t)
	k := f.seedKegiatan(t, kegiatanModel.DivisiSemua)
	p := f.seedPanitia(t, "NIM106", "Acara")

	body := map[string]interface{}{
		"payload":     qrPayload(p),
		"kegiatan_id": k.KegiatanId,
		"tanggal":     "2026-08-12",
	}

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		resp := f.post(t, "/scan/absensi", body)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusConflict}, codes)

	var rows []absensiModel.AbsensiModel
	require.NoError(t, f.db.Where("absensi_panitia_id = ?", p.PanitiaId).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, absensiModel.StatusHadir, rows[0].AbsensiStatus)
}
