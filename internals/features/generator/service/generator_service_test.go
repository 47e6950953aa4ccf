package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	absensiModel "rajabrawijaya_backend/internals/features/absensi/model"
	"rajabrawijaya_backend/internals/features/generator/service"
	kegiatanModel "rajabrawijaya_backend/internals/features/kegiatan/model"
	kegiatanService "rajabrawijaya_backend/internals/features/kegiatan/service"
	konsumsiModel "rajabrawijaya_backend/internals/features/konsumsi/model"
	panitiaModel "rajabrawijaya_backend/internals/features/panitia/model"
	"rajabrawijaya_backend/internals/testutil"
)

var tanggal = time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T, db *gorm.DB, allowlist []string, panitia map[string]string) *kegiatanModel.KegiatanModel {
	t.Helper()
	k := kegiatanModel.KegiatanModel{
		KegiatanNama:           "Gladi Bersih",
		KegiatanJenisRangkaian: kegiatanModel.JenisRangkaianSingle,
		KegiatanIsActive:       true,
	}
	require.NoError(t, db.Create(&k).Error)
	for _, d := range allowlist {
		require.NoError(t, db.Create(&kegiatanModel.KegiatanDivisiModel{
			KegiatanDivisiKegiatanId: k.KegiatanId,
			KegiatanDivisiNama:       d,
			KegiatanDivisiIsActive:   true,
		}).Error)
	}
	for nim, divisi := range panitia {
		require.NoError(t, db.Create(&panitiaModel.PanitiaModel{
			PanitiaUniqueId:    "uid-" + nim,
			PanitiaNim:         nim,
			PanitiaNamaLengkap: "Panitia " + nim,
			PanitiaDivisi:      divisi,
			PanitiaIsActive:    true,
		}).Error)
	}
	return &k
}

func TestGenerate_HanyaDivisiEligible(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewGeneratorService(db)
	k := seed(t, db, []string{"Acara"}, map[string]string{
		"NIM001": "Acara",
		"NIM002": "Acara",
		"NIM003": "Humas",
	})

	res, err := svc.Generate(nil, k.KegiatanId, tanggal, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PanitiaEligible)
	assert.Equal(t, 2, res.AbsensiDibuat)
	assert.Equal(t, 4, res.KonsumsiDibuat, "dua jenis konsumsi per panitia")

	var absensiCount, konsumsiCount int64
	require.NoError(t, db.Model(&absensiModel.AbsensiModel{}).Count(&absensiCount).Error)
	require.NoError(t, db.Model(&konsumsiModel.AbsensiKonsumsiModel{}).Count(&konsumsiCount).Error)
	assert.EqualValues(t, 2, absensiCount)
	assert.EqualValues(t, 4, konsumsiCount)
}

func TestGenerate_WildcardSemuaDivisi(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewGeneratorService(db)
	k := seed(t, db, []string{kegiatanModel.DivisiSemua}, map[string]string{
		"NIM001": "Acara",
		"NIM002": "Humas",
	})

	res, err := svc.Generate(nil, k.KegiatanId, tanggal, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PanitiaEligible)
}

func TestGenerate_IdempotenDanTidakMenyentuhStatus(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewGeneratorService(db)
	k := seed(t, db, []string{"Acara"}, map[string]string{"NIM001": "Acara"})

	_, err := svc.Generate(nil, k.KegiatanId, tanggal, nil)
	require.NoError(t, err)

	// ubah satu baris seolah sudah discan
	require.NoError(t, db.Model(&absensiModel.AbsensiModel{}).
		Where("absensi_kegiatan_id = ?", k.KegiatanId).
		Updates(map[string]interface{}{
			"absensi_status": absensiModel.StatusHadir,
			"absensi_waktu":  time.Now(),
		}).Error)

	res, err := svc.Generate(nil, k.KegiatanId, tanggal, nil)
	require.NoError(t, err)
	assert.Zero(t, res.AbsensiDibuat)
	assert.Zero(t, res.KonsumsiDibuat)
	assert.Equal(t, 1, res.AbsensiSudahAda)
	assert.Equal(t, 2, res.KonsumsiSudahAda)

	var row absensiModel.AbsensiModel
	require.NoError(t, db.Where("absensi_kegiatan_id = ?", k.KegiatanId).First(&row).Error)
	assert.Equal(t, absensiModel.StatusHadir, row.AbsensiStatus, "run ulang tidak boleh me-reset baris lama")
}

func TestGenerate_KegiatanTidakAda(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewGeneratorService(db)

	_, err := svc.Generate(nil, uuid.New(), tanggal, nil)
	assert.ErrorIs(t, err, kegiatanService.ErrKegiatanNotFound)
}
