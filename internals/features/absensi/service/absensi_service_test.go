package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/features/absensi/model"
	"rajabrawijaya_backend/internals/features/absensi/service"
	panitiaModel "rajabrawijaya_backend/internals/features/panitia/model"
	"rajabrawijaya_backend/internals/testutil"
)

var tanggal = time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

func seedPanitia(t *testing.T, db *gorm.DB, nim string) *panitiaModel.PanitiaModel {
	t.Helper()
	p := panitiaModel.PanitiaModel{
		PanitiaUniqueId:    "uid-" + nim,
		PanitiaNim:         nim,
		PanitiaNamaLengkap: "Panitia " + nim,
		PanitiaDivisi:      "Acara",
		PanitiaIsActive:    true,
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func key(panitiaID uuid.UUID, rangkaianID *uuid.UUID) service.AbsensiKey {
	return service.AbsensiKey{
		PanitiaId:   panitiaID,
		KegiatanId:  uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		RangkaianId: rangkaianID,
		Tanggal:     tanggal,
	}
}

func TestGetOrCreate_SekaliSaja(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewAbsensiService(db)
	p := seedPanitia(t, db, "215150700111001")

	row1, created, err := svc.GetOrCreate(nil, key(p.PanitiaId, nil))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.StatusTidakHadir, row1.AbsensiStatus)
	assert.Nil(t, row1.AbsensiWaktu)

	row2, created, err := svc.GetOrCreate(nil, key(p.PanitiaId, nil))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, row1.AbsensiId, row2.AbsensiId)

	var count int64
	require.NoError(t, db.Model(&model.AbsensiModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetOrCreate_RangkaianNullBerbedaDenganRangkaianIsi(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewAbsensiService(db)
	p := seedPanitia(t, db, "215150700111002")
	rangkaianID := uuid.New()

	_, created, err := svc.GetOrCreate(nil, key(p.PanitiaId, nil))
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = svc.GetOrCreate(nil, key(p.PanitiaId, &rangkaianID))
	require.NoError(t, err)
	assert.True(t, created, "kunci dengan rangkaian harus dianggap baris berbeda")

	var count int64
	require.NoError(t, db.Model(&model.AbsensiModel{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestMarkPresent_ScanPertamaLaluScanGanda(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewAbsensiService(db)
	p := seedPanitia(t, db, "215150700111003")
	k := key(p.PanitiaId, nil)

	row, err := svc.MarkPresent(nil, k, model.MetodeQRCode)
	require.NoError(t, err)
	assert.Equal(t, model.StatusHadir, row.AbsensiStatus)
	require.NotNil(t, row.AbsensiWaktu)
	waktuPertama := *row.AbsensiWaktu

	// scan kedua ditolak dan tidak menggeser stempel waktu
	row2, err := svc.MarkPresent(nil, k, model.MetodeQRCode)
	assert.ErrorIs(t, err, service.ErrAlreadyPresent)
	require.NotNil(t, row2.AbsensiWaktu)
	assert.True(t, row2.AbsensiWaktu.Equal(waktuPertama))
}

func TestSetStatus_HadirKeIzinMengosongkanWaktu(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewAbsensiService(db)
	p := seedPanitia(t, db, "215150700111004")
	k := key(p.PanitiaId, nil)

	row, err := svc.MarkPresent(nil, k, model.MetodeQRCode)
	require.NoError(t, err)

	updated, prev, err := svc.SetStatus(nil, row.AbsensiId, model.StatusIzin, service.StatusMeta{Metode: model.MetodeManual})
	require.NoError(t, err)
	assert.Equal(t, model.StatusHadir, prev)
	assert.Equal(t, model.StatusIzin, updated.AbsensiStatus)
	assert.Nil(t, updated.AbsensiWaktu, "waktu terisi hanya boleh saat Hadir")
}

func TestSetStatus_KeHadirMenyetempelWaktu(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewAbsensiService(db)
	p := seedPanitia(t, db, "215150700111005")

	row, _, err := svc.GetOrCreate(nil, key(p.PanitiaId, nil))
	require.NoError(t, err)

	updated, prev, err := svc.SetStatus(nil, row.AbsensiId, model.StatusHadir, service.StatusMeta{Metode: model.MetodeManual})
	require.NoError(t, err)
	assert.Equal(t, model.StatusTidakHadir, prev)
	assert.NotNil(t, updated.AbsensiWaktu)
}

// Skenario: panitia salah di-scan, dikoreksi admin ke Tidak Hadir,
// lalu di-scan ulang. Scan ulang harus berhasil seperti scan pertama.
func TestScanSetelahKoreksiAdmin(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewAbsensiService(db)
	p := seedPanitia(t, db, "215150700111006")
	k := key(p.PanitiaId, nil)

	row, err := svc.MarkPresent(nil, k, model.MetodeQRCode)
	require.NoError(t, err)

	_, _, err = svc.SetStatus(nil, row.AbsensiId, model.StatusTidakHadir, service.StatusMeta{Metode: model.MetodeManual})
	require.NoError(t, err)

	again, err := svc.MarkPresent(nil, k, model.MetodeQRCode)
	require.NoError(t, err)
	assert.Equal(t, model.StatusHadir, again.AbsensiStatus)
	assert.NotNil(t, again.AbsensiWaktu)
}

func TestSetStatus_StatusTidakDikenal(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewAbsensiService(db)

	_, _, err := svc.SetStatus(nil, uuid.New(), "Bolos", service.StatusMeta{})
	assert.ErrorIs(t, err, service.ErrStatusInvalid)
}

func TestDelete_MengembalikanBarisTerhapus(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewAbsensiService(db)
	p := seedPanitia(t, db, "215150700111007")

	row, _, err := svc.GetOrCreate(nil, key(p.PanitiaId, nil))
	require.NoError(t, err)

	deleted, err := svc.Delete(nil, row.AbsensiId)
	require.NoError(t, err)
	assert.Equal(t, row.AbsensiId, deleted.AbsensiId)

	_, err = svc.Delete(nil, row.AbsensiId)
	assert.ErrorIs(t, err, service.ErrAbsensiNotFound)
}
