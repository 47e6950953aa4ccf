package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rajabrawijaya_backend/internals/features/konsumsi/model"
	"rajabrawijaya_backend/internals/features/konsumsi/service"
	"rajabrawijaya_backend/internals/testutil"
)

var (
	tanggal    = time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC)
	kegiatanID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func pairKey(panitiaID uuid.UUID) service.KonsumsiKey {
	return service.KonsumsiKey{
		PanitiaId:  panitiaID,
		KegiatanId: kegiatanID,
		Tanggal:    tanggal,
	}
}

func TestGetOrCreatePair_SelaluBerpasangan(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewKonsumsiService(db)
	panitiaID := uuid.New()

	rows, created, err := svc.GetOrCreatePair(nil, pairKey(panitiaID))
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	require.Len(t, rows, 2)
	assert.Equal(t, model.JenisKonsumsi1, rows[0].KonsumsiJenis)
	assert.Equal(t, model.JenisKonsumsi2, rows[1].KonsumsiJenis)
	for _, r := range rows {
		assert.Equal(t, model.StatusBelumDiambil, r.KonsumsiStatusPengambilan)
	}

	// panggilan kedua tidak menambah baris
	_, created, err = svc.GetOrCreatePair(nil, pairKey(panitiaID))
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestMarkTaken_Konsumsi2SebelumKonsumsi1Ditolak(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewKonsumsiService(db)
	k := pairKey(uuid.New())

	blocking, err := svc.MarkTaken(nil, k, model.JenisKonsumsi2, service.PengambilanMeta{Metode: "QR Code"})
	assert.ErrorIs(t, err, service.ErrSequencing)
	require.NotNil(t, blocking)
	assert.Equal(t, model.JenisKonsumsi1, blocking.KonsumsiJenis, "baris penghalang ikut dikembalikan")

	// tidak ada yang berubah status
	rows, _, err := svc.GetOrCreatePair(nil, k)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, model.StatusBelumDiambil, r.KonsumsiStatusPengambilan)
	}
}

func TestMarkTaken_UrutanBenar(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewKonsumsiService(db)
	k := pairKey(uuid.New())

	row1, err := svc.MarkTaken(nil, k, model.JenisKonsumsi1, service.PengambilanMeta{Metode: "QR Code"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSudahDiambil, row1.KonsumsiStatusPengambilan)
	assert.NotNil(t, row1.KonsumsiWaktuPengambilan)

	row2, err := svc.MarkTaken(nil, k, model.JenisKonsumsi2, service.PengambilanMeta{Metode: "QR Code"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSudahDiambil, row2.KonsumsiStatusPengambilan)
}

func TestMarkTaken_ScanGandaDitolak(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewKonsumsiService(db)
	k := pairKey(uuid.New())

	first, err := svc.MarkTaken(nil, k, model.JenisKonsumsi1, service.PengambilanMeta{Metode: "QR Code"})
	require.NoError(t, err)
	waktuPertama := *first.KonsumsiWaktuPengambilan

	again, err := svc.MarkTaken(nil, k, model.JenisKonsumsi1, service.PengambilanMeta{Metode: "QR Code"})
	assert.ErrorIs(t, err, service.ErrAlreadyTaken)
	require.NotNil(t, again.KonsumsiWaktuPengambilan)
	assert.True(t, again.KonsumsiWaktuPengambilan.Equal(waktuPertama))
}

func TestMarkTaken_JenisTidakDikenal(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewKonsumsiService(db)

	_, err := svc.MarkTaken(nil, pairKey(uuid.New()), "konsumsi_9", service.PengambilanMeta{})
	assert.ErrorIs(t, err, service.ErrJenisInvalid)
}

func TestSetStatusPair_AllOrNothing(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewKonsumsiService(db)
	k := pairKey(uuid.New())

	_, _, err := svc.GetOrCreatePair(nil, k)
	require.NoError(t, err)

	// hilangkan baris konsumsi_2; update pasangan harus gagal total
	require.NoError(t, db.
		Where("konsumsi_panitia_id = ? AND konsumsi_jenis = ?", k.PanitiaId, model.JenisKonsumsi2).
		Delete(&model.AbsensiKonsumsiModel{}).Error)

	_, err = svc.SetStatusPair(nil, k, map[string]string{
		model.JenisKonsumsi1: model.StatusSudahDiambil,
		model.JenisKonsumsi2: model.StatusSudahDiambil,
	}, service.PengambilanMeta{Metode: "Manual"})
	assert.ErrorIs(t, err, service.ErrKonsumsiNotFound)

	// konsumsi_1 tidak boleh ikut berubah
	var sisa model.AbsensiKonsumsiModel
	require.NoError(t, db.
		Where("konsumsi_panitia_id = ? AND konsumsi_jenis = ?", k.PanitiaId, model.JenisKonsumsi1).
		First(&sisa).Error)
	assert.Equal(t, model.StatusBelumDiambil, sisa.KonsumsiStatusPengambilan)
}

func TestSetStatusPair_UpdateKeduanya(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewKonsumsiService(db)
	k := pairKey(uuid.New())

	_, _, err := svc.GetOrCreatePair(nil, k)
	require.NoError(t, err)

	rows, err := svc.SetStatusPair(nil, k, map[string]string{
		model.JenisKonsumsi1: model.StatusSudahDiambil,
		model.JenisKonsumsi2: model.StatusBelumDiambil,
	}, service.PengambilanMeta{Metode: "Manual"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.StatusSudahDiambil, rows[0].KonsumsiStatusPengambilan)
	assert.NotNil(t, rows[0].KonsumsiWaktuPengambilan)
	assert.Equal(t, model.StatusBelumDiambil, rows[1].KonsumsiStatusPengambilan)
	assert.Nil(t, rows[1].KonsumsiWaktuPengambilan)
}

func TestSetStatusPair_StatusTidakDikenal(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewKonsumsiService(db)

	_, err := svc.SetStatusPair(nil, pairKey(uuid.New()), map[string]string{
		model.JenisKonsumsi1: "hilang",
	}, service.PengambilanMeta{})
	assert.ErrorIs(t, err, service.ErrStatusInvalid)
}

func TestBulkReset(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewKonsumsiService(db)

	k1 := pairKey(uuid.New())
	k2 := pairKey(uuid.New())
	_, err := svc.MarkTaken(nil, k1, model.JenisKonsumsi1, service.PengambilanMeta{Metode: "QR Code"})
	require.NoError(t, err)
	_, err = svc.MarkTaken(nil, k2, model.JenisKonsumsi1, service.PengambilanMeta{Metode: "QR Code"})
	require.NoError(t, err)

	// reset hanya konsumsi_1
	affected, err := svc.BulkReset(nil, kegiatanID, tanggal, nil, model.JenisKonsumsi1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, affected)

	var rows []model.AbsensiKonsumsiModel
	require.NoError(t, db.Where("konsumsi_jenis = ?", model.JenisKonsumsi1).Find(&rows).Error)
	for _, r := range rows {
		assert.Equal(t, model.StatusBelumDiambil, r.KonsumsiStatusPengambilan)
		assert.Nil(t, r.KonsumsiWaktuPengambilan)
	}
}
