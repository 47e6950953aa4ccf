package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/features/kegiatan/model"
	"rajabrawijaya_backend/internals/features/kegiatan/service"
	"rajabrawijaya_backend/internals/testutil"
)

func seedKegiatan(t *testing.T, db *gorm.DB, divisi ...string) *model.KegiatanModel {
	t.Helper()
	k := model.KegiatanModel{
		KegiatanNama:           "Upacara Pembukaan",
		KegiatanJenisRangkaian: model.JenisRangkaianSingle,
		KegiatanIsActive:       true,
	}
	require.NoError(t, db.Create(&k).Error)
	for _, d := range divisi {
		require.NoError(t, db.Create(&model.KegiatanDivisiModel{
			KegiatanDivisiKegiatanId: k.KegiatanId,
			KegiatanDivisiNama:       d,
			KegiatanDivisiIsActive:   true,
		}).Error)
	}
	return &k
}

func TestCheck_WildcardSemua(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewEligibilityService(db)
	k := seedKegiatan(t, db, model.DivisiSemua)

	res, err := svc.Check(nil, "Divisi Apapun", k.KegiatanId, nil)
	require.NoError(t, err)
	assert.True(t, res.Wildcard)
}

func TestCheck_ExactMatch(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewEligibilityService(db)
	k := seedKegiatan(t, db, "Acara", "Konsumsi")

	res, err := svc.Check(nil, "Acara", k.KegiatanId, nil)
	require.NoError(t, err)
	assert.False(t, res.Wildcard)
	assert.Equal(t, []string{"Acara", "Konsumsi"}, res.Allowlist)
}

func TestCheck_DivisiDitolakMembawaAllowlist(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewEligibilityService(db)
	k := seedKegiatan(t, db, "Acara")

	_, err := svc.Check(nil, "Humas", k.KegiatanId, nil)
	var forbidden *service.ErrDivisiForbidden
	require.True(t, errors.As(err, &forbidden))
	assert.Equal(t, "Humas", forbidden.Divisi)
	assert.Equal(t, []string{"Acara"}, forbidden.Allowlist)
}

func TestCheck_WhitespaceDiTrim(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewEligibilityService(db)
	k := seedKegiatan(t, db, "  Acara  ")

	_, err := svc.Check(nil, " Acara ", k.KegiatanId, nil)
	require.NoError(t, err)
}

func TestCheck_KegiatanNonaktif(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewEligibilityService(db)
	k := seedKegiatan(t, db, model.DivisiSemua)
	require.NoError(t, db.Model(&model.KegiatanModel{}).
		Where("kegiatan_id = ?", k.KegiatanId).
		Update("kegiatan_is_active", false).Error)

	_, err := svc.Check(nil, "Acara", k.KegiatanId, nil)
	assert.ErrorIs(t, err, service.ErrKegiatanNotFound)
}

func TestCheck_RangkaianMilikKegiatanLain(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewEligibilityService(db)
	k := seedKegiatan(t, db, model.DivisiSemua)
	lain := seedKegiatan(t, db, model.DivisiSemua)

	r := model.KegiatanRangkaianModel{
		RangkaianKegiatanId: lain.KegiatanId,
		RangkaianJudul:      "Hari 1",
		RangkaianTanggal:    time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		RangkaianIsActive:   true,
	}
	require.NoError(t, db.Create(&r).Error)

	_, err := svc.Check(nil, "Acara", k.KegiatanId, &r.RangkaianId)
	assert.ErrorIs(t, err, service.ErrRangkaianNotFound)
}

func TestCheck_KegiatanTidakAda(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := service.NewEligibilityService(db)

	_, err := svc.Check(nil, "Acara", uuid.New(), nil)
	assert.ErrorIs(t, err, service.ErrKegiatanNotFound)
}
