package helper_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "rajabrawijaya_backend/internals/helpers"
)

func TestNormalizeNama(t *testing.T) {
	assert.Equal(t, "Budi Santoso", helper.NormalizeNama("  budi   santoso "))
	assert.Equal(t, "Ni Made Ayu", helper.NormalizeNama("nI mAdE aYu"))
	assert.Equal(t, "", helper.NormalizeNama("   "))
}

func TestNormalizeNIM(t *testing.T) {
	assert.Equal(t, "215150700111001", helper.NormalizeNIM(" 215150700111001 "))
	assert.Equal(t, "ABC123", helper.NormalizeNIM("abc123"))
}

func TestNormalizeDivisi(t *testing.T) {
	assert.Equal(t, "Acara", helper.NormalizeDivisi("  acara "))
	assert.Equal(t, "Hubungan Masyarakat", helper.NormalizeDivisi("hubungan masyarakat"))
}

func TestParseTanggal(t *testing.T) {
	tgl, err := helper.ParseTanggal("2026-08-12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC), tgl)

	_, err = helper.ParseTanggal("12-08-2026")
	assert.Error(t, err)

	_, err = helper.ParseTanggal("")
	assert.Error(t, err)
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2026, 8, 12, 17, 45, 3, 0, time.FixedZone("WIB", 7*3600))
	got := helper.DateOnly(in)
	assert.Equal(t, time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC), got)
}
