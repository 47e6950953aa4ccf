package service_test

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rajabrawijaya_backend/internals/features/panitia/model"
	"rajabrawijaya_backend/internals/features/panitia/service"
)

func TestBuildUniqueId_DeterministikDanBerbeda(t *testing.T) {
	a1 := service.BuildUniqueId("215150700111001")
	a2 := service.BuildUniqueId("215150700111001")
	b := service.BuildUniqueId("215150700111002")

	assert.Equal(t, a1, a2, "NIM sama harus menghasilkan unique_id sama (import ulang aman)")
	assert.NotEqual(t, a1, b)
	assert.Len(t, a1, 20)
}

func TestBuildQrPayload(t *testing.T) {
	p := &model.PanitiaModel{
		PanitiaUniqueId:    "uid-abc",
		PanitiaNim:         "215150700111001",
		PanitiaNamaLengkap: "Budi Santoso",
		PanitiaDivisi:      "Acara",
	}
	payload, err := service.BuildQrPayload(p)
	require.NoError(t, err)

	var content service.QRContent
	require.NoError(t, sonic.Unmarshal(payload, &content))
	assert.Equal(t, "uid-abc", content.UniqueId)
	assert.Equal(t, "215150700111001", content.Nim)
	assert.Equal(t, "Budi Santoso", content.Nama)
	assert.NotEmpty(t, content.IssuedAt)
}

func TestRenderQrPNG(t *testing.T) {
	img, err := service.RenderQrPNG([]byte(`{"unique_id":"uid-abc"}`))
	require.NoError(t, err)
	require.Greater(t, len(img), 8)
	// magic bytes PNG
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4])
}
