package service

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"image/png"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/bytedance/sonic"
	"gorm.io/datatypes"

	"rajabrawijaya_backend/internals/configs"
	"rajabrawijaya_backend/internals/features/panitia/model"
)

const qrImageSize = 512

// Isi QR kartu panitia. unique_id adalah kunci identitas; field lain
// hanya untuk dicetak di kartu.
type QRContent struct {
	UniqueId string `json:"unique_id"`
	Nama     string `json:"nama"`
	Nim      string `json:"nim"`
	Divisi   string `json:"divisi"`
	IssuedAt string `json:"issued_at"`
}

// BuildUniqueId menurunkan unique_id deterministik dari NIM + salt rahasia.
// Deterministik supaya import ulang CSV tidak mengubah kartu yang sudah dicetak.
func BuildUniqueId(nim string) string {
	mac := hmac.New(sha256.New, []byte(configs.QRSecretSalt))
	mac.Write([]byte(nim))
	return hex.EncodeToString(mac.Sum(nil))[:20]
}

// BuildQrPayload menyusun JSON payload QR untuk satu panitia dan
// mengembalikannya siap simpan di kolom panitia_qr_payload.
func BuildQrPayload(p *model.PanitiaModel) (datatypes.JSON, error) {
	content := QRContent{
		UniqueId: p.PanitiaUniqueId,
		Nama:     p.PanitiaNamaLengkap,
		Nim:      p.PanitiaNim,
		Divisi:   p.PanitiaDivisi,
		IssuedAt: time.Now().UTC().Format(time.RFC3339),
	}
	raw, err := sonic.Marshal(content)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// RenderQrPNG meng-encode payload JSON mentah menjadi PNG QR.
func RenderQrPNG(payload []byte) ([]byte, error) {
	code, err := qr.Encode(string(payload), qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}
	code, err = barcode.Scale(code, qrImageSize, qrImageSize)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
