package helper

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Indonesian)

// NormalizeNama: trim + rapikan spasi ganda + Title Case.
// "  budi   SANTOSO " -> "Budi Santoso"
func NormalizeNama(s string) string {
	return titleCaser.String(strings.Join(strings.Fields(s), " "))
}

// NormalizeNIM: trim + uppercase. NIM dipakai sebagai kunci lookup manusia,
// jadi harus konsisten sebelum masuk DB.
func NormalizeNIM(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeDivisi menormalkan nama divisi pada SEMUA jalur tulis (panitia,
// allowlist kegiatan). Pencocokan eligibility tetap exact-match, tapi karena
// dua sisi dinormalkan di sini, drift spasi/kapital tidak bisa masuk lewat API.
func NormalizeDivisi(s string) string {
	return titleCaser.String(strings.Join(strings.Fields(s), " "))
}
