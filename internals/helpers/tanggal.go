package helper

import (
	"fmt"
	"time"
)

const layoutTanggal = "2006-01-02"

// ParseTanggal menerima format YYYY-MM-DD dan mengembalikan tengah malam UTC.
func ParseTanggal(s string) (time.Time, error) {
	t, err := time.Parse(layoutTanggal, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("format tanggal tidak valid (harus YYYY-MM-DD): %q", s)
	}
	return t, nil
}

// DateOnly membuang komponen jam supaya kunci (panitia, kegiatan, tanggal)
// selalu dibandingkan per-hari, bukan per-timestamp.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TodayJakarta() time.Time {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		loc = time.UTC
	}
	y, m, d := time.Now().In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
