package scheduler

import (
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/features/events/model"
)

// StartEventReaper membersihkan scan_events lama secara berkala. Log event
// hanya dipakai sebagai kursor polling jangka pendek, bukan arsip.
func StartEventReaper(db *gorm.DB) {
	go func() {
		ttlHours := 24
		if val := os.Getenv("SCAN_EVENT_TTL_HOURS"); val != "" {
			if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
				ttlHours = parsed
			}
		}

		for {
			deleteBefore := time.Now().Add(-time.Duration(ttlHours) * time.Hour)
			res := db.Where("event_created_at < ?", deleteBefore).
				Delete(&model.ScanEventModel{})
			if res.Error != nil {
				log.Printf("[REAPER ERROR] Gagal hapus scan_events lama: %v", res.Error)
			} else if res.RowsAffected > 0 {
				log.Printf("[REAPER] %d scan_events lama dihapus", res.RowsAffected)
			}

			time.Sleep(1 * time.Hour)
		}
	}()
}
