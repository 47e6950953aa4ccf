package scheduler

import (
	"log"
	"time"

	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/features/users/model"
)

// StartBlacklistCleanupScheduler membersihkan token blacklist yang sudah
// lewat jatuh tempo, tiap jam.
func StartBlacklistCleanupScheduler(db *gorm.DB) {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			res := db.Unscoped().
				Where("expired_at < ?", time.Now()).
				Delete(&model.TokenBlacklistModel{})
			if res.Error != nil {
				log.Println("[ERROR] Gagal membersihkan token blacklist:", res.Error)
				continue
			}
			if res.RowsAffected > 0 {
				log.Printf("🧹 Blacklist cleanup: %d token kadaluarsa dihapus", res.RowsAffected)
			}
		}
	}()
}
