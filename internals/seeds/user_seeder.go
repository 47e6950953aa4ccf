package seeds

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/configs"
	userModel "rajabrawijaya_backend/internals/features/users/model"
)

// SeedDefaultAdmin membuat akun admin pertama kalau tabel users masih
// kosong, supaya instance baru langsung bisa login. Kredensial dari env
// ADMIN_USERNAME / ADMIN_PASSWORD.
func SeedDefaultAdmin(db *gorm.DB) {
	var count int64
	if err := db.Model(&userModel.UserModel{}).Count(&count).Error; err != nil {
		log.Printf("[SEED] gagal cek tabel users: %v", err)
		return
	}
	if count > 0 {
		return
	}

	username := configs.GetEnv("ADMIN_USERNAME", "admin")
	password := configs.GetEnv("ADMIN_PASSWORD")
	if password == "" {
		log.Println("⚠️ Tabel users kosong tapi ADMIN_PASSWORD belum diset; seed admin dilewati")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[SEED] gagal hash password admin: %v", err)
		return
	}

	admin := userModel.UserModel{
		UserName:     username,
		UserPassword: string(hashed),
		UserRole:     userModel.RoleAdmin,
		UserIsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("[SEED] gagal membuat admin default: %v", err)
		return
	}
	log.Printf("✅ Admin default %q dibuat", username)
}
