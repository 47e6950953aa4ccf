package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/configs"
	absensiModel "rajabrawijaya_backend/internals/features/absensi/model"
	eventModel "rajabrawijaya_backend/internals/features/events/model"
	kegiatanModel "rajabrawijaya_backend/internals/features/kegiatan/model"
	konsumsiModel "rajabrawijaya_backend/internals/features/konsumsi/model"
	panitiaModel "rajabrawijaya_backend/internals/features/panitia/model"
	userModel "rajabrawijaya_backend/internals/features/users/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 Koneksi ke PostgreSQL...")

	sslmode := getenv("DB_SSLMODE", "require")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=rajabrawijaya&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		sslmode,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // 👍 cocok untuk PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger: configs.NewGormLogger(),
	})
	if err != nil {
		log.Fatalf("❌ Gagal konek DB: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// Migrate menjalankan AutoMigrate + index unik parsial.
//
// Index parsial adalah penjaga race untuk pembuatan baris pertama:
// rangkaian_id NULL berarti "satu kegiatan penuh", dan keunikan kunci
// (panitia, kegiatan, rangkaian-or-null, tanggal) harus ditegakkan oleh DB,
// bukan oleh SELECT sebelum INSERT. SQL-nya valid di Postgres maupun SQLite
// sehingga suite test memakai constraint yang sama persis.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userModel.UserModel{},
		&userModel.TokenBlacklistModel{},
		&panitiaModel.PanitiaModel{},
		&kegiatanModel.KegiatanModel{},
		&kegiatanModel.KegiatanDivisiModel{},
		&kegiatanModel.KegiatanRangkaianModel{},
		&absensiModel.AbsensiModel{},
		&konsumsiModel.AbsensiKonsumsiModel{},
		&eventModel.ScanEventModel{},
	); err != nil {
		return err
	}

	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_absensi_key_rangkaian
			ON absensi (absensi_panitia_id, absensi_kegiatan_id, absensi_rangkaian_id, absensi_tanggal)
			WHERE absensi_rangkaian_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_absensi_key_tanpa_rangkaian
			ON absensi (absensi_panitia_id, absensi_kegiatan_id, absensi_tanggal)
			WHERE absensi_rangkaian_id IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_konsumsi_key_rangkaian
			ON absensi_konsumsi (konsumsi_panitia_id, konsumsi_kegiatan_id, konsumsi_rangkaian_id, konsumsi_tanggal, konsumsi_jenis)
			WHERE konsumsi_rangkaian_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_konsumsi_key_tanpa_rangkaian
			ON absensi_konsumsi (konsumsi_panitia_id, konsumsi_kegiatan_id, konsumsi_tanggal, konsumsi_jenis)
			WHERE konsumsi_rangkaian_id IS NULL`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
