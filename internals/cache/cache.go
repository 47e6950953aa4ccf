// Package cache menyediakan cache baca untuk dashboard.
//
// Bentuknya abstraksi eksplisit (bukan singleton level modul) supaya bisa
// diganti Redis di produksi dan dimatikan/diganti memory di test.
package cache

import (
	"context"
	"log"
	"time"

	"rajabrawijaya_backend/internals/configs"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	// Invalidate menghapus semua key yang cocok dengan pattern glob
	// (mis. "absensi:kegiatan:42:*").
	Invalidate(ctx context.Context, pattern string)
	Close() error
}

// NewFromEnv memilih implementasi: Redis kalau REDIS_HOST diset, selain itu
// memory cache ber-TTL dengan kapasitas terbatas.
func NewFromEnv() Cache {
	host := configs.GetEnv("REDIS_HOST")
	if host == "" {
		log.Println("🗄 Cache: memory (bounded)")
		return NewMemoryCache(1024)
	}
	rc, err := NewRedisCache(host, configs.GetEnv("REDIS_PORT", "6379"), configs.GetEnv("REDIS_PASSWORD"))
	if err != nil {
		log.Printf("⚠️ Redis tidak tersedia (%v), fallback ke memory cache", err)
		return NewMemoryCache(1024)
	}
	log.Println("✅ Cache: redis")
	return rc
}
