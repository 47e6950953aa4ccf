package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache_SetGet(t *testing.T) {
	m := NewMemoryCache(8)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "absensi:k1:2026-08-12", `{"total":10}`, time.Minute)

	got, ok := m.Get(ctx, "absensi:k1:2026-08-12")
	assert.True(t, ok)
	assert.Equal(t, `{"total":10}`, got)

	_, ok = m.Get(ctx, "absensi:k2:2026-08-12")
	assert.False(t, ok)
}

func TestMemoryCache_TTLKadaluarsa(t *testing.T) {
	m := NewMemoryCache(8)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "kunci", "nilai", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := m.Get(ctx, "kunci")
	assert.False(t, ok)
}

func TestMemoryCache_InvalidatePattern(t *testing.T) {
	m := NewMemoryCache(8)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "absensi:k1:page1", "a", time.Minute)
	m.Set(ctx, "absensi:k1:page2", "b", time.Minute)
	m.Set(ctx, "absensi:k2:page1", "c", time.Minute)

	m.Invalidate(ctx, "absensi:k1:*")

	_, ok := m.Get(ctx, "absensi:k1:page1")
	assert.False(t, ok)
	_, ok = m.Get(ctx, "absensi:k1:page2")
	assert.False(t, ok)
	_, ok = m.Get(ctx, "absensi:k2:page1")
	assert.True(t, ok, "kegiatan lain tidak ikut terhapus")
}

func TestMemoryCache_EvictSaatPenuh(t *testing.T) {
	m := NewMemoryCache(2)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "a", "1", time.Minute)
	m.Set(ctx, "b", "2", 2*time.Minute)
	m.Set(ctx, "c", "3", 3*time.Minute)

	count := 0
	for _, k := range []string{"a", "b", "c"} {
		if _, ok := m.Get(ctx, k); ok {
			count++
		}
	}
	assert.LessOrEqual(t, count, 2)
}
