package cache

import (
	"context"
	"path"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache: map ber-mutex dengan TTL dan batas jumlah entri. Saat penuh,
// entri kadaluarsa dibuang dulu; kalau masih penuh, entri yang paling cepat
// kadaluarsa dikorbankan supaya ukuran tetap terikat.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	maxSize int
	stop    chan struct{}
	once    sync.Once
}

func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	m := &MemoryCache{
		entries: make(map[string]memoryEntry),
		maxSize: maxSize,
		stop:    make(chan struct{}),
	}
	go m.sweep()
	return m
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		delete(m.entries, key)
		return "", false
	}
	return e.value, true
}

func (m *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) >= m.maxSize {
		m.evictLocked()
	}
	m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
}

func (m *MemoryCache) Invalidate(_ context.Context, pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.entries, k)
		}
	}
}

func (m *MemoryCache) Close() error {
	m.once.Do(func() { close(m.stop) })
	return nil
}

func (m *MemoryCache) evictLocked() {
	now := time.Now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	for len(m.entries) >= m.maxSize {
		var oldestKey string
		var oldestExp time.Time
		for k, e := range m.entries {
			if oldestKey == "" || e.expiresAt.Before(oldestExp) {
				oldestKey, oldestExp = k, e.expiresAt
			}
		}
		delete(m.entries, oldestKey)
	}
}

func (m *MemoryCache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for k, e := range m.entries {
				if now.After(e.expiresAt) {
					delete(m.entries, k)
				}
			}
			m.mu.Unlock()
		}
	}
}
