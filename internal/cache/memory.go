package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ssq-board/internal/logger"
)

var (
	// ErrCacheMiss 缓存不存在
	ErrCacheMiss = errors.New("cache miss")
	// ErrCacheExpired 缓存已过期
	ErrCacheExpired = errors.New("cache expired")
)

// MemoryItem 内存缓存项，ExpiresAt 为零值表示永不过期
type MemoryItem struct {
	Value     []byte
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired 检查是否过期
func (item *MemoryItem) IsExpired(now time.Time) bool {
	return !item.ExpiresAt.IsZero() && now.After(item.ExpiresAt)
}

// MemoryCache 内存键值存储
//
// 值以JSON形式保存，Get 时解码到调用方提供的对象，避免共享引用。
type MemoryCache struct {
	mu      sync.RWMutex
	items   map[string]*MemoryItem
	maxSize int
	now     func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// NewMemoryCache 创建新的内存缓存，cleanupInterval <= 0 时不启动清理协程
func NewMemoryCache(maxSize int, cleanupInterval time.Duration) *MemoryCache {
	cache := &MemoryCache{
		items:   make(map[string]*MemoryItem),
		maxSize: maxSize,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go cache.startCleanup(cleanupInterval)
	}

	logger.Debugf("Memory cache initialized (max size %d)", maxSize)
	return cache
}

// Set 设置缓存值，ttl <= 0 表示永不过期
func (m *MemoryCache) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	now := m.now()
	item := &MemoryItem{Value: data, CreatedAt: now}
	if ttl > 0 {
		item.ExpiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[key]; !exists && m.maxSize > 0 && len(m.items) >= m.maxSize {
		m.evictOldestLocked()
	}
	m.items[key] = item

	logger.Debugf("Memory cache set: %s", key)
	return nil
}

// Get 获取缓存值
func (m *MemoryCache) Get(key string, dest interface{}) error {
	m.mu.RLock()
	item, exists := m.items[key]
	m.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrCacheMiss, key)
	}
	if item.IsExpired(m.now()) {
		m.Delete(key)
		return fmt.Errorf("%w: %s", ErrCacheExpired, key)
	}

	if err := json.Unmarshal(item.Value, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return nil
}

// Delete 删除缓存
func (m *MemoryCache) Delete(key string) {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
}

// Exists 检查缓存是否存在
func (m *MemoryCache) Exists(key string) bool {
	m.mu.RLock()
	item, exists := m.items[key]
	m.mu.RUnlock()
	return exists && !item.IsExpired(m.now())
}

// Keys 获取指定前缀的全部未过期键，按字典序排列
func (m *MemoryCache) Keys(prefix string) []string {
	now := m.now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for key, item := range m.items {
		if strings.HasPrefix(key, prefix) && !item.IsExpired(now) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Size 获取缓存大小
func (m *MemoryCache) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Close 停止清理协程
func (m *MemoryCache) Close() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
}

// startCleanup 启动定期清理过期缓存
func (m *MemoryCache) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupExpired()
		case <-m.stop:
			return
		}
	}
}

// cleanupExpired 清理过期的缓存项
func (m *MemoryCache) cleanupExpired() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for key, item := range m.items {
		if item.IsExpired(now) {
			delete(m.items, key)
			count++
		}
	}

	if count > 0 {
		logger.Debugf("Memory cache cleanup: removed %d expired items", count)
	}
	return count
}

// evictOldestLocked 淘汰最旧的缓存项，调用方需持有写锁
func (m *MemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time

	for key, item := range m.items {
		if oldestKey == "" || item.CreatedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.CreatedAt
		}
	}

	if oldestKey != "" {
		delete(m.items, oldestKey)
		logger.Debugf("Memory cache evicted oldest: %s", oldestKey)
	}
}
