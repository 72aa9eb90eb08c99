package cache

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"ssq-board/internal/api"
	"ssq-board/internal/logger"
)

const (
	viewKeyPrefix       = "view:"
	subscriberKeyPrefix = "subscriber:"
)

// Manager 本地状态管理器
//
// 持有当前数据快照，并在内存键值存储中保存会话视图状态与Telegram订阅。
// 会话视图受容量限制，订阅单独保存，不参与淘汰。不缓存任何命中计算结果。
type Manager struct {
	memory      *MemoryCache
	subscribers *MemoryCache
	viewTTL     time.Duration

	mu       sync.RWMutex
	snapshot *api.Snapshot
}

// NewManager 创建状态管理器
func NewManager(maxSize int, viewTTL time.Duration) *Manager {
	manager := &Manager{
		memory:      NewMemoryCache(maxSize, viewTTL/4),
		subscribers: NewMemoryCache(0, 0),
		viewTTL:     viewTTL,
	}

	logger.Info("Cache manager initialized")
	return manager
}

// Close 关闭状态管理器
func (cm *Manager) Close() {
	cm.memory.Close()
	cm.subscribers.Close()
	logger.Info("Cache manager closed")
}

// Snapshot 获取当前数据快照，尚未加载时返回 nil
func (cm *Manager) Snapshot() *api.Snapshot {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.snapshot
}

// OnNewSnapshot 新数据快照事件处理，整体替换当前快照并返回旧快照
func (cm *Manager) OnNewSnapshot(snap *api.Snapshot) *api.Snapshot {
	cm.mu.Lock()
	prev := cm.snapshot
	cm.snapshot = snap
	cm.mu.Unlock()

	if latest, ok := snap.History.Data.Latest(); ok {
		logger.Debugf("Snapshot replaced: latest period %s, target period %s",
			latest.Period, snap.Predictions.TargetPeriod)
	}
	return prev
}

// LoadView 读取会话视图状态
func (cm *Manager) LoadView(sessionID string, dest interface{}) error {
	return cm.memory.Get(viewKeyPrefix+sessionID, dest)
}

// SaveView 保存会话视图状态
func (cm *Manager) SaveView(sessionID string, view interface{}) error {
	if sessionID == "" {
		return errors.New("empty session id")
	}
	return cm.memory.Set(viewKeyPrefix+sessionID, view, cm.viewTTL)
}

// Subscribe 订阅开奖通知
func (cm *Manager) Subscribe(chatID int64) (bool, error) {
	key := subscriberKey(chatID)
	if cm.subscribers.Exists(key) {
		return false, nil
	}
	if err := cm.subscribers.Set(key, time.Now(), 0); err != nil {
		return false, fmt.Errorf("failed to save subscription: %w", err)
	}
	logger.Infof("Chat %d subscribed to draw notifications", chatID)
	return true, nil
}

// Unsubscribe 取消订阅
func (cm *Manager) Unsubscribe(chatID int64) bool {
	key := subscriberKey(chatID)
	if !cm.subscribers.Exists(key) {
		return false
	}
	cm.subscribers.Delete(key)
	logger.Infof("Chat %d unsubscribed from draw notifications", chatID)
	return true
}

// Subscribers 获取全部订阅的聊天ID
func (cm *Manager) Subscribers() []int64 {
	keys := cm.subscribers.Keys(subscriberKeyPrefix)
	ids := make([]int64, 0, len(keys))
	for _, key := range keys {
		id, err := strconv.ParseInt(strings.TrimPrefix(key, subscriberKeyPrefix), 10, 64)
		if err != nil {
			logger.Warnf("Skipping malformed subscriber key %q", key)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Stats 获取状态统计信息
func (cm *Manager) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"items":       cm.memory.Size() + cm.subscribers.Size(),
		"views":       len(cm.memory.Keys(viewKeyPrefix)),
		"subscribers": cm.subscribers.Size(),
	}
	if snap := cm.Snapshot(); snap != nil {
		stats["snapshot_loaded_at"] = snap.LoadedAt
	}
	return stats
}

func subscriberKey(chatID int64) string {
	return subscriberKeyPrefix + strconv.FormatInt(chatID, 10)
}
