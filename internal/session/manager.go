package session

import (
	"sync"
	"time"
)

// MemoryManager 会话管理内存实现：记录链路最近心跳时间，判断是否在线
type MemoryManager struct {
	mu       sync.RWMutex
	lastSeen map[string]time.Time // linkID -> last seen
	lastDown map[string]time.Time // linkID -> last tcp down
	timeout  time.Duration
	conns    map[string]interface{}
}

func New(timeout time.Duration) *MemoryManager {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &MemoryManager{
		lastSeen: make(map[string]time.Time),
		lastDown: make(map[string]time.Time),
		timeout:  timeout,
		conns:    make(map[string]interface{}),
	}
}

// OnHeartbeat 更新链路最近心跳时间
func (m *MemoryManager) OnHeartbeat(linkID string, t time.Time) {
	m.mu.Lock()
	m.lastSeen[linkID] = t
	m.mu.Unlock()
}

// Bind 绑定链路ID到连接对象（opaque），重复绑定将覆盖
func (m *MemoryManager) Bind(linkID string, conn interface{}) {
	m.mu.Lock()
	m.conns[linkID] = conn
	m.mu.Unlock()
}

// UnbindByLink 解除绑定
func (m *MemoryManager) UnbindByLink(linkID string) {
	m.mu.Lock()
	delete(m.conns, linkID)
	m.mu.Unlock()
}

// OnTCPClosed 记录TCP断开事件
func (m *MemoryManager) OnTCPClosed(linkID string, t time.Time) {
	m.mu.Lock()
	m.lastDown[linkID] = t
	delete(m.lastSeen, linkID)
	m.mu.Unlock()
}

// GetConn 返回绑定的连接对象
func (m *MemoryManager) GetConn(linkID string) (interface{}, bool) {
	m.mu.RLock()
	c, ok := m.conns[linkID]
	m.mu.RUnlock()
	return c, ok
}

// IsOnline 判断链路是否在线
func (m *MemoryManager) IsOnline(linkID string, now time.Time) bool {
	m.mu.RLock()
	ts, ok := m.lastSeen[linkID]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return now.Sub(ts) <= m.timeout
}

// OnlineCount 返回当前在线链路数量
func (m *MemoryManager) OnlineCount(now time.Time) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, ts := range m.lastSeen {
		if now.Sub(ts) <= m.timeout {
			count++
		}
	}
	return count
}
