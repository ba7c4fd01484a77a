package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisManager Redis版本的会话管理器，支持多实例部署：
// 会话数据落在 Redis，连接对象仅缓存在持有该连接的实例本地。
type RedisManager struct {
	client   *redis.Client
	serverID string
	timeout  time.Duration

	// 本地连接缓存 (connID -> connection object)
	mu        sync.RWMutex
	localConn map[string]interface{}
}

// sessionData Redis存储的会话数据结构
type sessionData struct {
	LinkID      string    `json:"link_id"`
	ConnID      string    `json:"conn_id"`
	ServerID    string    `json:"server_id"`
	LastSeen    time.Time `json:"last_seen"`
	LastTCPDown time.Time `json:"last_tcp_down,omitempty"`
}

// Redis Key设计
const (
	// session:link:{linkID} -> sessionData JSON
	keyLinkPrefix = "session:link:"

	// session:conn:{connID} -> linkID
	keyConnPrefix = "session:conn:"

	// session:server:{serverID}:conns -> Set[connID]
	keyServerConnsPrefix = "session:server:"
)

// NewRedisManager 创建Redis会话管理器
func NewRedisManager(client *redis.Client, serverID string, timeout time.Duration) *RedisManager {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	if serverID == "" {
		serverID = uuid.New().String()
	}
	return &RedisManager{
		client:    client,
		serverID:  serverID,
		timeout:   timeout,
		localConn: make(map[string]interface{}),
	}
}

func (m *RedisManager) serverConnsKey() string {
	return keyServerConnsPrefix + m.serverID + ":conns"
}

func (m *RedisManager) getSessionData(ctx context.Context, linkID string) (*sessionData, error) {
	raw, err := m.client.Get(ctx, keyLinkPrefix+linkID).Result()
	if err != nil {
		return nil, err
	}
	var data sessionData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (m *RedisManager) setSessionData(ctx context.Context, linkID string, data *sessionData) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	// 过期时间取两倍心跳超时，避免边界抖动
	m.client.Set(ctx, keyLinkPrefix+linkID, raw, m.timeout*2)
}

// OnHeartbeat 更新链路最近心跳时间
func (m *RedisManager) OnHeartbeat(linkID string, t time.Time) {
	ctx := context.Background()

	data, err := m.getSessionData(ctx, linkID)
	if err != nil {
		data = &sessionData{LinkID: linkID, LastSeen: t}
	} else {
		data.LastSeen = t
	}
	m.setSessionData(ctx, linkID, data)
}

// Bind 绑定链路ID到连接对象
func (m *RedisManager) Bind(linkID string, conn interface{}) {
	ctx := context.Background()

	connID := uuid.New().String()

	m.mu.Lock()
	m.localConn[connID] = conn
	m.mu.Unlock()

	data := &sessionData{
		LinkID:   linkID,
		ConnID:   connID,
		ServerID: m.serverID,
		LastSeen: time.Now(),
	}
	m.setSessionData(ctx, linkID, data)

	// connID -> linkID 映射与服务器连接集合
	m.client.Set(ctx, keyConnPrefix+connID, linkID, m.timeout*2)
	m.client.SAdd(ctx, m.serverConnsKey(), connID)
}

// UnbindByLink 解除链路绑定
func (m *RedisManager) UnbindByLink(linkID string) {
	ctx := context.Background()

	data, err := m.getSessionData(ctx, linkID)
	if err != nil {
		return
	}

	if data.ConnID != "" {
		m.mu.Lock()
		delete(m.localConn, data.ConnID)
		m.mu.Unlock()

		m.client.Del(ctx, keyConnPrefix+data.ConnID)
		m.client.SRem(ctx, m.serverConnsKey(), data.ConnID)
	}

	m.client.Del(ctx, keyLinkPrefix+linkID)
}

// OnTCPClosed 记录TCP断开事件
func (m *RedisManager) OnTCPClosed(linkID string, t time.Time) {
	ctx := context.Background()

	data, err := m.getSessionData(ctx, linkID)
	if err != nil {
		return
	}
	data.LastTCPDown = t
	data.LastSeen = time.Time{}
	m.setSessionData(ctx, linkID, data)
}

// GetConn 获取绑定的连接对象（仅限本实例持有的连接）
func (m *RedisManager) GetConn(linkID string) (interface{}, bool) {
	ctx := context.Background()

	data, err := m.getSessionData(ctx, linkID)
	if err != nil {
		return nil, false
	}
	if data.ServerID != m.serverID {
		return nil, false
	}

	m.mu.RLock()
	conn, ok := m.localConn[data.ConnID]
	m.mu.RUnlock()
	return conn, ok
}

// IsOnline 判断链路是否在线
func (m *RedisManager) IsOnline(linkID string, now time.Time) bool {
	ctx := context.Background()

	data, err := m.getSessionData(ctx, linkID)
	if err != nil {
		return false
	}
	if data.LastSeen.IsZero() {
		return false
	}
	return now.Sub(data.LastSeen) <= m.timeout
}

// OnlineCount 返回当前在线链路数量
func (m *RedisManager) OnlineCount(now time.Time) int {
	ctx := context.Background()

	var cursor uint64
	count := 0
	for {
		keys, nextCursor, err := m.client.Scan(ctx, cursor, keyLinkPrefix+"*", 100).Result()
		if err != nil {
			break
		}
		for _, key := range keys {
			linkID := key[len(keyLinkPrefix):]
			if m.IsOnline(linkID, now) {
				count++
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return count
}
