package session

import "time"

// Manager 会话管理器接口，支持内存和Redis两种实现。
// shproto 链路没有设备标识，会话以链路ID（远端地址）为键；
// 任何有效帧都视作一次心跳。
type Manager interface {
	// OnHeartbeat 更新链路最近心跳时间
	OnHeartbeat(linkID string, t time.Time)

	// Bind 绑定链路ID到连接对象
	Bind(linkID string, conn interface{})

	// UnbindByLink 解除绑定
	UnbindByLink(linkID string)

	// OnTCPClosed 记录TCP断开事件
	OnTCPClosed(linkID string, t time.Time)

	// GetConn 返回绑定的连接对象
	GetConn(linkID string) (interface{}, bool)

	// IsOnline 判断链路是否在线
	IsOnline(linkID string, now time.Time) bool

	// OnlineCount 返回当前在线链路数量
	OnlineCount(now time.Time) int
}
