package shproto

import "sync"

// Handler 处理器函数类型
type Handler func(f *Frame) error

// Table 路由表（cmd -> handler）
type Table struct {
	mu       sync.RWMutex
	handlers map[byte]Handler
}

func NewTable() *Table { return &Table{handlers: make(map[byte]Handler)} }

func (t *Table) Register(cmd byte, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[cmd] = h
}

func (t *Table) Route(f *Frame) error {
	t.mu.RLock()
	h := t.handlers[f.Command()]
	t.mu.RUnlock()
	if h == nil {
		return nil
	}
	return h(f)
}
