package session

import (
	"testing"
	"time"
)

func TestMemoryManager_OnlineLifecycle(t *testing.T) {
	m := New(time.Minute)
	now := time.Now()

	if m.IsOnline("127.0.0.1:50001", now) {
		t.Fatalf("unknown link must be offline")
	}

	m.OnHeartbeat("127.0.0.1:50001", now)
	if !m.IsOnline("127.0.0.1:50001", now.Add(30*time.Second)) {
		t.Fatalf("link must be online within timeout")
	}
	if m.IsOnline("127.0.0.1:50001", now.Add(2*time.Minute)) {
		t.Fatalf("link must expire after timeout")
	}

	m.OnHeartbeat("127.0.0.1:50002", now)
	if got := m.OnlineCount(now); got != 2 {
		t.Fatalf("online count: got %d want 2", got)
	}

	m.OnTCPClosed("127.0.0.1:50001", now)
	if m.IsOnline("127.0.0.1:50001", now) {
		t.Fatalf("closed link must be offline")
	}
}

func TestMemoryManager_BindUnbind(t *testing.T) {
	m := New(time.Minute)
	type conn struct{ id int }

	m.Bind("127.0.0.1:50001", &conn{id: 1})
	c, ok := m.GetConn("127.0.0.1:50001")
	if !ok || c.(*conn).id != 1 {
		t.Fatalf("bound conn not retrievable")
	}

	m.UnbindByLink("127.0.0.1:50001")
	if _, ok := m.GetConn("127.0.0.1:50001"); ok {
		t.Fatalf("conn still present after unbind")
	}
}
