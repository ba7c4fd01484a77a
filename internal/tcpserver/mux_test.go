package tcpserver

import (
	"testing"

	"github.com/stonefoxes/shproto-server/internal/protocol/shproto"
)

func TestMux_SniffAndDispatch(t *testing.T) {
	mux := NewMux(shproto.NewAdapter(shproto.DefaultCapacity))
	// 构造一个假的连接上下文，仅测试回调链路
	cc := &ConnContext{}
	mux.BindToConn(cc)
	if cc.onRead == nil {
		t.Fatalf("onRead not set")
	}
	// shproto 前缀 0xFF 0xFE
	cc.onRead([]byte{0xFF, 0xFE, 0x03, 0x00})
	if cc.Protocol() != "shproto" {
		t.Fatalf("protocol tag: got %q want shproto", cc.Protocol())
	}
}

func TestMux_UnknownPrefixStillDelivered(t *testing.T) {
	a := shproto.NewAdapter(shproto.DefaultCapacity)
	var routed int
	a.Register(0x03, func(f *shproto.Frame) error { routed++; return nil })

	mux := NewMux(a)
	cc := &ConnContext{}
	mux.BindToConn(cc)

	// 前缀无法初判（噪声开头），但容错投递让适配器自行重同步
	wire, err := shproto.Build(0x03, []byte{0x00}, shproto.DefaultCapacity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	cc.onRead(append([]byte{0x00, 0x00}, wire...))
	if routed != 1 {
		t.Fatalf("routed frames: got %d want 1", routed)
	}
}
