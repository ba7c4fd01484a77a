package shproto

import (
	"bytes"
	"testing"
)

// feedAll 逐字节喂入并收集产出帧
func feedAll(t *testing.T, p *Parser, in []byte) []*Frame {
	t.Helper()
	var frames []*Frame
	for i, b := range in {
		f, err := p.Feed(b)
		if err != nil {
			t.Fatalf("feed byte %d (%#02x): %v", i, b, err)
		}
		if f != nil {
			frames = append(frames, f)
		}
	}
	return frames
}

func TestParser_KnownWireVector(t *testing.T) {
	p := NewParser(7)
	frames := feedAll(t, p, []byte{0xFF, 0xFE, 0x03, 0x00, 0x01, 0x40, 0xA5})
	if len(frames) != 1 {
		t.Fatalf("frames: got %d want 1", len(frames))
	}
	f := frames[0]
	if !f.Complete() || !f.Valid() {
		t.Fatalf("expected complete+valid, got complete=%v valid=%v crc=%#04x", f.Complete(), f.Valid(), f.CRC())
	}
	if !bytes.Equal(f.Payload(), []byte{0x03, 0x00}) {
		t.Fatalf("payload: got %X want 03 00", f.Payload())
	}
	if !bytes.Equal(f.Bytes(), []byte{0x03, 0x00, 0x01, 0x40}) {
		t.Fatalf("protected bytes: got %X", f.Bytes())
	}
	if f.Command() != 0x03 {
		t.Fatalf("command: got %#02x want 0x03", f.Command())
	}
}

func TestParser_BuilderRoundTrip(t *testing.T) {
	wire, err := Build(0x03, []byte{0x99}, DefaultCapacity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	p := NewParser(DefaultCapacity)
	frames := feedAll(t, p, wire)
	if len(frames) != 1 {
		t.Fatalf("frames: got %d want 1", len(frames))
	}
	if !frames[0].Valid() {
		t.Fatalf("expected valid frame, crc=%#04x", frames[0].CRC())
	}
	if !bytes.Equal(frames[0].Payload(), []byte{0x03, 0x99}) {
		t.Fatalf("payload: got %X want 03 99", frames[0].Payload())
	}
}

func TestParser_StopWithoutStart(t *testing.T) {
	p := NewParser(DefaultCapacity)
	frames := feedAll(t, p, []byte{0x01, 0xA5, 0x02, 0xA5})
	if len(frames) != 0 {
		t.Fatalf("expected no frames, got %d", len(frames))
	}
}

func TestParser_ResyncOnSpuriousStart(t *testing.T) {
	wire, err := Build(0x10, []byte{0xAA, 0xBB}, DefaultCapacity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// 残帧（START + 部分数据）之后紧跟完整帧：残帧必须被静默丢弃
	in := append([]byte{0xFE, 0x55, 0x66}, wire...)
	p := NewParser(DefaultCapacity)
	frames := feedAll(t, p, in)
	if len(frames) != 1 {
		t.Fatalf("frames: got %d want 1", len(frames))
	}
	if !frames[0].Valid() {
		t.Fatalf("expected valid frame after resync, crc=%#04x", frames[0].CRC())
	}
	if !bytes.Equal(frames[0].Payload(), []byte{0x10, 0xAA, 0xBB}) {
		t.Fatalf("payload: got %X", frames[0].Payload())
	}
}

func TestParser_OrderPreserved(t *testing.T) {
	w1, err := Build(0x01, []byte{0x11}, DefaultCapacity)
	if err != nil {
		t.Fatalf("build f1: %v", err)
	}
	w2, err := Build(0x02, []byte{0x22}, DefaultCapacity)
	if err != nil {
		t.Fatalf("build f2: %v", err)
	}
	p := NewParser(DefaultCapacity)
	frames := feedAll(t, p, append(append([]byte{}, w1...), w2...))
	if len(frames) != 2 {
		t.Fatalf("frames: got %d want 2", len(frames))
	}
	if frames[0].Command() != 0x01 || frames[1].Command() != 0x02 {
		t.Fatalf("order: got %#02x %#02x", frames[0].Command(), frames[1].Command())
	}
}

func TestParser_CorruptedFrameReportedInvalid(t *testing.T) {
	wire, err := Build(0x03, []byte{0x99}, DefaultCapacity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	wire[3] ^= 0x01 // 破坏一个载荷字节
	p := NewParser(DefaultCapacity)
	frames := feedAll(t, p, wire)
	if len(frames) != 1 {
		t.Fatalf("frames: got %d want 1", len(frames))
	}
	if frames[0].Valid() {
		t.Fatalf("corrupted frame must not be valid")
	}
	if !frames[0].Complete() {
		t.Fatalf("corrupted frame is still complete")
	}
}

func TestParser_EscapedControlValues(t *testing.T) {
	// 载荷包含全部三个控制字节值，经转义后必须原样还原
	payload := []byte{StartByte, EscapeByte, StopByte}
	wire, err := Build(0x10, payload, DefaultCapacity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	p := NewParser(DefaultCapacity)
	frames := feedAll(t, p, wire)
	if len(frames) != 1 {
		t.Fatalf("frames: got %d want 1", len(frames))
	}
	if !frames[0].Valid() {
		t.Fatalf("expected valid frame, crc=%#04x", frames[0].CRC())
	}
	want := append([]byte{0x10}, payload...)
	if !bytes.Equal(frames[0].Payload(), want) {
		t.Fatalf("payload: got %X want %X", frames[0].Payload(), want)
	}
}

func TestParser_CapacityBoundary(t *testing.T) {
	const n = 8
	// 恰好 N 个逻辑字节：成功
	p := NewParser(n)
	if _, err := p.Feed(StartByte); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < n; i++ {
		if _, err := p.Feed(0x42); err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
	}
	// 第 N+1 个逻辑字节：容量超限
	if _, err := p.Feed(0x42); err != ErrCapacityExceeded {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	// 超限后解析器已强制回到空闲态：后续完整帧仍可解析
	wire, err := Build(0x01, nil, DefaultCapacity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	frames := feedAll(t, p, wire)
	if len(frames) != 1 || !frames[0].Valid() {
		t.Fatalf("parser did not recover after capacity error: %d frames", len(frames))
	}
}

func TestParser_FrameStorageReused(t *testing.T) {
	p := NewParser(DefaultCapacity)
	w1, _ := Build(0x01, []byte{0xAA}, DefaultCapacity)
	w2, _ := Build(0x02, []byte{0xBB}, DefaultCapacity)
	f1 := feedAll(t, p, w1)[0]
	got := append([]byte{}, f1.Payload()...)
	// 产出帧在下一帧完成前保持稳定
	f2 := feedAll(t, p, w2)[0]
	if !bytes.Equal(got, []byte{0x01, 0xAA}) || !bytes.Equal(f2.Payload(), []byte{0x02, 0xBB}) {
		t.Fatalf("payloads: %X / %X", got, f2.Payload())
	}
	if f1 == f2 {
		t.Fatalf("consecutive frames must come from alternating slots")
	}
}
