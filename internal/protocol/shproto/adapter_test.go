package shproto

import (
	"bytes"
	"testing"
)

func TestAdapter_RouteAndSniff(t *testing.T) {
	a := NewAdapter(DefaultCapacity)
	var gotCmd byte
	var gotPayload []byte
	a.Register(0x10, func(f *Frame) error {
		gotCmd = f.Command()
		gotPayload = append([]byte{}, f.Payload()...)
		return nil
	})

	wire, err := Build(0x10, []byte{0xDE, 0xAD}, DefaultCapacity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !a.Sniff(wire[:2]) {
		t.Fatalf("sniff rejected shproto preamble")
	}
	if a.Sniff([]byte{0x44, 0x4E}) {
		t.Fatalf("sniff accepted foreign prefix")
	}
	if err := a.ProcessBytes(wire); err != nil {
		t.Fatalf("process: %v", err)
	}
	if gotCmd != 0x10 || !bytes.Equal(gotPayload, []byte{0x10, 0xDE, 0xAD}) {
		t.Fatalf("routed cmd=%#02x payload=%X", gotCmd, gotPayload)
	}
}

func TestAdapter_SplitAcrossReads(t *testing.T) {
	// 转义对与帧边界被任意读段切开也必须正确重组
	a := NewAdapter(DefaultCapacity)
	var count int
	a.Register(0x10, func(f *Frame) error { count++; return nil })

	wire, err := Build(0x10, []byte{StartByte, StopByte}, DefaultCapacity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i := range wire {
		if err := a.ProcessBytes(wire[i : i+1]); err != nil {
			t.Fatalf("process byte %d: %v", i, err)
		}
	}
	if count != 1 {
		t.Fatalf("routed frames: got %d want 1", count)
	}
}

func TestAdapter_InvalidFrameNotRouted(t *testing.T) {
	a := NewAdapter(DefaultCapacity)
	var routed, seen, invalid int
	a.Register(0x03, func(f *Frame) error { routed++; return nil })
	a.SetOnFrame(func(f *Frame) {
		seen++
		if !f.Valid() {
			invalid++
		}
	})

	wire, err := Build(0x03, []byte{0x99}, DefaultCapacity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	wire[3] ^= 0xFF
	if err := a.ProcessBytes(wire); err != nil {
		t.Fatalf("process: %v", err)
	}
	if routed != 0 {
		t.Fatalf("invalid frame reached handler")
	}
	if seen != 1 || invalid != 1 {
		t.Fatalf("frame callback: seen=%d invalid=%d", seen, invalid)
	}
}
