package shproto

import "errors"

// 控制字节：协议保留值，受保护区内不允许字面出现
const (
	SyncByte   byte = 0xFF // 同步前导字节（不转义、不计入CRC）
	StartByte  byte = 0xFE // 帧起始
	EscapeByte byte = 0xFD // 转义标记，其后一个字节为按位取反的原值
	StopByte   byte = 0xA5 // 帧结束
)

// DefaultCapacity 默认单帧容量（字节）
const DefaultCapacity = 256

var (
	// ErrCapacityExceeded 追加字节将超出固定容量
	ErrCapacityExceeded = errors.New("frame capacity exceeded")
)

// isControl 判断是否为需转义的控制字节
func isControl(b byte) bool {
	return b == StartByte || b == EscapeByte || b == StopByte
}
