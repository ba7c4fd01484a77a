package shproto

// CRC16 反射型 CRC-16 累加器（多项式 0xA001，初值 0xFFFF）。
// 该多项式的特性：把 CRC 自身的两个小端字节按同一路径回灌后，
// 完整无损帧的累加值恰好归零，接收端无需单独做期望值比对。
type CRC16 uint16

// NewCRC16 返回种子为 0xFFFF 的累加器
func NewCRC16() CRC16 { return 0xFFFF }

// Update 折入一个字节，返回新的累加值
func (c CRC16) Update(b byte) CRC16 {
	crc := uint16(c) ^ uint16(b)
	for i := 0; i < 8; i++ {
		if crc&0x0001 != 0 {
			crc = (crc >> 1) ^ 0xA001
		} else {
			crc >>= 1
		}
	}
	return CRC16(crc)
}

// Sum16 当前累加值
func (c CRC16) Sum16() uint16 { return uint16(c) }
