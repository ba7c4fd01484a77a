package shproto

// Frame 解析器重建出的一帧：受保护区按去转义后的逻辑形式存放，
// 依次为命令字节、载荷字节与两个尾随 CRC 字节。
// 存储为构造时一次分配的固定容量缓冲区，跨帧原地复用。
type Frame struct {
	data      []byte
	n         int
	crc       CRC16
	completed bool
	valid     bool
}

func newFrame(capacity int) *Frame {
	return &Frame{data: make([]byte, capacity), crc: NewCRC16()}
}

// reset 复位为空帧（长度清零，CRC 重新播种，存储复用）
func (f *Frame) reset() {
	f.n = 0
	f.crc = NewCRC16()
	f.completed = false
	f.valid = false
}

// appendByte 受保护追加：先折入 CRC，再存入逻辑字节。
// 超出固定容量返回 ErrCapacityExceeded，不做静默截断。
func (f *Frame) appendByte(b byte) error {
	if f.n >= len(f.data) {
		return ErrCapacityExceeded
	}
	f.crc = f.crc.Update(b)
	f.data[f.n] = b
	f.n++
	return nil
}

// seal 封帧：STOP 已出现，CRC 尾字节此前已作为普通数据折入，
// 因此累加值为零即代表整帧无损。
func (f *Frame) seal() {
	f.completed = true
	f.valid = f.crc == 0
}

// Bytes 返回受保护区的逻辑字节（命令 + 载荷 + 两个CRC尾字节）。
// 返回的切片引用内部缓冲，仅在下一帧开始前有效，需长期持有请拷贝。
func (f *Frame) Bytes() []byte { return f.data[:f.n] }

// Command 命令字节；空帧返回 0
func (f *Frame) Command() byte {
	if f.n == 0 {
		return 0
	}
	return f.data[0]
}

// Payload 命令与载荷（剥掉两个CRC尾字节）；不足两字节时返回全部
func (f *Frame) Payload() []byte {
	if f.n < 2 {
		return f.data[:f.n]
	}
	return f.data[:f.n-2]
}

// Body 命令字节之后的载荷（剥掉命令与CRC尾字节）
func (f *Frame) Body() []byte {
	p := f.Payload()
	if len(p) == 0 {
		return p
	}
	return p[1:]
}

// Len 受保护区逻辑字节数
func (f *Frame) Len() int { return f.n }

// CRC 当前累加值（封帧后有效帧恒为 0）
func (f *Frame) CRC() uint16 { return f.crc.Sum16() }

// Complete STOP 是否已终止本帧
func (f *Frame) Complete() bool { return f.completed }

// Valid 仅当 Complete 且累加值归零时为真
func (f *Frame) Valid() bool { return f.valid }
