package shproto

// Builder 组帧器：把命令与载荷序列化为自定界、CRC保护的线格式。
// 缓冲区为构造时一次分配的固定容量，容量覆盖整个线格式
// （前导、转义展开后的受保护区与 STOP）。
// Complete 不做重入保护：重复调用会二次追加 CRC/STOP，属调用方错误。
type Builder struct {
	buf       []byte
	n         int
	crc       CRC16
	completed bool
	valid     bool
}

// builderMinCapacity 前导(2) + 最小受保护区 + STOP(1)
const builderMinCapacity = 8

// NewBuilder 创建组帧器并写入前导：0xFF 同步字节与字面 START，
// 两者均不转义、不计入 CRC。capacity<=0 时取 DefaultCapacity，
// 过小的容量会被提升到最小可用值。
func NewBuilder(capacity int) *Builder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if capacity < builderMinCapacity {
		capacity = builderMinCapacity
	}
	b := &Builder{buf: make([]byte, capacity), crc: NewCRC16()}
	b.buf[0] = SyncByte
	b.buf[1] = StartByte
	b.n = 2
	return b
}

// appendProtected 受保护追加：折入 CRC 后写入线格式，
// 控制字节展开为 [ESCAPE, ^b] 两字节（取反自逆，解码用同一运算）。
func (b *Builder) appendProtected(v byte) error {
	need := 1
	if isControl(v) {
		need = 2
	}
	if b.n+need > len(b.buf) {
		return ErrCapacityExceeded
	}
	b.crc = b.crc.Update(v)
	if need == 2 {
		b.buf[b.n] = EscapeByte
		b.buf[b.n+1] = ^v
		b.n += 2
		return nil
	}
	b.buf[b.n] = v
	b.n++
	return nil
}

// Start 追加命令字节（与载荷走同一受保护路径）
func (b *Builder) Start(cmd byte) error {
	return b.appendProtected(cmd)
}

// AddByte 追加一个载荷字节
func (b *Builder) AddByte(v byte) error {
	return b.appendProtected(v)
}

// AddBytes 依次追加多个载荷字节
func (b *Builder) AddBytes(p []byte) error {
	for _, v := range p {
		if err := b.appendProtected(v); err != nil {
			return err
		}
	}
	return nil
}

// Complete 封帧：把当前 CRC 的低、高字节依次走受保护路径追加
// （每个字节继续折入 CRC），再写入一个字面 STOP。
// CRC 字节与载荷同路径转义，保证受保护区内任意字节碰上控制值
// 都以同一方式编码，且归零自校验在任何位置都成立。
func (b *Builder) Complete() error {
	crc := b.crc.Sum16()
	if err := b.appendProtected(byte(crc & 0xFF)); err != nil {
		return err
	}
	if err := b.appendProtected(byte(crc >> 8)); err != nil {
		return err
	}
	if b.n+1 > len(b.buf) {
		return ErrCapacityExceeded
	}
	b.buf[b.n] = StopByte
	b.n++
	b.completed = true
	b.valid = b.crc == 0
	return nil
}

// Bytes 当前已产出的线格式字节
func (b *Builder) Bytes() []byte { return b.buf[:b.n] }

// CRC 当前累加值（Complete 之后恒为 0）
func (b *Builder) CRC() uint16 { return b.crc.Sum16() }

// Completed 是否已封帧
func (b *Builder) Completed() bool { return b.completed }

// Valid 仅当已封帧且累加值归零时为真
func (b *Builder) Valid() bool { return b.valid }

// Build 便捷组帧：一次构造 command+payload 的完整线格式
func Build(cmd byte, payload []byte, capacity int) ([]byte, error) {
	b := NewBuilder(capacity)
	if err := b.Start(cmd); err != nil {
		return nil, err
	}
	if err := b.AddBytes(payload); err != nil {
		return nil, err
	}
	if err := b.Complete(); err != nil {
		return nil, err
	}
	out := make([]byte, b.n)
	copy(out, b.Bytes())
	return out, nil
}
