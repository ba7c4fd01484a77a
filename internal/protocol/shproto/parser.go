package shproto

// parserState 解析器状态
type parserState uint8

const (
	stateStart   parserState = iota // 空闲，等待 START 同步
	stateData                       // 累积受保护字节
	stateEscaped                    // 前一字节为 ESCAPE
)

// Parser 单字节推进的流式解析器：从带噪声的字节流中重建帧。
// 残帧、截断帧在下一个 START 出现时被整体丢弃并重新开帧（静默重同步，
// 不上报错误）。非并发安全，每个实例独占其在制帧。
//
// 历史上同协议曾有过一个四状态变体，在 STOP 之后用专门状态收两个
// CRC 字节，但编码侧 CRC 字节先于 STOP 上线，两侧互相矛盾；
// 此处采用三状态设计：STOP 直接封帧，CRC 字节早已按普通数据折入。
type Parser struct {
	state parserState
	cur   *Frame // 在制帧
	out   *Frame // 最近一次封帧的产出槽（与 cur 乒乓复用）
}

// NewParser 创建解析器。capacity 为单帧受保护区的逻辑字节上限，
// 固定于构造期，不支持运行时调整；<=0 时取 DefaultCapacity。
// 两个帧槽在此一次分配，此后喂入路径零分配。
func NewParser(capacity int) *Parser {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Parser{cur: newFrame(capacity), out: newFrame(capacity)}
}

// Feed 推进一个字节。帧未完成或处于空闲时返回 (nil, nil)；
// 每个 START…STOP 区间在 STOP 处恰好产出一帧——包括 CRC 校验失败的
// 无效帧，由消费方自行过滤。畸形区间不产出任何帧。
// 容量超限返回 ErrCapacityExceeded 并强制回到空闲状态，
// 由调用方决定放弃还是继续喂入后续字节。
// 产出帧的存储会在再下一帧开帧后复用，需长期持有请拷贝 Bytes()。
func (p *Parser) Feed(b byte) (*Frame, error) {
	switch p.state {
	case stateStart:
		if b == StartByte {
			p.cur.reset()
			p.state = stateData
		}
		// 其余字节（含 ESCAPE/STOP）在空闲态一律忽略
	case stateData:
		switch b {
		case StartByte:
			// 重同步：在制帧整体丢弃，重新开帧
			p.cur.reset()
		case EscapeByte:
			p.state = stateEscaped
		case StopByte:
			p.cur.seal()
			p.cur, p.out = p.out, p.cur
			p.state = stateStart
			return p.out, nil
		default:
			if err := p.cur.appendByte(b); err != nil {
				p.state = stateStart
				return nil, err
			}
		}
	case stateEscaped:
		// ESCAPE 之后必为数据：即使取反前的值恰好等于控制字节，
		// 也按转义字面量处理
		if err := p.cur.appendByte(^b); err != nil {
			p.state = stateStart
			return nil, err
		}
		p.state = stateData
	}
	return nil, nil
}

// Reset 丢弃在制帧并回到空闲状态
func (p *Parser) Reset() {
	p.cur.reset()
	p.state = stateStart
}
