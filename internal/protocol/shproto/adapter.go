package shproto

import "go.uber.org/zap"

// Adapter shproto 协议适配器：逐字节流式解析 + 命令路由。
// 无效帧（CRC 不归零）不进入路由，但会通过 OnFrame 回调上报，
// 由上层决定丢弃或记账——解析层从不静默吞帧。
type Adapter struct {
	parser  *Parser
	table   *Table
	onFrame func(f *Frame)
	onErr   func(err error)
	logger  *zap.Logger
}

// NewAdapter 创建适配器，capacity 为单帧受保护区逻辑字节上限
func NewAdapter(capacity int) *Adapter {
	return &Adapter{parser: NewParser(capacity), table: NewTable()}
}

// SetLogger 设置日志器
func (a *Adapter) SetLogger(l *zap.Logger) { a.logger = l }

// SetOnFrame 安装每帧回调（有效与无效帧都会触发，先于路由）
func (a *Adapter) SetOnFrame(fn func(f *Frame)) { a.onFrame = fn }

// SetOnError 安装解析错误回调（容量超限等）
func (a *Adapter) SetOnError(fn func(err error)) { a.onErr = fn }

// Register 注册指令处理器
func (a *Adapter) Register(cmd byte, h Handler) { a.table.Register(cmd, h) }

// ProcessBytes 处理上行字节流：逐字节喂入解析器并路由完整帧。
// 容量超限时解析器已强制重同步，剩余字节继续喂入不中断；
// 最后一次解析错误作为返回值上报。
func (a *Adapter) ProcessBytes(p []byte) error {
	var lastErr error
	for _, b := range p {
		f, err := a.parser.Feed(b)
		if err != nil {
			if a.logger != nil {
				a.logger.Warn("shproto feed error", zap.Error(err))
			}
			if a.onErr != nil {
				a.onErr(err)
			}
			lastErr = err
			continue
		}
		if f == nil {
			continue
		}
		if a.onFrame != nil {
			a.onFrame(f)
		}
		if !f.Valid() {
			if a.logger != nil {
				a.logger.Warn("shproto invalid frame",
					zap.Uint8("cmd", f.Command()),
					zap.Int("len", f.Len()),
					zap.Uint16("crc", f.CRC()),
				)
			}
			continue
		}
		if err := a.table.Route(f); err != nil {
			return err
		}
	}
	return lastErr
}

// Sniff 初判是否为 shproto 协议（检查 0xFF 0xFE 前导）
func (a *Adapter) Sniff(prefix []byte) bool {
	if len(prefix) < 2 {
		return false
	}
	return prefix[0] == SyncByte && prefix[1] == StartByte
}
