package tcpserver

import (
	"go.uber.org/zap"

	padapter "github.com/stonefoxes/shproto-server/internal/protocol/adapter"
	"github.com/stonefoxes/shproto-server/internal/protocol/shproto"
)

// Mux 协议复用器：首包前缀初判 -> 绑定协议 -> 直通处理
type Mux struct {
	adapters []padapter.Adapter
	server   *Server
}

func NewMux(adapters ...padapter.Adapter) *Mux { return &Mux{adapters: adapters} }

// SetServer 设置server引用（用于日志）
func (m *Mux) SetServer(s *Server) { m.server = s }

// BindToConn 为连接安装 onRead，根据首包前缀判断协议后固定处理路径
func (m *Mux) BindToConn(cc *ConnContext) {
	var decided bool
	var handler func([]byte)

	cc.SetOnRead(func(p []byte) {
		if !decided {
			// 取前缀若干字节用于初判
			pref := p
			if len(pref) > 8 {
				pref = pref[:8]
			}
			for _, a := range m.adapters {
				if a.Sniff(pref) {
					aa := a
					handler = func(b []byte) { _ = aa.ProcessBytes(b) }
					switch aa.(type) {
					case *shproto.Adapter:
						cc.SetProtocol("shproto")
					default:
						cc.SetProtocol("")
					}
					if m.server != nil && m.server.logger != nil {
						m.server.logger.Info("protocol identified",
							zap.String("remote_addr", cc.RemoteAddr().String()),
							zap.String("protocol", cc.Protocol()),
						)
					}
					decided = true
					break
				}
			}
			if !decided {
				// 未识别，尝试全部投递一次（容错），后续仍可被识别
				if m.server != nil && m.server.logger != nil {
					m.server.logger.Warn("unknown protocol prefix",
						zap.String("remote_addr", cc.RemoteAddr().String()),
						zap.Int("data_len", len(p)),
					)
				}
				for _, a := range m.adapters {
					_ = a.ProcessBytes(p)
				}
				return
			}
		}
		if handler != nil {
			handler(p)
		}
	})
}
