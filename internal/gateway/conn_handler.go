package gateway

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/stonefoxes/shproto-server/internal/config"
	"github.com/stonefoxes/shproto-server/internal/metrics"
	"github.com/stonefoxes/shproto-server/internal/protocol/shproto"
	"github.com/stonefoxes/shproto-server/internal/session"
	pgstorage "github.com/stonefoxes/shproto-server/internal/storage/pg"
	"github.com/stonefoxes/shproto-server/internal/tcpserver"
)

// NewConnHandler 构建 TCP 连接处理器，完成协议解析、会话绑定、
// 帧流水落库与指标上报。journal 为 nil 时跳过落库。
func NewConnHandler(
	protoCfg cfgpkg.ProtocolConfig,
	sess session.Manager,
	appm *metrics.AppMetrics,
	journal *pgstorage.Repository,
	names *shproto.CommandNames,
	logger *zap.Logger,
) func(*tcpserver.ConnContext) {
	if names == nil {
		names = shproto.DefaultCommandNames()
	}
	return func(cc *tcpserver.ConnContext) {
		a := shproto.NewAdapter(protoCfg.MaxFrameBytes)
		if logger != nil {
			a.SetLogger(logger)
		}

		linkID := cc.RemoteAddr().String()
		var bound bool
		var journalLinkID int64
		bindIfNeeded := func() {
			if !bound {
				bound = true
				sess.Bind(linkID, cc)
				if journal != nil {
					id, err := journal.EnsureLink(context.Background(), linkID)
					if err != nil {
						if logger != nil {
							logger.Warn("ensure link failed", zap.String("link", linkID), zap.Error(err))
						}
					} else {
						journalLinkID = id
					}
				}
			}
		}

		// 每个完整帧（含校验失败的）：计数 + 落库；有效帧同时视作心跳
		a.SetOnFrame(func(f *shproto.Frame) {
			result := "invalid"
			if f.Valid() {
				result = "valid"
				bindIfNeeded()
				sess.OnHeartbeat(linkID, time.Now())
				if appm != nil {
					appm.HeartbeatTotal.Inc()
					appm.OnlineGauge.Set(float64(sess.OnlineCount(time.Now())))
				}
			}
			if appm != nil {
				appm.FrameTotal.WithLabelValues(result).Inc()
			}
			if journal != nil && journalLinkID > 0 && f.Len() > 0 {
				// 帧存储会被后续帧复用，落库前复制负载
				payload := append([]byte(nil), f.Body()...)
				if err := journal.InsertFrameLog(context.Background(), journalLinkID, int(f.Command()), payload, f.Valid(), f.CRC()); err != nil {
					if logger != nil {
						logger.Warn("frame journal failed", zap.String("link", linkID), zap.Error(err))
					}
				}
			}
		})

		a.SetOnError(func(err error) {
			if appm != nil {
				appm.CapacityErrTotal.Inc()
			}
		})

		routeMetric := func(cmd byte) {
			if appm != nil {
				appm.RouteTotal.WithLabelValues(fmt.Sprintf("%02X", cmd)).Inc()
			}
		}

		// 0x01 ping: 回复 0x02 pong，负载原样回显
		a.Register(0x01, func(f *shproto.Frame) error {
			routeMetric(f.Command())
			wire, err := shproto.Build(0x02, f.Body(), protoCfg.MaxFrameBytes)
			if err != nil {
				return err
			}
			return cc.Write(wire)
		})

		// 0x03 status: 状态上报，仅记日志（落库由 OnFrame 统一完成）
		a.Register(0x03, func(f *shproto.Frame) error {
			routeMetric(f.Command())
			if logger != nil {
				logger.Debug("status report",
					zap.String("link", linkID),
					zap.Int("payload_len", len(f.Body())),
				)
			}
			return nil
		})

		// 0x10 data_report: 回复 0x11 data_ack，负载取上报首字节作为序号回执
		a.Register(0x10, func(f *shproto.Frame) error {
			routeMetric(f.Command())
			var ack []byte
			if p := f.Body(); len(p) > 0 {
				ack = p[:1]
			}
			wire, err := shproto.Build(0x11, ack, protoCfg.MaxFrameBytes)
			if err != nil {
				return err
			}
			return cc.Write(wire)
		})

		// 0x21 config_ack: 参数下发确认
		a.Register(0x21, func(f *shproto.Frame) error {
			routeMetric(f.Command())
			if logger != nil {
				logger.Info("config ack",
					zap.String("link", linkID),
					zap.String("cmd", names.Name(int(f.Command()))),
				)
			}
			return nil
		})

		mux := tcpserver.NewMux(a)
		mux.SetServer(cc.Server())
		mux.BindToConn(cc)

		go func() {
			<-cc.Done()
			if bound {
				sess.UnbindByLink(linkID)
				sess.OnTCPClosed(linkID, time.Now())
				if appm != nil {
					appm.OnlineGauge.Set(float64(sess.OnlineCount(time.Now())))
				}
			}
		}()
	}
}
