package tcpserver

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/stonefoxes/shproto-server/internal/config"
)

// Server TCP 网关：监听、按连接派生 ConnContext 并交给上层处理器
type Server struct {
	cfg        cfgpkg.TCPConfig
	ln         net.Listener
	wg         sync.WaitGroup
	stopC      chan struct{}
	logger     *zap.Logger
	nextConnID uint64

	limiter     *ConnectionLimiter
	rateLimiter *RateLimiter

	onConn      func(*ConnContext)
	onAccept    func()
	onRecvBytes func(n int)
}

// New 创建 TCP 网关
func New(cfg cfgpkg.TCPConfig, logger *zap.Logger) *Server {
	return &Server{
		cfg:         cfg,
		stopC:       make(chan struct{}),
		logger:      logger,
		limiter:     NewConnectionLimiter(cfg.MaxConnections, 0),
		rateLimiter: NewRateLimiter(cfg.AcceptRate, cfg.AcceptBurst),
	}
}

// GetLogger 返回日志器
func (s *Server) GetLogger() *zap.Logger { return s.logger }

// Addr 返回实际监听地址（Start 之后有效）
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ActiveConnections 当前活跃连接数
func (s *Server) ActiveConnections() int { return s.limiter.Current() }

// MaxConnections 最大并发连接数
func (s *Server) MaxConnections() int { return s.limiter.MaxConnections() }

// RejectedConnections 因连接数上限被拒绝的累计次数
func (s *Server) RejectedConnections() int64 { return s.limiter.RejectedCount() }

// SetOnConn 设置新连接回调（由网关装配协议处理链）
func (s *Server) SetOnConn(h func(*ConnContext)) { s.onConn = h }

// SetMetricsCallbacks 设置指标回调
func (s *Server) SetMetricsCallbacks(onAccept func(), onRecvBytes func(int)) {
	s.onAccept, s.onRecvBytes = onAccept, onRecvBytes
}

// Start 监听并接受连接（非阻塞，内部 goroutine）
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				select {
				case <-s.stopC:
					return
				default:
				}
				// 短暂错误等待后重试
				time.Sleep(50 * time.Millisecond)
				continue
			}

			// 接入速率限制：超出直接断开
			if !s.rateLimiter.Allow() {
				if s.logger != nil {
					s.logger.Warn("accept rate limited",
						zap.String("remote_addr", conn.RemoteAddr().String()))
				}
				_ = conn.Close()
				continue
			}
			// 并发连接数限制
			if err := s.limiter.Acquire(context.Background()); err != nil {
				if s.logger != nil {
					s.logger.Warn("connection limit reached",
						zap.String("remote_addr", conn.RemoteAddr().String()),
						zap.Error(err))
				}
				_ = conn.Close()
				continue
			}

			if s.onAccept != nil {
				s.onAccept()
			}

			cc := newConnContext(s, conn)
			if s.onConn != nil {
				s.onConn(cc)
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer s.limiter.Release()
				cc.run()
			}()
		}
	}()
	return nil
}

// Shutdown 优雅关闭监听并等待连接退出
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopC)
	if s.ln != nil {
		_ = s.ln.Close()
	}
	ch := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(ch)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}
