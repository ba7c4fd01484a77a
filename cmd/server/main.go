package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stonefoxes/shproto-server/internal/api"
	cfgpkg "github.com/stonefoxes/shproto-server/internal/config"
	"github.com/stonefoxes/shproto-server/internal/gateway"
	"github.com/stonefoxes/shproto-server/internal/health"
	"github.com/stonefoxes/shproto-server/internal/httpserver"
	"github.com/stonefoxes/shproto-server/internal/logging"
	"github.com/stonefoxes/shproto-server/internal/metrics"
	"github.com/stonefoxes/shproto-server/internal/protocol/shproto"
	"github.com/stonefoxes/shproto-server/internal/session"
	"github.com/stonefoxes/shproto-server/internal/storage/gormrepo"
	pgstorage "github.com/stonefoxes/shproto-server/internal/storage/pg"
	redisstorage "github.com/stonefoxes/shproto-server/internal/storage/redis"
	"github.com/stonefoxes/shproto-server/internal/tcpserver"
)

func main() {
	// 1) 加载配置
	cfg, err := cfgpkg.Load("")
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 指标注册与处理器
	reg := metrics.NewRegistry()
	metricsHandler := metrics.Handler(reg)
	appm := metrics.NewAppMetrics(reg)

	// 4) 命令名称映射
	names := shproto.DefaultCommandNames()
	if cfg.Protocol.CommandNamesFile != "" {
		loaded, err := shproto.LoadCommandNames(cfg.Protocol.CommandNamesFile)
		if err != nil {
			log.Warn("load command names failed, using defaults", zap.Error(err))
		} else {
			names = loaded
		}
	}

	// 5) 存储（可选）：pgx 热路径写入 + GORM 读侧查询
	var journal *pgstorage.Repository
	var readRepo *gormrepo.Repository
	if cfg.Database.Enable {
		pool, err := pgstorage.NewPool(context.Background(), cfg.Database.DSN,
			cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, log)
		if err != nil {
			log.Fatal("pg pool init error", zap.Error(err))
		}
		defer pool.Close()
		journal = &pgstorage.Repository{Pool: pool}

		readRepo, err = gormrepo.Open(cfg.Database.DSN)
		if err != nil {
			log.Fatal("gorm open error", zap.Error(err))
		}
		log.Info("database enabled", zap.Int("max_open", cfg.Database.MaxOpenConns))
	}

	// 6) 会话管理：Redis 可用时用于多实例部署，否则内存实现
	var rdb *redisstorage.Client
	var sess session.Manager
	if cfg.Redis.Enable {
		rdb, err = redisstorage.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal("redis init error", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		sess = session.NewRedisManager(rdb.Client, cfg.App.Name, cfg.Session.HeartbeatTimeout)
		log.Info("redis session manager enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		sess = session.New(cfg.Session.HeartbeatTimeout)
	}

	// 7) 健康检查聚合器
	agg := health.NewAggregator()
	if journal != nil {
		agg.AddChecker(health.NewDatabaseChecker(journal.Pool))
	}
	if rdb != nil {
		agg.AddChecker(health.NewRedisChecker(rdb))
	}

	// 8) HTTP 服务与查询路由
	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return agg.Ready(ctx)
	})
	health.RegisterHTTPRoutes(httpSrv.Engine(), agg)
	api.RegisterRoutes(httpSrv.Engine(), readRepo, sess, names, cfg.Protocol.MaxFrameBytes, log)

	// 9) TCP 网关
	tcpSrv := tcpserver.New(cfg.TCP, log)
	agg.AddChecker(health.NewTCPChecker(tcpSrv))
	tcpSrv.SetOnConn(gateway.NewConnHandler(cfg.Protocol, sess, appm, journal, names, log))
	tcpSrv.SetMetricsCallbacks(
		func() { appm.TCPAccepted.Inc() },
		func(n int) { appm.TCPBytesReceived.Add(float64(n)) },
	)

	// 并行启动
	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()
	if err := tcpSrv.Start(); err != nil {
		log.Fatal("tcp server start error", zap.Error(err))
	}
	log.Info("shproto server started",
		zap.String("tcp", cfg.TCP.Addr),
		zap.String("http", cfg.HTTP.Addr),
		zap.Int("max_frame_bytes", cfg.Protocol.MaxFrameBytes),
	)

	// 信号处理，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	_ = tcpSrv.Shutdown(ctx)
	log.Info("shproto server stopped")
}
