package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	TCPAccepted      prometheus.Counter
	TCPBytesReceived prometheus.Counter
	FrameTotal       *prometheus.CounterVec // labels: result=valid|invalid
	RouteTotal       *prometheus.CounterVec // labels: cmd
	CapacityErrTotal prometheus.Counter     // 容量超限次数
	OnlineGauge      prometheus.Gauge       // 当前在线链路数
	HeartbeatTotal   prometheus.Counter     // 心跳（有效帧）计数
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		TCPAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_accept_total",
			Help: "Total accepted TCP connections.",
		}),
		TCPBytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_bytes_received_total",
			Help: "Total bytes received over TCP.",
		}),
		FrameTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shproto_frame_total",
			Help: "Completed shproto frames by CRC result.",
		}, []string{"result"}),
		RouteTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shproto_route_total",
			Help: "Routed shproto frames by command.",
		}, []string{"cmd"}),
		CapacityErrTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shproto_capacity_exceeded_total",
			Help: "Frames aborted because the fixed capacity was exceeded.",
		}),
		OnlineGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "session_online_count",
			Help: "Current number of online links.",
		}),
		HeartbeatTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "session_heartbeat_total",
			Help: "Total heartbeats observed.",
		}),
	}
	reg.MustRegister(m.TCPAccepted, m.TCPBytesReceived, m.FrameTotal, m.RouteTotal, m.CapacityErrTotal, m.OnlineGauge, m.HeartbeatTotal)
	return m
}
