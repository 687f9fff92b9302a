package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ip-verify/internal/geo"
	"ip-verify/internal/logger"
	"ip-verify/internal/metrics"
)

// logTimeLayout：记录行时间戳，UTC
const logTimeLayout = "2006-01-02 15:04:05"

const healthCheckMessage = "Health check ignored"

// LineAppender：记录落地目标，sink 包中的实现均满足该接口
type LineAppender interface {
	Append(ctx context.Context, line string) error
}

// 文档注释：转发头验证处理器
// 背景：回显服务端眼中的客户端身份（解析后的 IP、代理相关头部、全部头部），用于核对负载均衡/反向代理的转发头配置。
// 约束：处理器不持有跨请求的可变状态；记录写入为同步、尽力而为、不重试。
type VerifyHandler struct {
	sink           LineAppender
	geo            geo.Lookuper
	healthPatterns []string
	l              *slog.Logger
	now            func() time.Time
}

type Option func(*VerifyHandler)

// WithHealthCheckPatterns：User-Agent 包含任一片段（区分大小写）即视为健康检查
func WithHealthCheckPatterns(patterns ...string) Option {
	return func(h *VerifyHandler) {
		h.healthPatterns = nil
		for _, p := range patterns {
			if p != "" {
				h.healthPatterns = append(h.healthPatterns, p)
			}
		}
	}
}

func WithGeo(g geo.Lookuper) Option { return func(h *VerifyHandler) { h.geo = g } }

func WithLogger(l *slog.Logger) Option { return func(h *VerifyHandler) { h.l = l } }

func WithClock(now func() time.Time) Option { return func(h *VerifyHandler) { h.now = now } }

func NewVerifyHandler(sink LineAppender, opts ...Option) *VerifyHandler {
	h := &VerifyHandler{
		sink:           sink,
		healthPatterns: []string{"ELB-HealthChecker"},
		now:            time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	if h.l == nil {
		h.l = logger.L()
	}
	return h
}

func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snap := takeSnapshot(r)

	if h.isHealthCheck(snap.userAgent) {
		metrics.HealthChecksSkippedTotal.Inc()
		h.l.Debug("verify_healthcheck_skip", "ua", deref(snap.userAgent), "remote", deref(snap.remoteAddress))
		h.writeJSON(w, healthCheckResult{Success: true, Message: healthCheckMessage})
		return
	}

	metrics.VerifyRequestsTotal.Inc()
	ts := h.now().UTC()
	clientIP := resolveClientIP(snap.xForwardedFor, snap.remoteAddress)

	line := formatLogLine(ts, clientIP, snap)
	if err := h.sink.Append(r.Context(), line); err != nil {
		// 记录失败不影响响应
		metrics.LogWritesTotal.WithLabelValues("fail").Inc()
		h.l.Error("verify_log_write_error", "err", err, "ip", deref(clientIP))
	} else {
		metrics.LogWritesTotal.WithLabelValues("ok").Inc()
	}

	res := verifyResult{
		ClientIP:          clientIP,
		XForwardedForFull: snap.xForwardedFor,
		Host:              snap.host,
		XForwardedHost:    snap.xForwardedHost,
		XForwardedProto:   snap.xForwardedProto,
		XForwardedPort:    snap.xForwardedPort,
		UserAgent:         snap.userAgent,
		RemoteAddress:     snap.remoteAddress,
		AllHeaders:        snap.all,
		Timestamp:         ts,
		Success:           true,
	}
	if h.geo != nil && clientIP != nil {
		if loc, ok := h.geo.Lookup(*clientIP); ok {
			res.ClientGeo = &loc
			metrics.GeoLookupsTotal.WithLabelValues("hit").Inc()
		} else {
			metrics.GeoLookupsTotal.WithLabelValues("miss").Inc()
		}
	}
	h.l.Debug("verify_ok",
		"method", r.Method,
		"path", r.URL.Path,
		"client_ip", deref(clientIP),
		"xff", deref(snap.xForwardedFor),
		"remote", deref(snap.remoteAddress),
	)
	h.writeJSON(w, res)
	metrics.RequestDurationMs.Observe(durationMs(time.Since(start)))
}

func (h *VerifyHandler) isHealthCheck(ua *string) bool {
	if ua == nil {
		return false
	}
	for _, p := range h.healthPatterns {
		if strings.Contains(*ua, p) {
			return true
		}
	}
	return false
}

func (h *VerifyHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.l.Error("verify_encode_error", "err", err)
	}
}

// durationMs：保留亚毫秒精度，直方图桶从 0.1ms 起
func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// formatLogLine：时间 | IP | Host | XFH | UA，缺失值写为空
func formatLogLine(ts time.Time, clientIP *string, s headerSnapshot) string {
	var b strings.Builder
	b.WriteString(ts.UTC().Format(logTimeLayout))
	b.WriteString(" | IP: ")
	b.WriteString(deref(clientIP))
	b.WriteString(" | Host: ")
	b.WriteString(deref(s.host))
	b.WriteString(" | XFH: ")
	b.WriteString(deref(s.xForwardedHost))
	b.WriteString(" | UA: ")
	b.WriteString(deref(s.userAgent))
	return b.String()
}
