package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"ip-verify/internal/metrics"
)

// 文档注释：受信代理的转发头归一化
// 背景：部署在负载均衡之后时，直连对端是代理而非客户端；仅当直连对端属于受信网段时，才用 X-Forwarded-For 改写 RemoteAddr。
// 约束：
// 1) 未配置任何受信 IP/CIDR 时不启用，RemoteAddr 保持原样；
// 2) 从右向左跳过受信条目，取第一个非受信条目；全部受信时取最左条目；
// 3) 遇到无法解析的条目时放弃改写；
// 4) 不修改任何请求头，下游仍能看到原始头部。
type Forwarded struct {
	l          *slog.Logger
	allowIPs   map[string]struct{}
	allowCIDRs []*net.IPNet
}

// NewForwarded：ips 为单 IP，cidrs 支持 v4/v6；local 为 true 时信任 127.0.0.1 与 ::1
func NewForwarded(l *slog.Logger, ips, cidrs []string, local bool) *Forwarded {
	f := &Forwarded{l: l, allowIPs: map[string]struct{}{}}
	for _, p := range ips {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			f.allowIPs[ip.String()] = struct{}{}
		} else {
			l.Warn("forwarded_bad_ip", "value", p)
		}
	}
	for _, c := range cidrs {
		if _, n, err := net.ParseCIDR(strings.TrimSpace(c)); err == nil {
			f.allowCIDRs = append(f.allowCIDRs, n)
		} else {
			l.Warn("forwarded_bad_cidr", "value", c, "err", err)
		}
	}
	if local {
		f.allowIPs["127.0.0.1"] = struct{}{}
		f.allowIPs["::1"] = struct{}{}
	}
	return f
}

func (f *Forwarded) Enabled() bool { return len(f.allowIPs) > 0 || len(f.allowCIDRs) > 0 }

func (f *Forwarded) Wrap(next http.Handler) http.Handler {
	if !f.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if addr, ok := f.rewrite(r); ok {
			f.l.Debug("forwarded_rewrite", "from", r.RemoteAddr, "to", addr)
			metrics.ForwardedRewritesTotal.Inc()
			r2 := r.Clone(r.Context())
			r2.RemoteAddr = addr
			r = r2
		}
		next.ServeHTTP(w, r)
	})
}

// rewrite：返回改写后的 RemoteAddr（保留原端口）
func (f *Forwarded) rewrite(r *http.Request) (string, bool) {
	host, port, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
		port = "0"
	}
	peer := net.ParseIP(host)
	if peer == nil || !f.trusted(peer) {
		return "", false
	}
	raw := r.Header.Values("X-Forwarded-For")
	if len(raw) == 0 {
		return "", false
	}
	var entries []string
	for _, v := range raw {
		entries = append(entries, strings.Split(v, ",")...)
	}
	var chosen net.IP
	for i := len(entries) - 1; i >= 0; i-- {
		ip := net.ParseIP(strings.TrimSpace(entries[i]))
		if ip == nil {
			f.l.Debug("forwarded_bad_entry", "value", entries[i])
			return "", false
		}
		chosen = ip
		if !f.trusted(ip) {
			break
		}
	}
	if chosen == nil {
		return "", false
	}
	return net.JoinHostPort(chosen.String(), port), true
}

func (f *Forwarded) trusted(ip net.IP) bool {
	if _, ok := f.allowIPs[ip.String()]; ok {
		return true
	}
	for _, n := range f.allowCIDRs {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
