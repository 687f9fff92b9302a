package api

import (
	"net"
	"net/http"
	"strings"
)

// 文档注释：解析客户端 IP
// 规则：X-Forwarded-For 首个值按逗号切分取第一段并去空白；头部缺失或结果为空时回退到传输层对端地址；两者都没有时返回 nil。
// 约束：不校验 IP 语法，也不区分受信代理；XFF 可被客户端伪造，本接口只用于诊断，不作为安全边界。
func resolveClientIP(xForwardedFor, remoteAddress *string) *string {
	if xForwardedFor != nil {
		first := strings.TrimSpace(strings.Split(*xForwardedFor, ",")[0])
		if first != "" {
			return &first
		}
	}
	return remoteAddress
}

// remoteHost：RemoteAddr 去掉端口；无法拆分时按原样返回，空值返回 nil
func remoteHost(addr string) *string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	if h, _, err := net.SplitHostPort(addr); err == nil {
		if h == "" {
			return nil
		}
		return &h
	}
	return &addr
}

// firstHeader：头部存在时返回首个值（可能为空字符串），不存在返回 nil
func firstHeader(h http.Header, name string) *string {
	vs := h.Values(name)
	if len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}

func takeSnapshot(r *http.Request) headerSnapshot {
	all := make(map[string]string, len(r.Header)+1)
	for k, vs := range r.Header {
		if len(vs) > 0 {
			all[k] = vs[0]
		} else {
			all[k] = ""
		}
	}
	s := headerSnapshot{
		all:             all,
		xForwardedFor:   firstHeader(r.Header, "X-Forwarded-For"),
		xForwardedHost:  firstHeader(r.Header, "X-Forwarded-Host"),
		xForwardedProto: firstHeader(r.Header, "X-Forwarded-Proto"),
		xForwardedPort:  firstHeader(r.Header, "X-Forwarded-Port"),
		userAgent:       firstHeader(r.Header, "User-Agent"),
		remoteAddress:   remoteHost(r.RemoteAddr),
	}
	// net/http 把 Host 从 Header 中移到 r.Host
	if r.Host != "" {
		host := r.Host
		s.host = &host
		all["Host"] = host
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
