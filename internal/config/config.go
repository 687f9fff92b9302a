// 包 config：集中读取环境变量并给出默认值；.env 的加载由入口负责
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Sink 类型
const (
	SinkFile     = "file"
	SinkRedis    = "redis"
	SinkPostgres = "postgres"
)

// DefaultHealthCheckPattern：AWS ALB 健康检查探针的 User-Agent 片段
const DefaultHealthCheckPattern = "ELB-HealthChecker"

type Config struct {
	Addr    string
	APIBase string

	Sink          string
	LogPath       string
	RedisLogKey   string
	MetricsEnable bool

	CORSOrigin string

	TrustedProxyCIDRs []string
	TrustedProxyIPs   []string
	TrustLocalProxy   bool

	HealthCheckPatterns []string

	GeoIPPath       string
	IP2RegionV4Path string
	IP2RegionV6Path string

	TLSEnable       bool
	TLSCertPath     string
	TLSKeyPath      string
	TLSRedirect     bool
	TLSRedirectAddr string
}

// Load：从环境变量构建配置
// 约束：CORS_ALLOWED_ORIGIN 显式设置为空字符串时关闭 CORS，未设置时使用本地前端默认源
func Load() Config {
	c := Config{
		Addr:            env("ADDR", ":8080"),
		APIBase:         strings.TrimRight(env("API_BASE", "/api"), "/"),
		Sink:            strings.ToLower(env("LOG_SINK", SinkFile)),
		LogPath:         env("VERIFY_LOG_PATH", filepath.Join("logs", "ip-verify.log")),
		RedisLogKey:     env("VERIFY_LOG_REDIS_KEY", "ip-verify:log"),
		MetricsEnable:   os.Getenv("METRICS_ENABLE") != "false",
		TrustLocalProxy: os.Getenv("TRUSTED_PROXY_LOCAL") == "true",
		GeoIPPath:       os.Getenv("GEOIP_DB_PATH"),
		IP2RegionV4Path: os.Getenv("IP2REGION_V4_PATH"),
		IP2RegionV6Path: os.Getenv("IP2REGION_V6_PATH"),
		TLSEnable:       os.Getenv("TLS_ENABLE") == "true",
		TLSCertPath:     env("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt")),
		TLSKeyPath:      env("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key")),
		TLSRedirect:     os.Getenv("TLS_REDIRECT_ENABLE") == "true",
		TLSRedirectAddr: env("TLS_REDIRECT_ADDR", ":80"),
	}
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGIN"); ok {
		c.CORSOrigin = strings.TrimSpace(v)
	} else {
		c.CORSOrigin = "http://localhost:3000"
	}
	c.TrustedProxyCIDRs = splitList(os.Getenv("TRUSTED_PROXY_CIDRS"))
	c.TrustedProxyIPs = splitList(os.Getenv("TRUSTED_PROXY_IPS"))
	c.HealthCheckPatterns = splitList(os.Getenv("HEALTHCHECK_UA_PATTERNS"))
	if len(c.HealthCheckPatterns) == 0 {
		c.HealthCheckPatterns = []string{DefaultHealthCheckPattern}
	}
	return c
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitList：逗号分隔列表，去空白并丢弃空项
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
