// 程序入口：读取配置、初始化记录目标与中间件并启动服务；验证接口注册在 internal/api
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"ip-verify/internal/api"
	"ip-verify/internal/config"
	"ip-verify/internal/geo"
	"ip-verify/internal/logger"
	"ip-verify/internal/metrics"
	"ip-verify/internal/middleware"
	"ip-verify/internal/migrate"
	"ip-verify/internal/sink"
	"ip-verify/internal/utils"
	"ip-verify/internal/version"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Info("starting", "version", version.Version, "commit", version.Commit, "build_date", version.BuildDate)
	cfg := config.Load()
	l.Debug("config_api_base", "base", cfg.APIBase)

	s, err := openSink(cfg, l)
	if err != nil {
		l.Error("sink_open_error", "sink", cfg.Sink, "err", err)
		os.Exit(1)
	}
	defer s.Close()

	opts := []api.Option{api.WithLogger(l), api.WithHealthCheckPatterns(cfg.HealthCheckPatterns...)}
	if g := openGeo(cfg, l); g != nil {
		opts = append(opts, api.WithGeo(g))
	}
	verify := api.NewVerifyHandler(s, opts...)

	mux := http.NewServeMux()
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, api.BuildRoutes(verify)))
	if cfg.MetricsEnable {
		mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())
	}

	fwd := middleware.NewForwarded(l, cfg.TrustedProxyIPs, cfg.TrustedProxyCIDRs, cfg.TrustLocalProxy)
	if fwd.Enabled() {
		l.Info("forwarded_enabled", "ips", len(cfg.TrustedProxyIPs), "cidrs", len(cfg.TrustedProxyCIDRs), "local", cfg.TrustLocalProxy)
	}
	var handler http.Handler = fwd.Wrap(mux)
	handler = middleware.CORS(cfg.CORSOrigin)(handler)
	handler = logger.AccessMiddleware(l)(handler)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	if !cfg.TLSEnable {
		l.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil {
			l.Error("listen_error", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath, "ip-verify.local"); err != nil {
		l.Error("tls_cert_error", "err", err)
		os.Exit(1)
	}
	if cfg.TLSRedirect {
		go serveRedirect(cfg, l)
	}
	l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
	if err := srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath); err != nil {
		l.Error("listen_error", "err", err)
		os.Exit(1)
	}
}

// openSink：按 LOG_SINK 选择记录目标；未知取值回退到文件
func openSink(cfg config.Config, l *slog.Logger) (sink.Sink, error) {
	switch cfg.Sink {
	case config.SinkRedis:
		rc := utils.OpenRedisFromEnv()
		if err := rc.Ping(context.Background()).Err(); err != nil {
			// 启动时不可达不阻断，写入失败会在请求时逐条记录
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
		l.Info("sink_ready", "sink", "redis", "key", cfg.RedisLogKey)
		return sink.NewRedis(rc, cfg.RedisLogKey), nil
	case config.SinkPostgres:
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
		}
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		l.Info("sink_ready", "sink", "postgres")
		return sink.NewPostgres(db), nil
	case config.SinkFile:
	default:
		l.Warn("sink_unknown", "sink", cfg.Sink, "fallback", config.SinkFile)
	}
	l.Info("sink_ready", "sink", "file", "path", cfg.LogPath)
	return sink.NewFile(cfg.LogPath), nil
}

// openGeo：加载可选地理库；打开失败只记录日志并跳过该源
func openGeo(cfg config.Config, l *slog.Logger) geo.Lookuper {
	var list []geo.Lookuper
	if cfg.GeoIPPath != "" {
		if g, err := geo.OpenGeoIP(cfg.GeoIPPath); err == nil {
			list = append(list, g)
			l.Info("geoip_ready", "path", cfg.GeoIPPath)
		} else {
			l.Error("geoip_open_error", "path", cfg.GeoIPPath, "err", err)
		}
	}
	if cfg.IP2RegionV4Path != "" || cfg.IP2RegionV6Path != "" {
		if c, err := geo.OpenIP2Region(cfg.IP2RegionV4Path, cfg.IP2RegionV6Path); err == nil {
			list = append(list, c)
			l.Info("ip2region_ready", "v4", cfg.IP2RegionV4Path, "v6", cfg.IP2RegionV6Path)
		} else {
			l.Error("ip2region_open_error", "v4", cfg.IP2RegionV4Path, "v6", cfg.IP2RegionV6Path, "err", err)
		}
	}
	chain := geo.NewChain(list...)
	if chain.Len() == 0 {
		return nil
	}
	return chain
}

// serveRedirect：明文端口 301 跳转到 HTTPS 端口
func serveRedirect(cfg config.Config, l *slog.Logger) {
	redir := http.NewServeMux()
	redir.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		target := utils.HTTPSRedirectTarget(r.Host, cfg.Addr, r.URL.RequestURI())
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		l.Debug("http_redirect", "from", r.Host, "to", target)
	})
	l.Info("http_redirect_listening", "addr", cfg.TLSRedirectAddr, "to", "https"+cfg.Addr)
	if err := http.ListenAndServe(cfg.TLSRedirectAddr, logger.AccessMiddleware(l)(redir)); err != nil {
		l.Error("http_redirect_error", "err", err)
	}
}
