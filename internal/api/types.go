package api

import (
	"time"

	"ip-verify/internal/geo"
)

// 文档注释：验证接口返回结构（对外）
// 约束：缺失字段输出 null 而非空字符串；allHeaders 中多值头部只保留首个值（有损，诊断场景可接受）
type verifyResult struct {
	ClientIP          *string           `json:"clientIP"`
	XForwardedForFull *string           `json:"xForwardedForFull"`
	Host              *string           `json:"host"`
	XForwardedHost    *string           `json:"xForwardedHost"`
	XForwardedProto   *string           `json:"xForwardedProto"`
	XForwardedPort    *string           `json:"xForwardedPort"`
	UserAgent         *string           `json:"userAgent"`
	RemoteAddress     *string           `json:"remoteAddress"`
	AllHeaders        map[string]string `json:"allHeaders"`
	ClientGeo         *geo.Location     `json:"clientGeo,omitempty"`
	Timestamp         time.Time         `json:"timestamp"`
	Success           bool              `json:"success"`
}

type healthCheckResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// headerSnapshot：每个请求只采集一次，日志行与响应体都从这里取值
type headerSnapshot struct {
	all             map[string]string
	xForwardedFor   *string
	host            *string
	xForwardedHost  *string
	xForwardedProto *string
	xForwardedPort  *string
	userAgent       *string
	remoteAddress   *string
}
