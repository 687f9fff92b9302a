// 包 logger：统一初始化与获取日志器，作为运维可见的诊断输出通道；通过环境变量控制日志级别与输出格式
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// 默认日志器：进程级复用，读写均为原子操作
var defaultLogger atomic.Pointer[slog.Logger]

// New：按级别与格式构建日志器
// 约束：level 取 debug/info/warn/error，其他值回退 info；format 为 json 时输出 JSON，否则为文本
func New(w io.Writer, level, format string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup：初始化默认日志器（LOG_LEVEL / LOG_FORMAT）
// 约束：输出目标固定为标准错误；不在此处管理文件句柄，访问记录文件由 sink 包负责
func Setup() *slog.Logger {
	l := fromEnv()
	defaultLogger.Store(l)
	return l
}

// L：获取默认日志器；未初始化时按环境变量构建，并发首次调用只保留一个实例
func L() *slog.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	defaultLogger.CompareAndSwap(nil, fromEnv())
	return defaultLogger.Load()
}

func fromEnv() *slog.Logger {
	return New(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}
