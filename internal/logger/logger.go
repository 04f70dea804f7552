// 包 logger：统一初始化与获取日志器；生成流程、预览服务与辅助工具共用同一套级别与格式配置
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// 默认日志器：进程级复用
var defaultLogger *slog.Logger

// Setup：按环境变量初始化默认日志器并输出到标准错误
// 约束：LOG_LEVEL 取 debug/info/warn/error，LOG_FORMAT=json 时使用 JSON 输出；标准输出留给状态行
func Setup() *slog.Logger {
	return SetupWriter(os.Stderr)
}

// SetupWriter：与 Setup 相同，但写入指定目标（测试中用于捕获日志）
func SetupWriter(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromEnv()}
	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	defaultLogger = slog.New(h)
	return defaultLogger
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// L：获取默认日志器；未初始化时回退到 Setup
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}
