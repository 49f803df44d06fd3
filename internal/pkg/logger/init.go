package logger

import (
	"Tipwall/internal/api/config"
	"context"
	"fmt"
	"io"
	log "log/slog"
	"os"
	"runtime/debug"
	"strings"
)

var LogWriter io.Writer = os.Stdout

// InitLogger 初始化全局 slog，输出 JSON 并自动携带 trace_id
func InitLogger() {
	level := parseLevel(config.Cfg.Log.Level)
	handler := log.NewJSONHandler(LogWriter, &log.HandlerOptions{Level: level})
	log.SetDefault(log.New(&ContextHandler{handler}))
}

func parseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}

// ErrorPanic 记录被恢复的 panic 及调用栈
func ErrorPanic(ctx context.Context, recovered any) {
	log.ErrorContext(ctx, "panic recovered", "panic", fmt.Sprint(recovered), "stack", string(debug.Stack()))
}
