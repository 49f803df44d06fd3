package logger

import (
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// TraceIDKey 定义 Context 中的 Key
const TraceIDKey = "trace_id"

// ContextHandler 包装器，用于从 ctx 中提取 trace_id
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if ctx != nil {
		if traceID := TraceIDFrom(ctx); traceID != "" {
			r.AddAttrs(log.String(TraceIDKey, traceID))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &ContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) log.Handler {
	return &ContextHandler{h.Handler.WithGroup(name)}
}

// WithTraceID 为后台任务生成带 trace_id 的 ctx
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// NewTraceContext 以 prefix 加随机后缀作为 trace_id，定时任务每轮一个
func NewTraceContext(prefix string) (context.Context, string) {
	traceID := prefix + "-" + uuid.NewString()
	return WithTraceID(context.Background(), traceID), traceID
}

// TraceIDFrom 取出 ctx 中的 trace_id
func TraceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(TraceIDKey).(string)
	return id
}
