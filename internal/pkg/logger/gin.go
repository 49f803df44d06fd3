package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// 存活探测不记访问日志
var accessLogSkipPaths = []string{"/api/ping"}

func keyString[M ~map[K]any, K comparable](keys M, key K) string {
	v, _ := keys[key].(string)
	return v
}

func SetupGin(r *gin.Engine) {
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    LogWriter,
		SkipPaths: accessLogSkipPaths,
		Formatter: func(p gin.LogFormatterParams) string {
			traceID := keyString(p.Keys, TraceIDKey)
			if traceID == "" && p.Request != nil {
				traceID = TraceIDFrom(p.Request.Context())
			}

			level := "INFO"
			if p.StatusCode >= 500 {
				level = "ERROR"
			}

			return fmt.Sprintf(
				`{"time":"%s","level":"%s","msg":"GIN_ACCESS","trace_id":"%s","address":"%s","client_ip":"%s","method":"%s","path":"%s","status":%d,"latency":"%v"}`+"\n",
				p.TimeStamp.Format(time.RFC3339),
				level,
				traceID,
				keyString(p.Keys, "address"),
				p.ClientIP,
				p.Method,
				p.Path,
				p.StatusCode,
				p.Latency,
			)
		},
	}))

	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		ErrorPanic(c.Request.Context(), recovered)
		c.AbortWithStatusJSON(200, gin.H{"code": 500, "message": "系统异常，请稍后重试", "data": nil})
	}))
}
