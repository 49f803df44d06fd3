package logger

import (
	"context"
	log "log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

const slowRedisThreshold = 50 * time.Millisecond

// RedisLoggerHook 记录 redis 错误与慢命令
type RedisLoggerHook struct{}

func NewRedisLogger() *RedisLoggerHook {
	return &RedisLoggerHook{}
}

func (s *RedisLoggerHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		if err != nil {
			log.ErrorContext(ctx, "Redis Dial Error",
				log.String("addr", addr),
				log.Duration("latency", time.Since(start)),
				log.Any("err", err),
			)
		}
		return conn, err
	}
}

func (s *RedisLoggerHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		elapsed := time.Since(start)

		if err != nil && err != redis.Nil {
			log.ErrorContext(ctx, "Redis Command Error",
				log.String("cmd", cmd.Name()),
				log.Duration("latency", elapsed),
				log.Any("err", err),
			)
		} else if elapsed > slowRedisThreshold {
			log.WarnContext(ctx, "Redis Command Slow",
				log.String("cmd", cmd.Name()),
				log.Duration("latency", elapsed),
			)
		}
		return err
	}
}

func (s *RedisLoggerHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		if err != nil && err != redis.Nil {
			log.ErrorContext(ctx, "Redis Pipeline Error",
				log.Int("cmds", len(cmds)),
				log.Duration("latency", time.Since(start)),
				log.Any("err", err),
			)
		}
		return err
	}
}
