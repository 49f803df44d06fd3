package service

import (
	"Tipwall/internal/pkg/consts"
	"Tipwall/internal/pkg/redis"
	"context"
	log "log/slog"
	"strconv"

	"github.com/goccy/go-json"
)

// RedisFanout 将变化广播给所有实例，各实例再投递到本地总线
type RedisFanout struct{}

func (RedisFanout) Fanout(ctx context.Context, change VisibilityChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return redis.Publish(ctx, consts.VisibilityChannel, payload)
}

// RedisDirtyMarker 标记需要重算统计的帖子
type RedisDirtyMarker struct{}

func (RedisDirtyMarker) MarkDirty(ctx context.Context, contentIDs ...uint64) error {
	if len(contentIDs) == 0 {
		return nil
	}
	members := make([]interface{}, 0, len(contentIDs))
	for _, id := range contentIDs {
		members = append(members, strconv.FormatUint(id, 10))
	}
	return redis.SAdd(ctx, consts.StatsDirtyKey, members...)
}

// RelayFromRedis 订阅广播频道并投递到本地总线，直到 ctx 结束
func RelayFromRedis(ctx context.Context, bus Publisher) error {
	pubsub := redis.Subscribe(ctx, consts.VisibilityChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	log.InfoContext(ctx, "visibility relay subscribed", "channel", consts.VisibilityChannel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var change VisibilityChange
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				log.WarnContext(ctx, "drop malformed visibility message", "err", err)
				continue
			}
			bus.Publish(ctx, change)
		}
	}
}
