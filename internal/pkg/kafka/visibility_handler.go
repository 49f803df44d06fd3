package kafka

import (
	"Tipwall/internal/model"
	"Tipwall/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ChangeFanout 将可见性变化广播到所有实例
type ChangeFanout interface {
	Fanout(ctx context.Context, change service.VisibilityChange) error
}

// VisibilityEventsHandler 消费 visibility_events 的 binlog，
// 其它实例写入的事件经此到达本实例的缓存与订阅者
type VisibilityEventsHandler struct {
	fanout ChangeFanout
}

func NewVisibilityEventsHandler(fanout ChangeFanout) *VisibilityEventsHandler {
	return &VisibilityEventsHandler{fanout: fanout}
}

func (s *VisibilityEventsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("visibility events consumer setup")
	return nil
}

func (s *VisibilityEventsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("visibility events consumer cleanup")
	return nil
}

func (s *VisibilityEventsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("visibility events process batch error", "err", err)
		return err
	}
	return nil
}

func (s *VisibilityEventsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "visibility_events")
	if err != nil {
		if skippable(ctx, msg, err) {
			return nil
		}
		return err
	}

	// 事件表只追加
	if canalMsg.Type != INSERT {
		return nil
	}

	for _, row := range canalMsg.Data {
		change := rowToChange(row, canalMsg.ES)
		if change.ContentID == 0 {
			continue
		}
		if err = s.fanout.Fanout(ctx, change); err != nil {
			return err
		}
		log.DebugContext(ctx, "visibility change fanned out",
			"content_id", change.ContentID, "reply_id", change.ReplyID, "event", change.EventType)
	}
	return nil
}

func rowToChange(row map[string]interface{}, es int64) service.VisibilityChange {
	return service.VisibilityChange{
		ContentID:   StrToUint64(row["content_id"]),
		ReplyID:     StrToUint64(row["reply_id"]),
		ContentType: model.ContentType(Str(row["content_type"])),
		Visibility:  model.Visibility(Str(row["visibility_type"])),
		EventType:   model.EventType(Str(row["event_type"])),
		Actor:       Str(row["actor"]),
		Timestamp:   ParseCanalTime(row["created_at"], es),
	}
}
